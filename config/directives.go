/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package config

import (
	"strconv"
	"time"
)

// ListenDirective is one `listen` block, spec.md §6 "listener
// configuration directives".
type ListenDirective struct {
	Address string `mapstructure:"address"`

	ReusePort  bool   `mapstructure:"reuseport"`
	Backlog    int    `mapstructure:"backlog"`
	RcvBuf     int    `mapstructure:"rcvbuf"`
	SndBuf     int    `mapstructure:"sndbuf"`
	FastOpen   int    `mapstructure:"fastopen"`
	Deferred   bool   `mapstructure:"deferred"`
	IPv6Only   string `mapstructure:"ipv6only"`   // "on" | "off"
	SoKeepAlive string `mapstructure:"so_keepalive"` // "on" | "off" | "K:I:C"
}

// CacheZoneDirective is one `proxy_cache_path`-style zone directive,
// spec.md §6 "Cache zone directives". It is the unmarshaled counterpart
// of diskcache.Zone/Store/Loader/Manager construction parameters.
type CacheZoneDirective struct {
	Path         string `mapstructure:"path"`
	Levels       string `mapstructure:"levels"`        // e.g. "1:2"
	UseTempPath  bool   `mapstructure:"use_temp_path"`
	KeysZoneName string `mapstructure:"keys_zone_name"`
	KeysZoneSize int64  `mapstructure:"keys_zone_size"`

	Inactive time.Duration `mapstructure:"inactive"`
	MaxSize  int64         `mapstructure:"max_size"`
	MinFree  int64         `mapstructure:"min_free"`

	LoaderFiles     int           `mapstructure:"loader_files"`
	LoaderSleep     time.Duration `mapstructure:"loader_sleep"`
	LoaderThreshold time.Duration `mapstructure:"loader_threshold"`

	ManagerFiles     int           `mapstructure:"manager_files"`
	ManagerSleep     time.Duration `mapstructure:"manager_sleep"`
	ManagerThreshold time.Duration `mapstructure:"manager_threshold"`
}

// UpstreamDirective names a group of backend addresses a location proxies
// to, turned into round-robin reverse proxies by cmd/zfproxyd's front door.
type UpstreamDirective struct {
	Name      string   `mapstructure:"name"`
	Addresses []string `mapstructure:"addresses"`
}

// LogDirective configures the ambient logger: which hooks to
// attach and at what floor level.
type LogDirective struct {
	Level      string `mapstructure:"level"`
	Stdout     bool   `mapstructure:"stdout"`
	StdoutColor bool  `mapstructure:"stdout_color"`
	FilePath   string `mapstructure:"file_path"`
	SyslogTag  string `mapstructure:"syslog_tag"`
}

// Directives is the complete unmarshaled directive tree, spec.md §6. It
// is read from YAML/env by Load and frozen into an immutable
// context.Config[string] snapshot by Freeze.
type Directives struct {
	Listen   []ListenDirective    `mapstructure:"listen"`
	Cache    []CacheZoneDirective `mapstructure:"cache_zone"`
	Upstream []UpstreamDirective  `mapstructure:"upstream"`
	Log      LogDirective         `mapstructure:"log"`

	Workers int `mapstructure:"workers"`
}

func (d *Directives) validate() errList {
	var errs errList

	if len(d.Listen) == 0 {
		errs = append(errs, "at least one listen directive is required")
	}
	for i, l := range d.Listen {
		if l.Address == "" {
			errs = append(errs, "listen["+strconv.Itoa(i)+"]: address is required")
		}
		if l.IPv6Only != "" && l.IPv6Only != "on" && l.IPv6Only != "off" {
			errs = append(errs, "listen["+strconv.Itoa(i)+"]: ipv6only must be on or off")
		}
	}
	for i, z := range d.Cache {
		if z.Path == "" {
			errs = append(errs, "cache_zone["+strconv.Itoa(i)+"]: path is required")
		}
		if z.KeysZoneName == "" {
			errs = append(errs, "cache_zone["+strconv.Itoa(i)+"]: keys_zone_name is required")
		}
	}

	return errs
}

type errList []string
