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
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	liberr "github.com/nabbar/zfproxy/errors"
)

// Load reads path (YAML, unless the extension says otherwise) through
// spf13/viper, overlays ZFPROXY_-prefixed environment variables, and
// unmarshals the result into a validated Directives.
func Load(path string) (*Directives, liberr.Error) {
	if _, e := os.Stat(path); e != nil {
		return nil, ErrorFileNotFound.Error(e)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("ZFPROXY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if e := v.ReadInConfig(); e != nil {
		return nil, ErrorConfigInvalid.Error(e)
	}

	return FromViper(v)
}

// FromViper unmarshals Directives out of an already-populated viper
// instance (e.g. one a caller has bound CLI flags onto) and validates it.
func FromViper(v *viper.Viper) (*Directives, liberr.Error) {
	d := &Directives{}

	if e := v.Unmarshal(d); e != nil {
		return nil, ErrorConfigInvalid.Error(e)
	}

	if errs := d.validate(); len(errs) > 0 {
		return nil, ErrorValidation.Error(fmt.Errorf("%s", strings.Join(errs, "; ")))
	}

	return d, nil
}
