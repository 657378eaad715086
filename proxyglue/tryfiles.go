/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
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

package proxyglue

import (
	"os"
	"strings"

	liberr "github.com/nabbar/zfproxy/errors"
)

// FileProbe is the subset of the teacher's static.Static surface try_files
// needs: existence and metadata checks against a configured root, keyed by
// request-relative path. A *static.Static value satisfies this structurally
// (see the teacher's static_suite_test.go `staticFindHas`/`staticInfo`
// interfaces) without proxyglue importing that package directly.
type FileProbe interface {
	Has(path string) bool
	Info(path string) (os.FileInfo, error)
}

// TryFilesRule is one `try_files`-equivalent rule: an ordered candidate
// list, with `$uri` substitution and a trailing "@named_location" or
// "=code" fallback, per spec.md §1's out-of-scope "try_files" contract —
// now realized as a concrete content-phase handler (SPEC_FULL.md §3
// "Static origin data model").
type TryFilesRule struct {
	Candidates []string
	// Fallback, if non-empty, is returned as the final resolved path when
	// every candidate misses (e.g. an index.php-style catch-all); if
	// empty, exhaustion is an error.
	Fallback string
}

// Resolve walks Candidates in order, substituting "$uri" with uri in each,
// and returns the first one FileProbe.Has reports true for a non-directory
// file. A candidate ending in "/" is checked as a directory instead (nginx
// try_files semantics: a trailing slash means "this directory exists",
// used to fall through to an @location).
func (t TryFilesRule) Resolve(fp FileProbe, uri string) (string, liberr.Error) {
	for _, cand := range t.Candidates {
		path := strings.ReplaceAll(cand, "$uri", uri)

		if strings.HasSuffix(path, "/") {
			if fp.Has(strings.TrimSuffix(path, "/")) {
				return path, nil
			}
			continue
		}

		if !fp.Has(path) {
			continue
		}
		info, err := fp.Info(path)
		if err != nil || info.IsDir() {
			continue
		}
		return path, nil
	}

	if t.Fallback != "" {
		return t.Fallback, nil
	}

	return "", liberr.New(uint16(ErrorTryFilesExhausted), "no try_files candidate matched for "+uri)
}
