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
	"net/http"
	"net/http/httptest"

	liberr "github.com/nabbar/zfproxy/errors"

	"github.com/nabbar/zfproxy/httpparse"
	"github.com/nabbar/zfproxy/phase"
)

// AuthHeaderMap copies a subset of the parent request's headers onto the
// subrequest, per the real module's "auth_request_set_header"-equivalent
// pass-through — only an explicit allowlist travels, never the full set.
type AuthHeaderMap map[string]string // subrequest header name -> parent header name

// VariableMap copies named response headers from the auth subrequest back
// into the parent request's variable table, spec.md §4.3 last paragraph
// ("auth_request-style handlers ... copy values into the request pool at
// subrequest-completion time").
type VariableMap map[string]string // variable name -> response header name

// AuthRequest is one auth_request-equivalent directive: dispatches an
// internal subrequest to Handler (typically a *gin.Engine route mounted
// for this purpose — SPEC_FULL.md §2 domain table) and maps its outcome
// onto the real request's phase result and variable table.
type AuthRequest struct {
	Handler   http.Handler
	Method    string
	Path      string
	Headers   AuthHeaderMap
	Variables VariableMap
}

// Evaluate runs the subrequest in-process via httptest.NewRecorder (no
// network hop — this is the same address space per spec.md's subrequest
// model, not a distinct upstream) and classifies the result: 2xx permits
// the phase to continue (OK), 401/403 map straight through as the parent
// request's finalization status, anything else is ErrorAuthRequestDenied.
// On any outcome other than ErrorAuthRequestUpstream, matched response
// headers are copied into vars via req's mapped Variables before
// returning, so a denial can still surface e.g. an error-reason header.
func (a AuthRequest) Evaluate(req *httpparse.Request, vars *phase.VarTable) (status int, err liberr.Error) {
	if a.Handler == nil {
		return 0, liberr.New(uint16(ErrorAuthRequestUpstream), "auth_request has no handler configured")
	}

	sub, nerr := http.NewRequest(a.Method, a.Path, nil)
	if nerr != nil {
		return 0, liberr.New(uint16(ErrorAuthRequestUpstream), nerr.Error())
	}
	if sub.Method == "" {
		sub.Method = http.MethodGet
	}

	if req.Headers != nil {
		for subHeader, parentHeader := range a.Headers {
			if v, ok := req.Headers.Get(parentHeader); ok {
				sub.Header.Set(subHeader, v)
			}
		}
		if req.Headers.Host != "" {
			sub.Host = req.Headers.Host
		}
	}

	rec := httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, sub)
	res := rec.Result()

	for varName, headerName := range a.Variables {
		if idx, ok := phase.VariableIndex(varName); ok {
			vars.SetCached(idx, res.Header.Get(headerName))
		}
	}

	switch {
	case res.StatusCode >= 200 && res.StatusCode < 300:
		return http.StatusOK, nil
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return res.StatusCode, liberr.New(uint16(ErrorAuthRequestDenied), "auth_request subrequest denied")
	default:
		return res.StatusCode, liberr.New(uint16(ErrorAuthRequestDenied), "auth_request subrequest returned an unexpected status")
	}
}

// PhaseHandler returns a phase.Handler that wraps AuthRequest.Evaluate as
// an Access-phase gate: a 2xx subrequest returns Declined so the runner
// moves on to the next handler, a denial returns the subrequest's HTTP
// status to drive FinalizeRequest, and a subrequest that fails before
// producing a status returns httpparse.Error.
func (a AuthRequest) PhaseHandler(vars *phase.VarTable) phase.Handler {
	return func(req *httpparse.Request) int {
		status, everr := a.Evaluate(req, vars)
		if everr != nil {
			if status == 0 {
				return httpparse.Error
			}
			return status
		}
		return phase.Declined
	}
}
