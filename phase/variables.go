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

package phase

import (
	"sync"

	"github.com/nabbar/zfproxy/httpparse"
)

// Getter computes a variable's value for req. cacheable reports whether
// the result may be memoized in the request's VarTable slot for the
// remainder of request processing (spec.md §4.3 "each request has a
// per-variable cache slot that is either unset, valid+cacheable, or
// no-cache (computed fresh each time)").
type Getter func(req *httpparse.Request) (value string, cacheable bool)

var (
	registryMu sync.Mutex
	names      = map[string]int{}
	getters    []Getter
)

// RegisterVariable assigns name a stable process-wide slot index on first
// call (idempotent — re-registering the same name returns its existing
// index and leaves the getter untouched, following the teacher's
// init()-time registration idiom used throughout the errors package).
func RegisterVariable(name string, getter Getter) int {
	registryMu.Lock()
	defer registryMu.Unlock()

	if idx, ok := names[name]; ok {
		return idx
	}

	idx := len(getters)
	names[name] = idx
	getters = append(getters, getter)
	return idx
}

// VariableIndex looks up an already-registered variable's slot index.
func VariableIndex(name string) (int, bool) {
	registryMu.Lock()
	defer registryMu.Unlock()
	idx, ok := names[name]
	return idx, ok
}

func variableCount() int {
	registryMu.Lock()
	defer registryMu.Unlock()
	return len(getters)
}

type varState uint8

const (
	varUnset varState = iota
	varValid
	varNoCache
)

type varSlot struct {
	state varState
	value string
}

// VarTable is one request's lazy variable cache, spec.md §4.3. Slots grow
// on demand so a VarTable created before a late RegisterVariable call
// still serves newly registered indices correctly.
type VarTable struct {
	slots []varSlot
}

// NewVarTable returns a table sized to the variables registered so far.
func NewVarTable() *VarTable {
	return &VarTable{slots: make([]varSlot, variableCount())}
}

func (t *VarTable) ensure(idx int) {
	if idx < len(t.slots) {
		return
	}
	grown := make([]varSlot, idx+1)
	copy(grown, t.slots)
	t.slots = grown
}

// Get returns idx's value for req, computing and caching it on the first
// access per request (unless the getter marks itself non-cacheable).
func (t *VarTable) Get(req *httpparse.Request, idx int) string {
	t.ensure(idx)
	slot := &t.slots[idx]

	if slot.state == varValid {
		return slot.value
	}

	getter := getters[idx]
	if getter == nil {
		return ""
	}

	value, cacheable := getter(req)
	if cacheable {
		slot.state = varValid
		slot.value = value
	} else {
		slot.state = varNoCache
	}

	return value
}

// SetCached forces idx's slot to a cached value without calling the
// getter — used by auth_request-style handlers that copy an upstream
// response header into the request's variable pool at subrequest
// completion, spec.md §4.3 last paragraph.
func (t *VarTable) SetCached(idx int, value string) {
	t.ensure(idx)
	t.slots[idx] = varSlot{state: varValid, value: value}
}
