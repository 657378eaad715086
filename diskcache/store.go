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

package diskcache

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	liberr "github.com/nabbar/zfproxy/errors"
)

// Store is the on-disk half of a cache zone: path layout, file open, and
// the read/write paths of spec.md §4.5/§4.6.
type Store struct {
	Base      string
	Levels    []int
	UseTemp   bool
	TempPath  string
	VersionTag uint64
}

// NewStore returns a Store rooted at base, with level-dirs carved from the
// hex key's tail per spec.md §6 (e.g. []int{1,2} -> .../X/YZ/<hex>).
func NewStore(base string, levels []int) *Store {
	return &Store{Base: base, Levels: levels, VersionTag: 1}
}

// Path returns the final on-disk path for k.
func (s *Store) Path(k Key) string {
	return HashedPath(s.Base, k.Hex(), s.Levels)
}

// TempName appends the ".DDDDDDDDDD" in-flight suffix spec.md §6 says the
// loader must skip, using the current unix nanos truncated to 10 digits
// for the placeholder — any fixed-width numeric suffix is sufficient
// since only its presence (not its value) matters to the loader.
func (s *Store) TempName(k Key, nowNano int64) string {
	return fmt.Sprintf("%s.%010d", s.Path(k), nowNano%1e10)
}

// ReadHeader opens the file at k's path and reads + validates its fixed
// header, per spec.md §4.5 step 3/4: version tag, CRC32, and key-part
// byte equality are all checked here; Vary handling (the "reopen" with a
// variant key) is the caller's responsibility since it needs live request
// headers this package doesn't have.
func (s *Store) ReadHeader(k Key, keyParts []string) (*os.File, *Header, liberr.Error) {
	f, oerr := os.Open(s.Path(k))
	if oerr != nil {
		return nil, nil, liberr.New(uint16(ErrorCorruptHeader), oerr.Error())
	}

	buf := make([]byte, HeaderSize)
	if _, rerr := f.ReadAt(buf, 0); rerr != nil {
		f.Close()
		return nil, nil, liberr.New(uint16(ErrorCorruptHeader), rerr.Error())
	}

	h, derr := DecodeHeader(buf)
	if derr != nil {
		f.Close()
		return nil, nil, derr
	}

	if h.VersionTag != s.VersionTag {
		f.Close()
		return nil, nil, liberr.New(uint16(ErrorCorruptHeader), "version tag mismatch")
	}

	kb := KeyBlock(keyParts...)
	stored := make([]byte, len(kb))
	if _, rerr := f.ReadAt(stored, int64(h.HeaderStart)); rerr != nil {
		f.Close()
		return nil, nil, liberr.New(uint16(ErrorKeyMismatch), rerr.Error())
	}
	for i := range kb {
		if kb[i] != stored[i] {
			f.Close()
			return nil, nil, liberr.New(uint16(ErrorKeyMismatch), "key part bytes differ")
		}
	}

	return f, h, nil
}

// WriteNew implements spec.md §4.6's write path: the body is written to a
// temp file first (the upstream pipe's TempFile, §4.4), then this
// finalizes it — writes the header+key block ahead of body_start and
// atomically renames the temp file into its hashed path.
func (s *Store) WriteNew(k Key, keyParts []string, h *Header, body []byte, now time.Time) (uint64, int64, liberr.Error) {
	dir := filepath.Dir(s.Path(k))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, 0, liberr.New(uint16(ErrorWriteFailed), err.Error())
	}

	tmp := s.TempName(k, now.UnixNano())
	f, cerr := os.OpenFile(tmp, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0o644)
	if cerr != nil {
		return 0, 0, liberr.New(uint16(ErrorWriteFailed), cerr.Error())
	}
	defer f.Close()

	kb := KeyBlock(keyParts...)
	h.HeaderStart = HeaderSize
	h.BodyStart = uint16(HeaderSize + len(kb))

	hb, herr := h.Encode()
	if herr != nil {
		os.Remove(tmp)
		return 0, 0, herr
	}

	if _, err := f.WriteAt(hb, 0); err != nil {
		os.Remove(tmp)
		return 0, 0, liberr.New(uint16(ErrorWriteFailed), err.Error())
	}
	if _, err := f.WriteAt(kb, int64(h.HeaderStart)); err != nil {
		os.Remove(tmp)
		return 0, 0, liberr.New(uint16(ErrorWriteFailed), err.Error())
	}
	if _, err := f.WriteAt(body, int64(h.BodyStart)); err != nil {
		os.Remove(tmp)
		return 0, 0, liberr.New(uint16(ErrorWriteFailed), err.Error())
	}

	if err := os.Rename(tmp, s.Path(k)); err != nil {
		os.Remove(tmp)
		return 0, 0, liberr.New(uint16(ErrorRenameFailed), err.Error())
	}

	fi, serr := os.Stat(s.Path(k))
	if serr != nil {
		return 0, int64(h.BodyStart) + int64(len(body)), nil
	}

	return inodeOf(fi), fi.Size(), nil
}

// RewriteHeader implements spec.md §4.6 "Header-only updates": reopen
// read-write, verify uniq+size+version+crc+header-start+body-start
// identify the same content, then overwrite only the fixed header record.
// Any mismatch aborts silently (returns nil, nil — not an error, exactly
// as spec.md prescribes).
func (s *Store) RewriteHeader(k Key, e *IndexNode, h *Header) liberr.Error {
	f, oerr := os.OpenFile(s.Path(k), os.O_RDWR, 0o644)
	if oerr != nil {
		return nil
	}
	defer f.Close()

	fi, serr := f.Stat()
	if serr != nil || inodeOf(fi) != e.Uniq || fi.Size() != e.Size {
		return nil
	}

	buf := make([]byte, HeaderSize)
	if _, rerr := f.ReadAt(buf, 0); rerr != nil {
		return nil
	}
	old, derr := DecodeHeader(buf)
	if derr != nil || old.VersionTag != h.VersionTag ||
		old.HeaderStart != h.HeaderStart || old.BodyStart != h.BodyStart {
		return nil
	}

	hb, herr := h.Encode()
	if herr != nil {
		return herr
	}
	if _, err := f.WriteAt(hb, 0); err != nil {
		return liberr.New(uint16(ErrorWriteFailed), err.Error())
	}

	return nil
}
