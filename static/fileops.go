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

package static

import (
	"io"
	"io/fs"
	"os"
	"sync/atomic"

	liberr "github.com/nabbar/zfproxy/errors"

	libfpg "github.com/nabbar/zfproxy/file/progress"
)

func (s *staticHandler) Has(path string) bool {
	if path == "" {
		return false
	}
	_, err := fs.Stat(s.fsys, path)
	return err == nil
}

func (s *staticHandler) Info(path string) (os.FileInfo, error) {
	if path == "" {
		return nil, liberr.New(uint16(ErrorEmptyPath), "path must not be empty")
	}
	info, err := fs.Stat(s.fsys, path)
	if err != nil {
		return nil, liberr.New(uint16(ErrorNotFound), err.Error())
	}
	return info, nil
}

func (s *staticHandler) Find(path string) (io.ReadCloser, error) {
	if path == "" {
		return nil, liberr.New(uint16(ErrorEmptyPath), "path must not be empty")
	}

	f, err := s.fsys.Open(path)
	if err != nil {
		return nil, liberr.New(uint16(ErrorNotFound), err.Error())
	}

	info, serr := f.Stat()
	if serr != nil {
		_ = f.Close()
		return nil, liberr.New(uint16(ErrorNotFound), serr.Error())
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, liberr.New(uint16(ErrorIsDirectory), "path is a directory")
	}

	threshold := atomic.LoadInt64(&s.tempThreshold)
	if threshold <= 0 || info.Size() <= threshold {
		return f, nil
	}

	tmp, terr := s.copyToTemp(f, path)
	if terr != nil {
		_ = f.Close()
		return nil, terr
	}
	return tmp, nil
}

func (s *staticHandler) copyToTemp(f fs.File, path string) (TempFile, liberr.Error) {
	defer func() { _ = f.Close() }()

	tmp, err := libfpg.Temp("zfproxy-static-*")
	if err != nil {
		return nil, liberr.New(uint16(ErrorTempCreate), err.Error())
	}
	if _, err = io.Copy(tmp, f); err != nil {
		_ = tmp.CloseDelete()
		return nil, liberr.New(uint16(ErrorTempCreate), err.Error())
	}
	if _, err = tmp.Seek(0, io.SeekStart); err != nil {
		_ = tmp.CloseDelete()
		return nil, liberr.New(uint16(ErrorTempCreate), err.Error())
	}

	return tmp, nil
}

func (s *staticHandler) List(rootPath string) ([]string, error) {
	root := rootPath
	if root == "" {
		root = "."
	}

	if root != "." {
		if _, err := fs.Stat(s.fsys, root); err != nil {
			return nil, liberr.New(uint16(ErrorNotFound), err.Error())
		}
	}

	var out []string
	err := fs.WalkDir(s.fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, liberr.New(uint16(ErrorNotFound), err.Error())
	}

	return out, nil
}

func (s *staticHandler) Map(fct func(pathFile string, inf os.FileInfo) error) error {
	files, err := s.List("")
	if err != nil {
		return err
	}

	for _, p := range files {
		info, ierr := fs.Stat(s.fsys, p)
		if ierr != nil {
			return liberr.New(uint16(ErrorNotFound), ierr.Error())
		}
		if ferr := fct(p, info); ferr != nil {
			return ferr
		}
	}

	return nil
}

func (s *staticHandler) Temp(path string) (TempFile, error) {
	if path == "" {
		return nil, liberr.New(uint16(ErrorEmptyPath), "path must not be empty")
	}

	f, err := s.fsys.Open(path)
	if err != nil {
		return nil, liberr.New(uint16(ErrorNotFound), err.Error())
	}

	info, serr := f.Stat()
	if serr != nil {
		_ = f.Close()
		return nil, liberr.New(uint16(ErrorNotFound), serr.Error())
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, liberr.New(uint16(ErrorIsDirectory), "path is a directory")
	}

	return s.copyToTemp(f, path)
}

func (s *staticHandler) UseTempForFileSize(size int64) {
	atomic.StoreInt64(&s.tempThreshold, size)
}
