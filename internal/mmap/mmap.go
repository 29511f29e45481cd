// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package mmap

import (
	"fmt"
	"io"
	"os"
)

// File is a read-only, fixed-length view over a file or raw device.
type File struct {
	data []byte
	file *os.File
	size int64

	unmap func([]byte) error
}

// Open maps the first size bytes of the file at path. If size is zero, the
// length reported by the filesystem is used; for devices, whose reported
// length is usually zero, the length is obtained by seeking to the end.
func Open(path string, size int64) (*File, error) {
	if size < 0 {
		return nil, fmt.Errorf("invalid size %d for %q", size, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", path, err)
	}

	length, err := sourceSize(f, size)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to determine size of %q: %w", path, err)
	}

	mf := &File{file: f, size: length}
	if length == 0 {
		return mf, nil
	}

	if int64(int(length)) != length {
		f.Close()
		return nil, fmt.Errorf("size %d of %q exceeds the addressable range", length, path)
	}

	data, unmap, err := mapFile(f, int(length))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to mmap file %q with length %d: %w", path, length, err)
	}
	mf.data = data
	mf.unmap = unmap
	return mf, nil
}

func sourceSize(f *os.File, override int64) (int64, error) {
	finfo, err := f.Stat()
	if err != nil {
		return 0, err
	}

	if finfo.Mode().IsRegular() {
		if override == 0 {
			return finfo.Size(), nil
		}
		if override > finfo.Size() {
			return 0, fmt.Errorf("requested size %d is beyond file size %d", override, finfo.Size())
		}
		return override, nil
	}

	if override > 0 {
		return override, nil
	}

	end, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	return end, nil
}

// Bytes returns the mapped view. It is only valid until Close is called.
func (mf *File) Bytes() []byte {
	return mf.data
}

func (mf *File) Len() int {
	return len(mf.data)
}

func (mf *File) Name() string {
	return mf.file.Name()
}

// ReadAt implements io.ReaderAt over the mapped view.
func (mf *File) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("negative offset: %d", off)
	}
	if off >= int64(len(mf.data)) {
		return 0, io.EOF
	}

	n := copy(p, mf.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Close unmaps the view and closes the underlying file.
func (mf *File) Close() error {
	var err error
	if mf.data != nil && mf.unmap != nil {
		err = mf.unmap(mf.data)
		if err != nil {
			err = fmt.Errorf("failed to munmap: %w", err)
		}
	}
	mf.data = nil

	if mf.file != nil {
		closeErr := mf.file.Close()
		if closeErr != nil {
			if err != nil {
				return fmt.Errorf("%w (also failed to close file: %v)", err, closeErr)
			}
			return fmt.Errorf("failed to close file: %w", closeErr)
		}
		mf.file = nil
	}
	return err
}
