//go:build !(linux || darwin || freebsd)

package mmap

import (
	"io"
	"os"
)

// mapFile loads the whole range in memory on platforms without mmap support.
func mapFile(f *os.File, length int) ([]byte, func([]byte) error, error) {
	data := make([]byte, length)
	if _, err := io.ReadFull(io.NewSectionReader(f, 0, int64(length)), data); err != nil {
		return nil, nil, err
	}
	return data, nil, nil
}
