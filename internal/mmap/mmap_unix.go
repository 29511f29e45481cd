//go:build linux || darwin || freebsd

package mmap

import (
	"os"

	"golang.org/x/sys/unix"
)

func mapFile(f *os.File, length int) ([]byte, func([]byte) error, error) {
	data, err := unix.Mmap(int(f.Fd()), 0, length, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, err
	}

	// The scan is a single forward pass.
	_ = unix.Madvise(data, unix.MADV_SEQUENTIAL)

	return data, unix.Munmap, nil
}
