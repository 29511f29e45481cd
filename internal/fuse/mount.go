//go:build !linux
// +build !linux

package fuse

import (
	"fmt"
	"io"

	"github.com/ostafen/jrecover/internal/format"
)

func Mount(mountpoint string, r io.ReaderAt, candidates []format.Candidate) error {
	return fmt.Errorf("FUSE mount is only supported on Linux")
}
