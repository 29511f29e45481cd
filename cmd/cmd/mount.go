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
package cmd

import (
	"path/filepath"
	"strings"

	"github.com/ostafen/jrecover/internal/fuse"
	"github.com/ostafen/jrecover/internal/mmap"
	"github.com/spf13/cobra"
)

func DefineMountCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mount <image_path> <report_file>",
		Short: "Mount the images listed in a scan report as a read-only filesystem",
		Long: `The 'mount' command exposes the images listed in a scan report as read-only files,
served directly from the disk image or device without copying them.
You must provide the full path to the image file and the report file.`,
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE:         RunMount,
	}

	cmd.Flags().StringP("mountpoint", "m", "", "Absolute path to the directory where the filesystem will be mounted. If not specified, a default will be generated.")
	cmd.Flags().StringP("size", "s", "0", "size of the image in bytes, overriding the one reported by the filesystem")
	return cmd
}

func RunMount(cmd *cobra.Command, args []string) error {
	size, err := getBytes(cmd, "size")
	if err != nil {
		return err
	}

	src, err := mmap.Open(args[0], int64(size))
	if err != nil {
		return err
	}
	defer src.Close()

	candidates, err := readReport(args[1])
	if err != nil {
		return err
	}

	mountpoint, _ := cmd.Flags().GetString("mountpoint")
	if mountpoint == "" {
		mountpoint = getMountpoint(args[1])
	}
	return fuse.Mount(mountpoint, src, candidates)
}

// getMountpoint generates a mountpoint name from a report file name by stripping the extension.
// If the extension is empty, "_mnt" is added.
func getMountpoint(reportFileName string) string {
	baseName := filepath.Base(reportFileName)
	ext := filepath.Ext(baseName)
	baseName = strings.TrimSuffix(baseName, ext)
	mountpoint := baseName
	if ext == "" {
		mountpoint += "_mnt"
	}
	return mountpoint
}
