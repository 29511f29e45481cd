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
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ostafen/jrecover/internal/format"
	"github.com/ostafen/jrecover/internal/logger"
	"github.com/ostafen/jrecover/internal/mmap"
	"github.com/ostafen/jrecover/internal/scan"
	"github.com/ostafen/jrecover/pkg/dfxml"
	osutils "github.com/ostafen/jrecover/pkg/util/os"
	"github.com/spf13/cobra"
)

func DefineRecoverCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recover <image_path> <report_file>",
		Short: "Recover images from a disk image using a scan report",
		Long: `The 'recover' command extracts the images listed in a scan report from a disk image or device,
without scanning it again. You must provide the full path to the image file and the report file.
Recovered files will be saved to the specified output directory.`,
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE:         RunRecover,
	}
	cmd.Flags().StringP("output-dir", "o", "", "directory where recovered data will be placed (default: <report name>-dump)")
	cmd.Flags().StringP("size", "s", "0", "size of the image in bytes, overriding the one reported by the filesystem")
	return cmd
}

func RunRecover(cmd *cobra.Command, args []string) error {
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

	outDir, _ := cmd.Flags().GetString("output-dir")
	if outDir == "" {
		wdir, err := os.Getwd()
		if err != nil {
			return err
		}

		base := filepath.Base(args[1])
		name := strings.TrimSuffix(base, filepath.Ext(base))
		outDir = filepath.Join(wdir, name+"-dump")
	}

	if _, err := osutils.EnsureDir(outDir, true); err != nil {
		return err
	}

	logger := logger.New(os.Stdout, logger.InfoLevel)

	for _, c := range candidates {
		path, err := scan.DumpFile(src, outDir, c)
		if err != nil {
			return err
		}
		logger.Infof("recovered file %s", path)
	}
	logger.Infof("%d files recovered to %s", len(candidates), outDir)
	return nil
}

// readReport loads the candidates listed in a DFXML report.
func readReport(path string) ([]format.Candidate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	objects, err := dfxml.ReadFileObjects(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("failed to read report %s: %w", path, err)
	}
	return fileObjectsToCandidates(objects)
}

func fileObjectsToCandidates(objs []dfxml.FileObject) ([]format.Candidate, error) {
	candidates := make([]format.Candidate, len(objs))
	for i, o := range objs {
		runs := o.ByteRuns.Runs
		if len(runs) != 1 {
			return nil, fmt.Errorf("invalid report file: %s has %d byte runs", o.Filename, len(runs))
		}

		candidates[i] = format.Candidate{
			Start: int(runs[0].ImgOffset),
			End:   int(runs[0].ImgOffset + runs[0].Length),
		}
	}
	return candidates, nil
}
