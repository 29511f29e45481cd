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
	"crypto/rand"
	"fmt"
	"io"
	mrand "math/rand/v2"
	"os"

	"github.com/ostafen/jrecover/internal/logger"
	fmtutil "github.com/ostafen/jrecover/pkg/util/format"
	osutils "github.com/ostafen/jrecover/pkg/util/os"
	"github.com/spf13/cobra"
)

func DefineMergeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge <file1> <file2> ...",
		Short: "Merge multiple files into a single disk image",
		Long: `The 'merge' command combines multiple files (e.g. JPEG images) into a single flat disk image.
This is useful for testing the scanner with known, reproducible data.
Files are written in the order given, each one starting at a block boundary and preceded by a gap of random size.`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE:         RunMerge,
	}

	cmd.Flags().StringP("output", "o", "", "Path to the output disk image file (required)")
	cmd.Flags().Int("min-gap", 4*1024, "minimum gap size in bytes between files")
	cmd.Flags().Int("max-gap", 512*1024, "maximum gap size in bytes between files")
	cmd.Flags().Int("block-size", 512, "block size in bytes")
	cmd.Flags().Bool("zero-fill", false, "fill gaps with zero bytes instead of random data")

	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func RunMerge(cmd *cobra.Command, args []string) error {
	filePaths := make([]string, 0, len(args))
	for _, arg := range args {
		paths, err := osutils.ListFiles(arg)
		if err != nil {
			return err
		}
		filePaths = append(filePaths, paths...)
	}

	out, _ := cmd.Flags().GetString("output")

	minGap, _ := cmd.Flags().GetInt("min-gap")
	maxGap, _ := cmd.Flags().GetInt("max-gap")

	if minGap > maxGap {
		return fmt.Errorf("min-gap (%d) cannot be greater than max-gap (%d)", minGap, maxGap)
	}
	if minGap <= 0 {
		return fmt.Errorf("min-gap must be greater than 0")
	}

	blockSize, _ := cmd.Flags().GetInt("block-size")
	if blockSize <= 0 {
		return fmt.Errorf("block size must be greater than 0")
	}

	var fill io.Reader = rand.Reader
	if zeroFill, _ := cmd.Flags().GetBool("zero-fill"); zeroFill {
		fill = zeroReader{}
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	logger := logger.New(os.Stdout, logger.InfoLevel)
	logger.Infof("Merging %d files into %s", len(filePaths), out)

	w := bufio.NewWriter(f)

	var bytesWritten int64
	for _, path := range filePaths {
		gapSize := int64(gapBlocks(minGap, maxGap, blockSize) * blockSize)

		// Pad the previous file up to the next block boundary.
		if rem := bytesWritten % int64(blockSize); rem != 0 {
			gapSize += int64(blockSize) - rem
		}

		if _, err := io.CopyN(w, fill, gapSize); err != nil {
			return err
		}
		bytesWritten += gapSize

		logger.Infof("%s at offset %d", path, bytesWritten)

		nCopied, err := osutils.CopyFile(w, path)
		if err != nil {
			return err
		}
		bytesWritten += nCopied
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("error flushing writer: %w", err)
	}

	logger.Infof("Merging successfully completed. %s written.", fmtutil.FormatBytes(bytesWritten))
	return nil
}

// gapBlocks returns a random number of whole blocks spanning at least one block.
func gapBlocks(minGap, maxGap, blockSize int) int {
	gapSize := minGap + mrand.IntN(maxGap-minGap+1)
	return max(1, gapSize/blockSize)
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}
