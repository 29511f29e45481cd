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
	"fmt"
	"math"
	"os"

	"github.com/ostafen/jrecover/internal/config"
	"github.com/ostafen/jrecover/internal/format"
	"github.com/ostafen/jrecover/internal/logger"
	"github.com/ostafen/jrecover/internal/scan"
	fmtutil "github.com/ostafen/jrecover/pkg/util/format"
	"github.com/spf13/cobra"
)

func DefineScanCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <image_path>",
		Short: "Scan an image file or disk and recover the JPEG files it contains",
		Long: `The 'scan' command reads an image file or raw device as a flat sequence of bytes and
recovers every JPEG image delimited by its start and end markers, regardless of the filesystem.
Each image is written to the output directory as recover-<start>-<end>.jpeg, and all of them
are listed in a DFXML report which can be used by the 'recover' and 'mount' commands.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunScan,
	}

	cmd.Flags().StringP("output", "o", cfg.Recover.OutputDir, "directory where recovered files are saved")
	cmd.Flags().StringP("size", "s", "0", "size of the image in bytes, overriding the one reported by the filesystem (e.g. for block devices)")
	cmd.Flags().String("min-size", cfg.Recover.MinSize, "minimum size of a recovered image")
	cmd.Flags().String("max-size", cfg.Recover.MaxSize, "maximum size of a recovered image")
	cmd.Flags().String("report", "", "path of the DFXML report file (default: inside the output directory)")
	cmd.Flags().Bool("no-dump", false, "only report the images found, without writing them")
	cmd.Flags().Bool("no-log", cfg.Log.Disabled, "disable the detailed scan log")
	cmd.Flags().String("log-level", cfg.Log.Level, "level of the detailed scan log (DEBUG, INFO, WARN, ERROR)")
	cmd.Flags().Bool("progress", false, "show a progress bar instead of per-file messages")

	return cmd
}

func RunScan(cmd *cobra.Command, args []string) error {
	opts, err := parseOptions(cmd)
	if err != nil {
		return err
	}

	summary, err := scan.Scan(args[0], opts)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("[INFO] Scan completed!\n")
	fmt.Printf("[INFO] Source: \t%s (%s)\n", summary.Source, fmtutil.FormatBytes(summary.SourceSize))
	fmt.Printf("[INFO] Images found: \t%d\n", len(summary.Recovered))
	fmt.Printf("[INFO] Total data: \t%s\n", fmtutil.FormatBytes(summary.TotalBytes))
	fmt.Printf("[INFO] Duration: \t%s\n", scan.FormatDurationHMS(summary.Duration))
	fmt.Printf("[INFO] Report saved to: \t%s\n", summary.ReportFile)
	if summary.LogFile != "" {
		fmt.Printf("[INFO] Detailed scan log: \t%s\n", summary.LogFile)
	}
	return nil
}

func parseOptions(cmd *cobra.Command) (scan.Options, error) {
	outputDir, _ := cmd.Flags().GetString("output")
	reportFile, _ := cmd.Flags().GetString("report")
	noDump, _ := cmd.Flags().GetBool("no-dump")
	disableLog, _ := cmd.Flags().GetBool("no-log")
	logLevel, _ := cmd.Flags().GetString("log-level")
	showProgress, _ := cmd.Flags().GetBool("progress")

	size, err := getBytes(cmd, "size")
	if err != nil {
		return scan.Options{}, err
	}
	minSize, err := getBytes(cmd, "min-size")
	if err != nil {
		return scan.Options{}, err
	}
	maxSize, err := getBytes(cmd, "max-size")
	if err != nil {
		return scan.Options{}, err
	}

	if size > math.MaxInt64 || minSize > math.MaxInt || maxSize > math.MaxInt {
		return scan.Options{}, fmt.Errorf("size out of range")
	}

	bounds := format.Bounds{MinSize: int(minSize), MaxSize: int(maxSize)}
	if err := bounds.Validate(); err != nil {
		return scan.Options{}, err
	}

	level := logger.InfoLevel
	if showProgress {
		level = logger.WarnLevel
	}

	return scan.Options{
		OutputDir:    outputDir,
		ReportFile:   reportFile,
		SizeOverride: int64(size),
		Bounds:       bounds,
		NoDump:       noDump,
		DisableLog:   disableLog,
		LogLevel:     logger.ParseLevel(logLevel).Slog(),
		ShowProgress: showProgress,
		Logger:       logger.New(os.Stdout, level),
	}, nil
}

func getBytes(cmd *cobra.Command, name string) (uint64, error) {
	s, _ := cmd.Flags().GetString(name)

	v, err := fmtutil.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid value for --%s: %w", name, err)
	}
	return v, nil
}
