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
package scan

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ostafen/jrecover/internal/env"
	"github.com/ostafen/jrecover/internal/format"
	"github.com/ostafen/jrecover/internal/logger"
	"github.com/ostafen/jrecover/internal/mmap"
	"github.com/ostafen/jrecover/pkg/dfxml"
	"github.com/ostafen/jrecover/pkg/pbar"
	fmtutil "github.com/ostafen/jrecover/pkg/util/format"
	osutils "github.com/ostafen/jrecover/pkg/util/os"
)

type Options struct {
	OutputDir    string
	ReportFile   string // defaults to <OutputDir>/report_<session>.xml
	SizeOverride int64  // used in place of the filesystem length when > 0
	Bounds       format.Bounds
	NoDump       bool
	DisableLog   bool
	LogLevel     slog.Level
	ShowProgress bool

	// Logger receives console messages. Nil discards them.
	Logger *logger.Logger
}

type Summary struct {
	Source     string
	SourceSize int64
	Recovered  []format.Candidate
	TotalBytes int64
	ReportFile string
	LogFile    string
	Duration   time.Duration
}

// Scan carves every JPEG found in the file at filePath, writes each of them
// to the output directory, and records them in a DFXML report.
func Scan(filePath string, opts Options) (*Summary, error) {
	console := opts.Logger
	if console == nil {
		console = logger.Discard()
	}

	src, err := mmap.Open(filePath, opts.SizeOverride)
	if err != nil {
		return nil, fatal("open", filePath, err)
	}
	defer src.Close()

	if _, err := osutils.EnsureDir(opts.OutputDir, false); err != nil {
		return nil, fatal("mkdir", opts.OutputDir, err)
	}

	session := GenSessionID()

	summary := &Summary{
		Source:     absPath(filePath),
		SourceSize: int64(src.Len()),
		ReportFile: opts.ReportFile,
	}
	if summary.ReportFile == "" {
		summary.ReportFile = filepath.Join(opts.OutputDir, fmt.Sprintf("report_%s.xml", session))
	}
	if !opts.DisableLog {
		summary.LogFile = absPath(filepath.Join(opts.OutputDir, session) + ".log")
	}

	slogger, logFile, err := setupLogger(summary.LogFile, opts.LogLevel)
	if err != nil {
		return nil, fatal("log", summary.LogFile, err)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	sc, err := format.NewScanner(slogger, opts.Bounds)
	if err != nil {
		return nil, err
	}

	rw, err := newReport(summary.ReportFile, filePath, summary.SourceSize)
	if err != nil {
		return nil, fatal("report", summary.ReportFile, err)
	}
	defer rw.Close()

	console.Infof("Starting scan of %s (%s)", summary.Source, fmtutil.FormatBytes(summary.SourceSize))
	console.Infof("Candidate size: %s - %s",
		fmtutil.FormatBytes(int64(opts.Bounds.MinSize)),
		fmtutil.FormatBytes(int64(opts.Bounds.MaxSize)),
	)
	if !opts.NoDump {
		console.Infof("Destination: %s", absPath(opts.OutputDir))
	}

	slogger.Info("scan started",
		"source", summary.Source,
		"size", summary.SourceSize,
		"min_size", opts.Bounds.MinSize,
		"max_size", opts.Bounds.MaxSize,
	)

	var progress *pbar.ProgressBar
	if opts.ShowProgress {
		progress = pbar.New(os.Stdout, summary.SourceSize)
	}

	start := time.Now()
	data := src.Bytes()

	for c := range sc.Scan(data) {
		if !opts.NoDump {
			path, err := DumpFile(src, opts.OutputDir, c)
			if err != nil {
				return summary, err
			}
			console.Infof("Match jpeg save to %s", path)
		} else {
			console.Infof("Match jpeg at [%d, %d)", c.Start, c.End)
		}
		slogger.Info("jpeg recovered", "start", c.Start, "end", c.End, "size", c.Size())

		if err := rw.Add(c); err != nil {
			return summary, fatal("report", summary.ReportFile, err)
		}

		summary.Recovered = append(summary.Recovered, c)
		summary.TotalBytes += int64(c.Size())

		if progress != nil {
			progress.Update(int64(c.End), len(summary.Recovered))
		}
	}

	if progress != nil {
		progress.ImagesFound = len(summary.Recovered)
		progress.Finish()
	}

	if err := rw.Close(); err != nil {
		return summary, fatal("report", summary.ReportFile, err)
	}

	summary.Duration = time.Since(start)
	slogger.Info("scan completed", "recovered", len(summary.Recovered), "bytes", summary.TotalBytes)
	return summary, nil
}

// DumpFile writes the bytes of c to a new file in dir, named after its offsets.
func DumpFile(src io.ReaderAt, dir string, c format.Candidate) (string, error) {
	path := filepath.Join(dir, c.Name())

	f, err := os.Create(path)
	if err != nil {
		return "", fatal("create", path, err)
	}
	defer f.Close()

	w := bufio.NewWriterSize(f, 1024*1024) // 1MB buffer

	r := io.NewSectionReader(src, int64(c.Start), int64(c.Size()))
	n, err := io.Copy(w, r)
	if err != nil {
		return "", fatal("write", path, err)
	}
	if n != int64(c.Size()) {
		return "", fatal("write", path, fmt.Errorf("short copy: %d of %d bytes", n, c.Size()))
	}

	if err := w.Flush(); err != nil {
		return "", fatal("write", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fatal("write", path, err)
	}
	return path, nil
}

type report struct {
	f      *os.File
	w      *dfxml.DFXMLWriter
	closed bool
}

func newReport(path, imagePath string, imageSize int64) (*report, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := dfxml.NewDFXMLWriter(f)
	err = w.WriteHeader(dfxml.DFXMLHeader{
		XmlOutput: dfxml.XmlOutputVersion,
		Metadata:  dfxml.DefaultMetadata,
		Creator: dfxml.Creator{
			Package:              env.AppName,
			Version:              env.Version,
			ExecutionEnvironment: dfxml.GetExecEnv(),
		},
		Source: dfxml.Source{
			ImageFilename: imagePath,
			SectorSize:    1,
			ImageSize:     uint64(imageSize),
		},
	})
	if err != nil {
		f.Close()
		return nil, err
	}
	return &report{f: f, w: w}, nil
}

func (r *report) Add(c format.Candidate) error {
	return r.w.WriteFileObject(dfxml.NewFileObject(c.Name(), uint64(c.Start), uint64(c.Size())))
}

func (r *report) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	if err := r.w.Close(); err != nil {
		r.f.Close()
		return err
	}
	return r.f.Close()
}

func absPath(path string) string {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

// GenSessionID creates a unique name for a scan session, formatted as
// "YYYYMMDD_HHMMSS".
func GenSessionID() string {
	return time.Now().Format("20060102_150405")
}

// FormatDurationHMS formats a time.Duration into HH:MM:SS string.
// It handles durations that might be less than an hour or greater than 24 hours.
func FormatDurationHMS(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	totalSeconds := int64(d.Seconds())

	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// setupLogger initializes a new slog.Logger that writes to a specified file or discards output.
// If logFilePath is empty, logs are discarded.
// The returned *os.File (if not nil) should be closed by the caller.
func setupLogger(logFilePath string, minLevel slog.Level) (*slog.Logger, *os.File, error) {
	var writer io.Writer
	var file *os.File

	if logFilePath == "" {
		writer = io.Discard
	} else {
		logDir := filepath.Dir(logFilePath)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory %q: %w", logDir, err)
		}

		f, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file %q: %w", logFilePath, err)
		}
		writer = f
		file = f
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{
		Level:     minLevel,
		AddSource: true,
	})
	return slog.New(handler), file, nil
}
