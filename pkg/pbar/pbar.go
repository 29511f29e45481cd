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
package pbar

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ostafen/jrecover/pkg/util/format"
)

const MinRefreshRate = time.Millisecond * 500

const barLength = 20

// ProgressBar renders the progress of a scan over a fixed number of bytes.
type ProgressBar struct {
	out io.Writer

	TotalBytes         int64
	ProcessedBytes     int64
	ImagesFound        int
	StartTime          time.Time
	LastUpdateTime     time.Time
	LastProcessedBytes int64
}

func New(out io.Writer, totalBytes int64) *ProgressBar {
	now := time.Now()
	return &ProgressBar{
		out:            out,
		TotalBytes:     totalBytes,
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Update records the scan position and the number of images found so far,
// then redraws the bar if the refresh interval has elapsed.
func (pb *ProgressBar) Update(processed int64, imagesFound int) {
	pb.ProcessedBytes = min(processed, pb.TotalBytes)
	pb.ImagesFound = imagesFound
	pb.Render(false)
}

// Render prints the progress bar line
func (pb *ProgressBar) Render(force bool) {
	elapsed := time.Since(pb.LastUpdateTime)
	if !force && elapsed < MinRefreshRate {
		return
	}

	percentage := 100.0
	if pb.TotalBytes > 0 {
		percentage = float64(pb.ProcessedBytes) / float64(pb.TotalBytes) * 100
	}

	filledLen := int(float64(barLength) * percentage / 100)
	var bar string
	if filledLen >= barLength {
		bar = strings.Repeat("=", barLength)
	} else {
		bar = strings.Repeat("=", filledLen) + ">" + strings.Repeat(" ", barLength-filledLen-1)
	}

	var speed float64
	if secs := elapsed.Seconds(); secs > 0 {
		speed = float64(pb.ProcessedBytes-pb.LastProcessedBytes) / secs
	}

	etaStr := "calculating..."
	if pb.ProcessedBytes > 0 && speed > 0 {
		etaSeconds := float64(pb.TotalBytes-pb.ProcessedBytes) / speed
		etaStr = fmt.Sprintf("%02d:%02d:%02d remaining",
			int(etaSeconds/3600),
			int(etaSeconds/60)%60,
			int(etaSeconds)%60)
	}

	pb.LastUpdateTime = time.Now()
	pb.LastProcessedBytes = pb.ProcessedBytes

	// \r moves the cursor to the beginning of the line, trailing spaces
	// clear leftovers of a previous longer line.
	fmt.Fprintf(pb.out, "\r[INFO] Progress: [%s] %3.0f%% (%s/%s) | Images Found: %d | @ %.2fMB/s [%s]    ",
		bar,
		percentage,
		format.FormatBytes(pb.ProcessedBytes),
		format.FormatBytes(pb.TotalBytes),
		pb.ImagesFound,
		speed/(1024*1024),
		etaStr)
}

// Finish draws the final state and moves to the next line.
func (pb *ProgressBar) Finish() {
	pb.ProcessedBytes = pb.TotalBytes
	pb.Render(true)
	fmt.Fprintln(pb.out)
}
