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
package format

import (
	"bytes"
	"fmt"
)

const (
	soiMarker = 0xd8 // Start Of Image.
	eoiMarker = 0xd9 // End Of Image.

	// vendorTagOffset is the distance between a start-marker and the
	// APP0/APP1 identifier ("JFIF" or "Exif") that follows it.
	vendorTagOffset = 6
	vendorTagLen    = 4

	// Lookahead is the number of bytes that must be addressable after a
	// start-marker for it to be validated. It is also the distance the
	// anchor advances after an abandoned candidate.
	Lookahead = vendorTagOffset + vendorTagLen
)

var (
	startMarker = []byte{0xff, soiMarker}

	vendorTags = [][]byte{
		[]byte("JFIF"),
		[]byte("Exif"),
	}
)

// Candidate is the half-open byte range [Start, End) of a recovered JPEG.
type Candidate struct {
	Start int
	End   int
}

func (c Candidate) Size() int {
	return c.End - c.Start
}

// Name returns the output file name of the candidate. It only depends on
// the offsets, so re-running over the same source yields the same names.
func (c Candidate) Name() string {
	return fmt.Sprintf("recover-%d-%d.jpeg", c.Start, c.End)
}

// Bounds limits the size of a candidate, both ends inclusive.
type Bounds struct {
	MinSize int
	MaxSize int
}

func (b Bounds) Validate() error {
	if b.MinSize < 0 {
		return fmt.Errorf("min size cannot be negative: %d", b.MinSize)
	}
	if b.MaxSize <= 0 {
		return fmt.Errorf("max size must be greater than 0")
	}
	if b.MinSize > b.MaxSize {
		return fmt.Errorf("min size (%d) cannot be greater than max size (%d)", b.MinSize, b.MaxSize)
	}
	return nil
}

func (b Bounds) admits(size int) bool {
	return size >= b.MinSize && size <= b.MaxSize
}

// Reason tells why an anchor was dropped during a search.
type Reason int

const (
	Undersized Reason = iota // closing marker found too early
	Oversized                // no closing marker within MaxSize bytes
	Truncated                // the source ended before a closing marker
)

func (r Reason) String() string {
	switch r {
	case Undersized:
		return "undersized"
	case Oversized:
		return "oversized"
	case Truncated:
		return "truncated"
	}
	return "unknown"
}

// AbandonFunc observes anchors rejected by FindJPEG. It cannot alter the search.
type AbandonFunc func(anchor int, reason Reason)

// FindJPEG returns the first admissible JPEG candidate starting at or after
// offset. A start-marker is accepted as an anchor only if it is followed by a
// "JFIF" or "Exif" tag 6 bytes later. From the anchor, the extent search
// tracks nested start/end markers (e.g. an embedded thumbnail) and closes the
// candidate on the end-marker bringing the depth back to zero.
//
// Anchors whose candidate falls outside b are skipped by moving Lookahead
// bytes forward and restarting the anchor search.
func FindJPEG(src []byte, offset int, b Bounds) (Candidate, bool) {
	return findJPEG(src, offset, b, nil)
}

func findJPEG(src []byte, offset int, b Bounds, onAbandon AbandonFunc) (Candidate, bool) {
	if offset < 0 || offset >= len(src) {
		return Candidate{}, false
	}

	anchor := offset
	for {
		var found bool
		anchor, found = nextAnchor(src, anchor)
		if !found {
			return Candidate{}, false
		}

		ext := extent{anchor: anchor}
		end, reason, ok := ext.scan(src, b.MaxSize)
		if ok {
			c := Candidate{Start: anchor, End: end}
			if b.admits(c.Size()) {
				return c, true
			}
			reason = Undersized
		}

		if onAbandon != nil {
			onAbandon(anchor, reason)
		}
		anchor += Lookahead
	}
}

// nextAnchor returns the position of the first vendor-tagged start-marker at
// or after from. Only positions leaving Lookahead bytes available are
// considered.
func nextAnchor(src []byte, from int) (int, bool) {
	window := len(src) - Lookahead
	for x := from; x < window; x++ {
		i := bytes.Index(src[x:window+1], startMarker)
		if i < 0 || x+i >= window {
			return 0, false
		}
		x += i

		tag := src[x+vendorTagOffset : x+Lookahead]
		for _, vt := range vendorTags {
			if bytes.Equal(tag, vt) {
				return x, true
			}
		}
	}
	return 0, false
}

// extent is the state of the forward search from an anchor.
type extent struct {
	anchor int
	depth  int
}

// scan walks forward from the anchor. Each start-marker, including the one
// at the anchor itself, opens a level; each end-marker closes one. The
// candidate ends right after the end-marker that brings the depth to zero
// or below. The end offset never exceeds anchor+maxSize. When no closing
// marker is found, the returned Reason tells which limit was hit.
func (e *extent) scan(src []byte, maxSize int) (int, Reason, bool) {
	limit := len(src)
	reason := Truncated
	if maxSize < limit-e.anchor {
		limit = e.anchor + maxSize
		reason = Oversized
	}

	for x := e.anchor; x+1 < limit; x++ {
		i := bytes.IndexByte(src[x:limit-1], 0xff)
		if i < 0 {
			break
		}
		x += i

		switch src[x+1] {
		case eoiMarker:
			e.depth--
			if e.depth <= 0 {
				return x + 2, 0, true
			}
		case soiMarker:
			e.depth++
		}
	}
	return -1, reason, false
}
