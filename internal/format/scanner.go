package format

import (
	"io"
	"iter"
	"log/slog"
)

// Scanner carves JPEG candidates out of a byte source.
type Scanner struct {
	logger *slog.Logger
	bounds Bounds
}

func NewScanner(logger *slog.Logger, bounds Bounds) (*Scanner, error) {
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scanner{
		logger: logger,
		bounds: bounds,
	}, nil
}

func (sc *Scanner) Bounds() Bounds {
	return sc.bounds
}

// Scan returns the sequence of candidates found in src, in increasing offset
// order. Each search starts at the end of the previous candidate.
// The sequence is lazy and can be iterated more than once.
func (sc *Scanner) Scan(src []byte) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		offset := 0
		for {
			c, found := findJPEG(src, offset, sc.bounds, sc.logAbandoned)
			if !found {
				sc.logger.Debug("no more candidates", "offset", offset, "size", len(src))
				return
			}

			sc.logger.Debug("candidate found", "start", c.Start, "end", c.End, "size", c.Size())
			if !yield(c) {
				return
			}
			offset = c.End
		}
	}
}

func (sc *Scanner) logAbandoned(anchor int, reason Reason) {
	sc.logger.Debug("anchor abandoned", "anchor", anchor, "reason", reason.String())
}
