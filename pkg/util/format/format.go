package format

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	_  = iota // ignore first value
	KB = 1 << (10 * iota)
	MB
	GB
	TB
)

// FormatBytes formats bytes into human-readable units, avoiding .00 for whole numbers
func FormatBytes(b int64) string {
	val := float64(b)
	var unit string

	switch {
	case b >= TB:
		val /= float64(TB)
		unit = "TB"
	case b >= GB:
		val /= float64(GB)
		unit = "GB"
	case b >= MB:
		val /= float64(MB)
		unit = "MB"
	case b >= KB:
		val /= float64(KB)
		unit = "KB"
	default:
		return fmt.Sprintf("%dB", b)
	}

	// Use %.0f for whole numbers, %.2f for numbers with decimals
	if val == float64(int(val)) {
		return fmt.Sprintf("%.0f%s", val, unit)
	}
	return fmt.Sprintf("%.2f%s", val, unit)
}

var units = []struct {
	suffix string
	mul    uint64
}{
	{"TB", TB},
	{"GB", GB},
	{"MB", MB},
	{"KB", KB},
	{"T", TB},
	{"G", GB},
	{"M", MB},
	{"K", KB},
	{"B", 1},
}

// ParseBytes parses a size such as "512", "500KB", "1.5GB" or "4 MB".
// Units are powers of 1024 and case insensitive.
func ParseBytes(s string) (uint64, error) {
	str := strings.ToUpper(strings.TrimSpace(s))
	if str == "" {
		return 0, fmt.Errorf("empty size")
	}

	mul := uint64(1)
	for _, u := range units {
		if strings.HasSuffix(str, u.suffix) {
			str = strings.TrimSpace(strings.TrimSuffix(str, u.suffix))
			mul = u.mul
			break
		}
	}

	if n, err := strconv.ParseUint(str, 10, 64); err == nil {
		if n > 0 && mul > ^uint64(0)/n {
			return 0, fmt.Errorf("size %q overflows", s)
		}
		return n * mul, nil
	}

	f, err := strconv.ParseFloat(str, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("invalid size %q", s)
	}

	v := f * float64(mul)
	if v >= float64(^uint64(0)) {
		return 0, fmt.Errorf("size %q overflows", s)
	}
	return uint64(v), nil
}
