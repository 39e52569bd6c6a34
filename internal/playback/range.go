package playback

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidRange  = errors.New("invalid range format")
	ErrUnsatisfiable = errors.New("range not satisfiable")
)

// Range is an inclusive byte span.
type Range struct {
	Start int64
	End   int64
}

func (r Range) ContentLength() int64 {
	return r.End - r.Start + 1
}

func (r Range) ContentRange(total int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End, total)
}

// ParseRange resolves a Range header against a file of the given size.
// No header yields (nil, nil). Only the first span of a multi-range request
// is honored; an end past the file is clamped.
func ParseRange(header string, size int64) (*Range, error) {
	if header == "" {
		return nil, nil
	}

	byteRange, ok := strings.CutPrefix(header, "bytes=")
	if !ok {
		return nil, ErrInvalidRange
	}
	if first, _, multi := strings.Cut(byteRange, ","); multi {
		byteRange = first
	}
	byteRange = strings.TrimSpace(byteRange)

	from, to, ok := strings.Cut(byteRange, "-")
	if !ok {
		return nil, ErrInvalidRange
	}

	var r Range
	switch {
	case from == "":
		// bytes=-N: the last N bytes
		n, err := parseOffset(to)
		if err != nil || n == 0 {
			return nil, ErrInvalidRange
		}
		r = Range{Start: max(size-n, 0), End: size - 1}

	default:
		start, err := parseOffset(from)
		if err != nil {
			return nil, ErrInvalidRange
		}
		end := size - 1
		if to != "" {
			if end, err = parseOffset(to); err != nil {
				return nil, ErrInvalidRange
			}
		}
		r = Range{Start: start, End: end}
	}

	if r.Start > r.End || r.Start >= size {
		return nil, ErrUnsatisfiable
	}
	r.End = min(r.End, size-1)
	return &r, nil
}

func parseOffset(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, ErrInvalidRange
	}
	return n, nil
}
