// Package genomicrange parses the genomic range syntax shared by
// render/refine host CLIs (spec.md S6): contig:start-end, with each
// position taking an optional K/M/G decimal SI suffix, and
// comma-separated multi-range lists.
package genomicrange

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Range is a half-open, zero-based span on one contig.
type Range struct {
	Contig string
	Start  int64
	End    int64
}

// Parse parses a single "contig:start-end" range. Start must be
// strictly less than End.
func Parse(s string) (Range, error) {
	contig, body, ok := cutLast(s, ':')
	if !ok || contig == "" {
		return Range{}, errors.Errorf("genomicrange: missing ':' in %q", s)
	}
	startStr, endStr, ok := strings.Cut(body, "-")
	if !ok {
		return Range{}, errors.Errorf("genomicrange: missing '-' in %q", s)
	}
	start, err := parsePosition(startStr)
	if err != nil {
		return Range{}, errors.Wrapf(err, "genomicrange: start of %q", s)
	}
	end, err := parsePosition(endStr)
	if err != nil {
		return Range{}, errors.Wrapf(err, "genomicrange: end of %q", s)
	}
	if start >= end {
		return Range{}, errors.Errorf("genomicrange: start %d must be < end %d in %q", start, end, s)
	}
	return Range{Contig: contig, Start: start, End: end}, nil
}

// ParseList parses a comma-separated list of ranges (SPEC_FULL.md S.C.4).
func ParseList(s string) ([]Range, error) {
	parts := strings.Split(s, ",")
	out := make([]Range, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		r, err := Parse(p)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil, errors.Errorf("genomicrange: empty range list %q", s)
	}
	return out, nil
}

// cutLast splits s on the last occurrence of sep, so contig names
// containing ':' (rare, but seen in some assemblies) don't confuse the
// parse of the trailing start-end body.
func cutLast(s string, sep byte) (before, after string, ok bool) {
	i := strings.LastIndexByte(s, sep)
	if i < 0 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}

// parsePosition parses a base-pair position with an optional trailing
// K, M, or G decimal SI suffix (10^3, 10^6, 10^9). The mantissa may be
// fractional (e.g. "12.3M"); the result is rounded to the nearest
// integer number of base pairs.
func parsePosition(s string) (int64, error) {
	if s == "" {
		return 0, errors.New("genomicrange: empty position")
	}
	mult := 1.0
	switch s[len(s)-1] {
	case 'K', 'k':
		mult = 1e3
		s = s[:len(s)-1]
	case 'M', 'm':
		mult = 1e6
		s = s[:len(s)-1]
	case 'G', 'g':
		mult = 1e9
		s = s[:len(s)-1]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "genomicrange: invalid position %q", s)
	}
	if v < 0 {
		return 0, errors.Errorf("genomicrange: negative position %q", s)
	}
	// Round rather than truncate: a fractional mantissa times a power
	// of ten (e.g. 12.3M) can land a hair under the intended integer
	// due to binary floating point, which Round absorbs.
	return int64(math.Round(v * mult)), nil
}
