// Package verify performs banded affine-gap local alignment over
// anchor-bounded sequence substrings (spec.md S4.6), returning identity
// and edit counts, and merges the results back into a container's
// Verify section by tile id.
package verify

import (
	"github.com/pkg/errors"

	"github.com/dotxdb/dotx/dotxerr"
)

// Params configures the banded verifier.
type Params struct {
	MatchScore      int
	MismatchPenalty int
	GapOpen         int
	GapExtend       int
	Bandwidth       int
	// Padding is the number of extra bases extracted on each side of
	// the anchor before alignment (spec.md S4.6, default 50).
	Padding int64
}

// DefaultParams returns the spec.md S4.6-documented defaults.
func DefaultParams() Params {
	return Params{
		MatchScore:      2,
		MismatchPenalty: -1,
		GapOpen:         -2,
		GapExtend:       -1,
		Bandwidth:       100,
		Padding:         50,
	}
}

// Validate checks the bounds spec.md S7's InvalidParams kind covers.
func (p Params) Validate() error {
	if p.Bandwidth < 1 {
		return errors.Wrap(dotxerr.New(dotxerr.InvalidParams, "bandwidth must be >= 1"), "verify.Params")
	}
	if p.Padding < 0 {
		return errors.Wrap(dotxerr.New(dotxerr.InvalidParams, "padding must be >= 0"), "verify.Params")
	}
	return nil
}
