// Package chain groups sorted anchors into high-scoring chains via a
// banded, concave-gap dynamic program (spec.md S4.4).
package chain

import (
	"github.com/pkg/errors"

	"github.com/dotxdb/dotx/dotxerr"
)

// Params holds the chainer's tuning parameters. All tuning lives in an
// explicit struct, never globals (spec.md S9), the same shape as
// markduplicates.Opts in the teacher repo.
type Params struct {
	// MaxGap is the gap-length normalizer used in the concave gap cost
	// (bp). Default 5000.
	MaxGap float64
	// GapExtend scales the concave gap cost. Default 0.01.
	GapExtend float64
	// MinScore is the minimum chain score to keep. Default 40.
	MinScore float32
	// MaxChainsPerGroup truncates, per spec.md S4.4 step 7, the global
	// result to MaxChainsPerGroup * (number of (q,t,strand) groups).
	// Default 50.
	MaxChainsPerGroup int
	// MaxDistance bounds both the query and target gap between two
	// linkable anchors (bp). Default 100000.
	MaxDistance int64
	// Bandwidth bounds the allowed diagonal deviation between two
	// linkable anchors (bp). Default 500.
	Bandwidth int64
	// StrictPerGroupCap, when true, applies MaxChainsPerGroup within
	// each (q,t,strand) group before the final global sort, instead of
	// the literal global truncation spec.md S4.4/S9 documents as the
	// default behavior. See SPEC_FULL.md S.D.
	StrictPerGroupCap bool
}

// DefaultParams returns the spec.md S4.4-documented defaults.
func DefaultParams() Params {
	return Params{
		MaxGap:            5000,
		GapExtend:         0.01,
		MinScore:          40,
		MaxChainsPerGroup: 50,
		MaxDistance:       100000,
		Bandwidth:         500,
	}
}

// Validate checks the bounds spec.md S7's InvalidParams kind covers.
func (p Params) Validate() error {
	if p.Bandwidth < 1 {
		return errors.Wrap(dotxerr.New(dotxerr.InvalidParams, "bandwidth must be >= 1"), "chain.Params")
	}
	if p.MaxGap <= 0 {
		return errors.Wrap(dotxerr.New(dotxerr.InvalidParams, "max_gap must be > 0"), "chain.Params")
	}
	if p.MaxDistance < 0 {
		return errors.Wrap(dotxerr.New(dotxerr.InvalidParams, "max_distance must be >= 0"), "chain.Params")
	}
	if p.MaxChainsPerGroup <= 0 {
		return errors.Wrap(dotxerr.New(dotxerr.InvalidParams, "max_chains_per_group must be > 0"), "chain.Params")
	}
	return nil
}
