package verify

import (
	"github.com/grailbio/base/log"
	"github.com/pkg/errors"

	"github.com/dotxdb/dotx/dotxerr"
	"github.com/dotxdb/dotx/dotxpb"
	"github.com/dotxdb/dotx/tile"
)

// AnchorFailure records a non-fatal per-anchor verification failure
// (spec.md S4.6's "per-anchor verification failures are collected; the
// batch continues").
type AnchorFailure struct {
	Index int
	Err   error
}

// BatchResult is the outcome of RunBatch.
type BatchResult struct {
	// Verify is existingVerify merged with the newly computed results,
	// sorted by TileID, newer entries winning ties (spec.md S4.6).
	Verify []dotxpb.VerifyResult
	// Anchors is a copy of the input anchors with Identity/HasIdentity
	// updated for every anchor that verified successfully.
	Anchors  []dotxpb.Anchor
	Failures []AnchorFailure
}

// RunBatch verifies each anchor in anchors against provider, merging
// the resulting VerifyResults into existingVerify by tile id (newer
// overrides). The tile id for an anchor is computed against the
// maximum level present in existingTiles (spec.md S4.6); allAnchors is
// the full anchor set used to recompute the world extents that level
// was built from.
//
// RunBatch returns a fatal error only when a referenced contig is
// absent from provider; all other per-anchor failures are collected
// into BatchResult.Failures and do not stop the batch.
func RunBatch(
	anchors []dotxpb.Anchor,
	allAnchors []dotxpb.Anchor,
	provider SequenceProvider,
	existingTiles []dotxpb.DensityTile,
	existingVerify []dotxpb.VerifyResult,
	tileParams tile.Params,
	params Params,
) (*BatchResult, error) {
	level := maxLevel(existingTiles)

	out := &BatchResult{
		Anchors: append([]dotxpb.Anchor(nil), anchors...),
	}
	var fresh []dotxpb.VerifyResult
	for i := range out.Anchors {
		a := &out.Anchors[i]
		querySeq, ok := provider[a.Query]
		if !ok {
			return nil, errors.Wrapf(dotxerr.New(dotxerr.InvalidSequence, "missing contig in sequence map"), "query contig %q", a.Query)
		}
		targetSeq, ok := provider[a.Target]
		if !ok {
			return nil, errors.Wrapf(dotxerr.New(dotxerr.InvalidSequence, "missing contig in sequence map"), "target contig %q", a.Target)
		}

		res, err := VerifyAnchor(a, querySeq, targetSeq, params)
		if err != nil {
			out.Failures = append(out.Failures, AnchorFailure{Index: i, Err: err})
			continue
		}

		tileID := tile.TileFor(a, allAnchors, level, tileParams)
		fresh = append(fresh, dotxpb.VerifyResult{
			TileID:        tileID,
			Identity:      res.Identity,
			Insertions:    uint32(res.Insertions),
			Deletions:     uint32(res.Deletions),
			Substitutions: uint32(res.Mismatches),
		})
		a.HasIdentity = true
		a.Identity = res.Identity
	}

	out.Verify = dotxpb.MergeVerifyResults(existingVerify, fresh)
	log.Debug.Printf("verify: batch of %d anchors, %d succeeded, %d failed",
		len(anchors), len(fresh), len(out.Failures))
	return out, nil
}

func maxLevel(tiles []dotxpb.DensityTile) uint8 {
	var max uint8
	seen := false
	for _, t := range tiles {
		if !seen || t.Level > max {
			max = t.Level
			seen = true
		}
	}
	return max
}
