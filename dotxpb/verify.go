package dotxpb

import "sort"

// VerifyResult is the outcome of banded local verification for the
// anchors that fall within one density tile. Stored sorted by TileID
// ascending; on merge, a newer entry overwrites an older one with the
// same TileID.
type VerifyResult struct {
	TileID        uint64
	Identity      float32 // percent, [0, 100]
	Insertions    uint32
	Deletions     uint32
	Substitutions uint32
}

// SortByTileID sorts results in place by TileID ascending.
func SortByTileID(results []VerifyResult) {
	sort.Slice(results, func(i, j int) bool { return results[i].TileID < results[j].TileID })
}

// MergeVerifyResults merges existing and incoming by TileID, with
// incoming entries overwriting existing ones that share a TileID. The
// result is sorted by TileID ascending. Neither input slice is
// mutated.
func MergeVerifyResults(existing, incoming []VerifyResult) []VerifyResult {
	byTile := make(map[uint64]VerifyResult, len(existing)+len(incoming))
	for _, r := range existing {
		byTile[r.TileID] = r
	}
	for _, r := range incoming {
		byTile[r.TileID] = r
	}
	out := make([]VerifyResult, 0, len(byTile))
	for _, r := range byTile {
		out = append(out, r)
	}
	SortByTileID(out)
	return out
}
