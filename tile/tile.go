package tile

import (
	"math"
	"sort"

	"github.com/grailbio/base/log"

	"github.com/dotxdb/dotx/dotxpb"
)

type cellKey struct {
	level uint8
	x, y  uint32
}

// Build aggregates anchors into a multi-level density grid (spec.md
// S4.5). Anchors with a degenerate query or target extent (qs>=qe or
// ts>=te) do not contribute to any cell.
func Build(anchors []dotxpb.Anchor, params Params) ([]dotxpb.DensityTile, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	tMin, tMax, qMin, qMax := worldExtents(anchors)
	levels := params.sortedLevels()

	counts := make(map[cellKey]uint32)
	for i := range anchors {
		a := &anchors[i]
		if a.QueryStart >= a.QueryEnd || a.TargetStart >= a.TargetEnd {
			continue
		}
		nx := normalize(float64(a.TargetStart), tMin, tMax)
		ny := normalize(float64(a.QueryStart), qMin, qMax)
		for _, level := range levels {
			rx, ry := params.resolutionAt(level)
			ix := cellIndex(nx, rx)
			iy := cellIndex(ny, ry)
			counts[cellKey{level, ix, iy}]++
		}
	}

	maxByLevel := make(map[uint8]uint32, len(levels))
	for k, c := range counts {
		if c > maxByLevel[k.level] {
			maxByLevel[k.level] = c
		}
	}

	tiles := make([]dotxpb.DensityTile, 0, len(counts))
	for k, c := range counts {
		cmax := maxByLevel[k.level]
		var density float32
		if cmax > 0 {
			density = float32(c) / float32(cmax)
		}
		tiles = append(tiles, dotxpb.DensityTile{Level: k.level, X: k.x, Y: k.y, Count: c, Density: density})
	}
	sort.Slice(tiles, func(i, j int) bool {
		if tiles[i].Level != tiles[j].Level {
			return tiles[i].Level < tiles[j].Level
		}
		if tiles[i].X != tiles[j].X {
			return tiles[i].X < tiles[j].X
		}
		return tiles[i].Y < tiles[j].Y
	})

	log.Debug.Printf("tile: built %d tiles across %d levels from %d anchors", len(tiles), len(levels), len(anchors))
	return tiles, nil
}

func worldExtents(anchors []dotxpb.Anchor) (tMin, tMax, qMin, qMax float64) {
	if len(anchors) == 0 {
		return 0, 0, 0, 0
	}
	tMin, tMax = math.Inf(1), math.Inf(-1)
	qMin, qMax = math.Inf(1), math.Inf(-1)
	for i := range anchors {
		a := &anchors[i]
		if f := float64(a.TargetStart); f < tMin {
			tMin = f
		}
		if f := float64(a.TargetEnd); f > tMax {
			tMax = f
		}
		if f := float64(a.QueryStart); f < qMin {
			qMin = f
		}
		if f := float64(a.QueryEnd); f > qMax {
			qMax = f
		}
	}
	return
}

func normalize(v, lo, hi float64) float64 {
	n := (v - lo) / math.Max(1, hi-lo)
	if n < 0 {
		return 0
	}
	if n > 1 {
		return 1
	}
	return n
}

func cellIndex(n float64, res uint32) uint32 {
	if res <= 1 {
		return 0
	}
	ix := uint32(math.Floor(n * float64(res-1)))
	if ix >= res {
		ix = res - 1
	}
	return ix
}

// TileFor returns the TileID of the cell containing the top-left
// corner (TargetStart, QueryStart) of a, at the given level, computed
// against the world extents of allAnchors. This is the lookup the
// verifier's refinement merge step uses (spec.md S4.6) to map a
// single anchor back to the tile it was aggregated into.
func TileFor(a *dotxpb.Anchor, allAnchors []dotxpb.Anchor, level uint8, params Params) uint64 {
	tMin, tMax, qMin, qMax := worldExtents(allAnchors)
	rx, ry := params.resolutionAt(level)
	nx := normalize(float64(a.TargetStart), tMin, tMax)
	ny := normalize(float64(a.QueryStart), qMin, qMax)
	x := cellIndex(nx, rx)
	y := cellIndex(ny, ry)
	return dotxpb.PackTileID(level, x, y)
}
