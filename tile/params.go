// Package tile builds a multi-level density grid over the (target,
// query) anchor plane (spec.md S4.5), and packs (level, x, y) into the
// 64-bit dotxpb.TileID.
package tile

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/dotxdb/dotx/dotxerr"
)

// Params configures the tile builder.
type Params struct {
	// Levels is the set of pyramid levels to build, e.g. {0, 1, 2}.
	// Order does not matter; the builder sorts and dedups it.
	Levels []uint8
	// BaseResolutionX/Y is the (res_x, res_y) resolution at level 0.
	// Higher levels halve resolution per axis, clamped >= 1.
	BaseResolutionX, BaseResolutionY uint32
}

// DefaultParams returns a reasonable four-level pyramid over a
// 1024x1024 base grid.
func DefaultParams() Params {
	return Params{
		Levels:           []uint8{0, 1, 2, 3},
		BaseResolutionX:  1024,
		BaseResolutionY:  1024,
	}
}

// Validate checks the bounds the builder requires.
func (p Params) Validate() error {
	if len(p.Levels) == 0 {
		return errors.Wrap(dotxerr.New(dotxerr.InvalidParams, "levels must be non-empty"), "tile.Params")
	}
	for _, l := range p.Levels {
		if l > 32 {
			return errors.Wrap(dotxerr.New(dotxerr.InvalidParams, "level must be <= 32"), "tile.Params")
		}
	}
	if p.BaseResolutionX == 0 || p.BaseResolutionY == 0 {
		return errors.Wrap(dotxerr.New(dotxerr.InvalidParams, "base resolution must be > 0"), "tile.Params")
	}
	return nil
}

// sortedLevels returns the distinct levels in ascending order.
func (p Params) sortedLevels() []uint8 {
	levels := append([]uint8(nil), p.Levels...)
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })
	out := levels[:0]
	var last uint8
	haveLast := false
	for _, l := range levels {
		if haveLast && l == last {
			continue
		}
		out = append(out, l)
		last = l
		haveLast = true
	}
	return out
}

// resolutionAt returns (res_x, res_y) at level, clamped to >= 1.
func (p Params) resolutionAt(level uint8) (uint32, uint32) {
	rx := p.BaseResolutionX >> level
	ry := p.BaseResolutionY >> level
	if rx < 1 {
		rx = 1
	}
	if ry < 1 {
		ry = 1
	}
	return rx, ry
}
