package tile

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dotxdb/dotx/dotxpb"
)

func anchorAt(qs, qe, ts, te int64) dotxpb.Anchor {
	return dotxpb.Anchor{
		Query: "q", Target: "t",
		QueryStart: qs, QueryEnd: qe, TargetStart: ts, TargetEnd: te,
		MapQ: dotxpb.MissingMapQ,
	}
}

func TestBuildInvariants(t *testing.T) {
	anchors := []dotxpb.Anchor{
		anchorAt(0, 100, 0, 100),
		anchorAt(100, 200, 100, 200),
		anchorAt(500, 600, 500, 600),
		anchorAt(500, 600, 500, 600), // same cell as above at low levels
	}
	params := Params{Levels: []uint8{0, 1, 2}, BaseResolutionX: 16, BaseResolutionY: 16}
	tiles, err := Build(anchors, params)
	require.NoError(t, err)

	byLevel := map[uint8]uint32{}
	for _, tl := range tiles {
		require.GreaterOrEqual(t, tl.Count, uint32(1))
		require.GreaterOrEqual(t, tl.Density, float32(0))
		require.LessOrEqual(t, tl.Density, float32(1))
		rx, ry := params.resolutionAt(tl.Level)
		require.Less(t, tl.X, rx)
		require.Less(t, tl.Y, ry)
		byLevel[tl.Level] += tl.Count
	}
	for _, l := range []uint8{0, 1, 2} {
		require.Equal(t, uint32(len(anchors)), byLevel[l])
	}
}

func TestBuildDropsDegenerateAnchors(t *testing.T) {
	anchors := []dotxpb.Anchor{
		anchorAt(0, 100, 0, 100),
		anchorAt(5, 5, 0, 100), // degenerate query span
	}
	tiles, err := Build(anchors, Params{Levels: []uint8{0}, BaseResolutionX: 4, BaseResolutionY: 4})
	require.NoError(t, err)
	var total uint32
	for _, tl := range tiles {
		total += tl.Count
	}
	require.Equal(t, uint32(1), total)
}

func TestBuildEmptyAnchorSet(t *testing.T) {
	tiles, err := Build(nil, DefaultParams())
	require.NoError(t, err)
	require.Empty(t, tiles)
}

func TestParamsValidateRejectsLevelAbove32(t *testing.T) {
	p := Params{Levels: []uint8{33}, BaseResolutionX: 4, BaseResolutionY: 4}
	require.Error(t, p.Validate())
}

// Scenario S6: tile-id round trip across extremes, exercised through
// the dotxpb package this module depends on.
func TestTileIDPackUnpackExtremes(t *testing.T) {
	cases := []struct{ level uint8; x, y uint32 }{
		{0, 0, 0},
		{255, 0, 0},
		{0, dotxpb.MaxTileCoord, 0},
		{0, 0, dotxpb.MaxTileCoord},
		{32, 1_234_567, 7_654_321},
	}
	for _, c := range cases {
		id := dotxpb.PackTileID(c.level, c.x, c.y)
		gotLevel, gotX, gotY := dotxpb.UnpackTileID(id)
		require.Equal(t, c.level, gotLevel)
		require.Equal(t, c.x, gotX)
		require.Equal(t, c.y, gotY)
	}
}
