package dotxfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dotxdb/dotx/dotxpb"
)

func TestContainerRoundTripScenarioS4(t *testing.T) {
	c := &Container{
		Metadata:      "scenario-s4",
		QueryContigs:  []dotxpb.ContigInfo{{Name: "chr1", Length: 1 << 20}},
		TargetContigs: []dotxpb.ContigInfo{{Name: "chr2", Length: 1 << 20}},
		Anchors: []dotxpb.Anchor{
			{
				Query: "chr1", Target: "chr2",
				QueryStart: 1000, QueryEnd: 2000,
				TargetStart: 3000, TargetEnd: 4000,
				Strand: dotxpb.Forward, MapQ: dotxpb.MissingMapQ,
				EngineTag: "test",
			},
			{
				Query: "chr1", Target: "chr2",
				QueryStart: 10000, QueryEnd: 11000,
				TargetStart: 15000, TargetEnd: 16000,
				Strand: dotxpb.Reverse, MapQ: 60,
				HasIdentity: true, Identity: 95.5,
				EngineTag: "test",
			},
		},
		Tiles: []dotxpb.DensityTile{
			{Level: 0, X: 0, Y: 0, Count: 5, Density: 1.0},
			{Level: 1, X: 1, Y: 2, Count: 3, Density: 0.6},
		},
		Verify: []dotxpb.VerifyResult{
			{TileID: dotxpb.PackTileID(1, 1, 2), Identity: 98.5, Insertions: 1, Deletions: 0, Substitutions: 2},
		},
	}

	path := filepath.Join(t.TempDir(), "s4.dotxdb")
	require.NoError(t, c.WriteToFile(path))

	got, err := ReadFromFile(path)
	require.NoError(t, err)

	require.Len(t, got.Anchors, 2)
	require.Equal(t, c.Anchors, got.Anchors)
	require.Equal(t, c.Tiles, got.Tiles)
	require.Equal(t, c.Verify, got.Verify)
}

func TestContainerEmpty(t *testing.T) {
	c := &Container{}
	path := filepath.Join(t.TempDir(), "empty.dotxdb")
	require.NoError(t, c.WriteToFile(path))

	got, err := ReadFromFile(path)
	require.NoError(t, err)
	require.Empty(t, got.Anchors)
	require.Empty(t, got.Tiles)
	require.Empty(t, got.Verify)
}

func TestContainerRewriteIsByteIdentical(t *testing.T) {
	c := &Container{
		QueryContigs: []dotxpb.ContigInfo{{Name: "chr1", Length: 100}},
		Anchors: []dotxpb.Anchor{
			{Query: "chr1", Target: "chr1", QueryStart: 0, QueryEnd: 10, TargetStart: 0, TargetEnd: 10, MapQ: dotxpb.MissingMapQ, EngineTag: "e"},
		},
	}
	b1, err := c.encodeAll()
	require.NoError(t, err)
	b2, err := c.encodeAll()
	require.NoError(t, err)
	require.Equal(t, b1, b2)
}

func TestDecodeAnchorsCorruption(t *testing.T) {
	_, err := decodeAnchorsPayload([]byte{1, 0, 0, 0, 0xFF})
	require.Error(t, err)
}

func TestDecodeStrandOutOfRange(t *testing.T) {
	anchors := []dotxpb.Anchor{
		{Query: "a", Target: "b", QueryStart: 0, QueryEnd: 1, TargetStart: 0, TargetEnd: 1, MapQ: dotxpb.MissingMapQ},
	}
	payload := encodeAnchorsPayload(anchors)
	// Strand byte is right after the u32 count, the two length-prefixed
	// names and the four 8-byte deltas: 4 + 2(len)+1 + 2(len)+1 + 32 = 42.
	strandOffset := 4 + 2 + 1 + 2 + 1 + 32
	payload[strandOffset] = 7
	_, err := decodeAnchorsPayload(payload)
	require.Error(t, err)
}

func TestStreamAnchorWriterMatchesEncodeAnchors(t *testing.T) {
	anchors := []dotxpb.Anchor{
		{Query: "chr1", Target: "chr2", QueryStart: 100, QueryEnd: 200, TargetStart: 300, TargetEnd: 400, MapQ: dotxpb.MissingMapQ, EngineTag: "e"},
		{Query: "chr1", Target: "chr2", QueryStart: 500, QueryEnd: 600, TargetStart: 100, TargetEnd: 200, MapQ: 10, EngineTag: "e"},
	}
	dotxpb.SortQueryMajor(anchors)

	sw, err := NewStreamAnchorWriter(uint32(len(anchors)))
	require.NoError(t, err)
	for i := range anchors {
		require.NoError(t, sw.Put(&anchors[i]))
	}
	streamed, err := sw.Finish()
	require.NoError(t, err)

	direct, err := EncodeAnchors(anchors)
	require.NoError(t, err)

	decodedStream, err := DecodeAnchors(streamed)
	require.NoError(t, err)
	decodedDirect, err := DecodeAnchors(direct)
	require.NoError(t, err)
	require.Equal(t, decodedDirect, decodedStream)
}

func TestStreamAnchorWriterAbortRemovesSpillFile(t *testing.T) {
	sw, err := NewStreamAnchorWriter(1)
	require.NoError(t, err)
	spillPath := sw.spill.Name()
	sw.Abort()
	_, statErr := os.Stat(spillPath)
	require.True(t, os.IsNotExist(statErr))
}
