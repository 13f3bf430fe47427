package dotxfile

import (
	"github.com/pkg/errors"

	"github.com/dotxdb/dotx/dotxpb"
	"github.com/dotxdb/dotx/internal/bytebuf"
)

// encodeTilesPayload serializes tiles as spec S4.5:
//
//	u32 count
//	per tile: u8 level, u32 x, u32 y, u32 count, f32 density
func encodeTilesPayload(tiles []dotxpb.DensityTile) []byte {
	w := bytebuf.NewWriter(4 + 17*len(tiles))
	w.PutUint32(uint32(len(tiles)))
	for _, t := range tiles {
		w.PutUint8(t.Level)
		w.PutUint32(t.X)
		w.PutUint32(t.Y)
		w.PutUint32(t.Count)
		w.PutFloat32(t.Density)
	}
	return w.Bytes()
}

func decodeTilesPayload(p []byte) ([]dotxpb.DensityTile, error) {
	r := bytebuf.NewReader(p)
	count, err := r.Uint32()
	if err != nil {
		return nil, errors.Wrap(err, "tiles: count")
	}
	out := make([]dotxpb.DensityTile, count)
	for i := uint32(0); i < count; i++ {
		level, err := r.Uint8()
		if err != nil {
			return nil, errors.Wrapf(err, "tiles[%d]: level", i)
		}
		x, err := r.Uint32()
		if err != nil {
			return nil, errors.Wrapf(err, "tiles[%d]: x", i)
		}
		y, err := r.Uint32()
		if err != nil {
			return nil, errors.Wrapf(err, "tiles[%d]: y", i)
		}
		cnt, err := r.Uint32()
		if err != nil {
			return nil, errors.Wrapf(err, "tiles[%d]: count", i)
		}
		density, err := r.Float32()
		if err != nil {
			return nil, errors.Wrapf(err, "tiles[%d]: density", i)
		}
		out[i] = dotxpb.DensityTile{Level: level, X: x, Y: y, Count: cnt, Density: density}
	}
	return out, nil
}

// EncodeTiles compresses the tile list into the Tiles section payload.
func EncodeTiles(tiles []dotxpb.DensityTile) ([]byte, error) {
	return compressBlock(encodeTilesPayload(tiles))
}

// DecodeTiles is the inverse of EncodeTiles.
func DecodeTiles(section []byte) ([]dotxpb.DensityTile, error) {
	r := bytebuf.NewReader(section)
	payload, err := decompressBlock(r)
	if err != nil {
		return nil, err
	}
	return decodeTilesPayload(payload)
}
