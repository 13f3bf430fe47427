package dotxfile

import (
	"github.com/pkg/errors"

	"github.com/dotxdb/dotx/dotxpb"
	"github.com/dotxdb/dotx/internal/bytebuf"
)

// encodeVerifyPayload serializes verify results, sorted by TileID
// ascending, using the same shape as the Tiles payload:
//
//	u32 count
//	per result: u64 tile_id, f32 identity, u32 insertions, u32 deletions, u32 substitutions
func encodeVerifyPayload(results []dotxpb.VerifyResult) []byte {
	sorted := append([]dotxpb.VerifyResult(nil), results...)
	dotxpb.SortByTileID(sorted)

	w := bytebuf.NewWriter(4 + 20*len(sorted))
	w.PutUint32(uint32(len(sorted)))
	for _, v := range sorted {
		w.PutUint64(v.TileID)
		w.PutFloat32(v.Identity)
		w.PutUint32(v.Insertions)
		w.PutUint32(v.Deletions)
		w.PutUint32(v.Substitutions)
	}
	return w.Bytes()
}

func decodeVerifyPayload(p []byte) ([]dotxpb.VerifyResult, error) {
	r := bytebuf.NewReader(p)
	count, err := r.Uint32()
	if err != nil {
		return nil, errors.Wrap(err, "verify: count")
	}
	out := make([]dotxpb.VerifyResult, count)
	for i := uint32(0); i < count; i++ {
		tileID, err := r.Uint64()
		if err != nil {
			return nil, errors.Wrapf(err, "verify[%d]: tile_id", i)
		}
		identity, err := r.Float32()
		if err != nil {
			return nil, errors.Wrapf(err, "verify[%d]: identity", i)
		}
		ins, err := r.Uint32()
		if err != nil {
			return nil, errors.Wrapf(err, "verify[%d]: insertions", i)
		}
		del, err := r.Uint32()
		if err != nil {
			return nil, errors.Wrapf(err, "verify[%d]: deletions", i)
		}
		sub, err := r.Uint32()
		if err != nil {
			return nil, errors.Wrapf(err, "verify[%d]: substitutions", i)
		}
		out[i] = dotxpb.VerifyResult{TileID: tileID, Identity: identity, Insertions: ins, Deletions: del, Substitutions: sub}
	}
	return out, nil
}

// EncodeVerify compresses the verify-result list into the Verify
// section payload.
func EncodeVerify(results []dotxpb.VerifyResult) ([]byte, error) {
	return compressBlock(encodeVerifyPayload(results))
}

// DecodeVerify is the inverse of EncodeVerify.
func DecodeVerify(section []byte) ([]dotxpb.VerifyResult, error) {
	r := bytebuf.NewReader(section)
	payload, err := decompressBlock(r)
	if err != nil {
		return nil, err
	}
	return decodeVerifyPayload(payload)
}
