package dotxfile

import (
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"

	"github.com/dotxdb/dotx/dotxerr"
	"github.com/dotxdb/dotx/dotxpb"
	"github.com/dotxdb/dotx/internal/bytebuf"
)

// ZstdLevel is the default block compressor level used for the Anchors
// and Tiles sections (spec S4.2: "zstd-family, level 3 default").
const ZstdLevel = zstd.SpeedDefault // zstd.SpeedDefault == level ~3 throughput/ratio tradeoff

// encodeAnchorsPayload serializes a query-major sorted anchor sequence
// into the uncompressed payload P described in spec S4.2:
//
//	u32 count
//	per anchor: u16 len(q) || q, u16 len(t) || t,
//	            u64 delta-qs, delta-qe, delta-ts, delta-te (wrapping),
//	            u8 strand, u8 has_mapq [|| u8 mapq],
//	            u8 has_identity [|| f32 identity],
//	            u16 len(engine_tag) || engine_tag
//
// Only the fields named in this layout are persisted; QueryLength,
// TargetLength, ResidueMatches, AlignmentBlockLength and Tags are
// processing-time-only in this container version.
func encodeAnchorsPayload(anchors []dotxpb.Anchor) []byte {
	w := bytebuf.NewWriter(64 + 32*len(anchors))
	w.PutUint32(uint32(len(anchors)))

	var prevQS, prevQE, prevTS, prevTE uint64
	for i := range anchors {
		a := &anchors[i]
		putLenPrefixedString(w, a.Query)
		putLenPrefixedString(w, a.Target)

		qs, qe := uint64(a.QueryStart), uint64(a.QueryEnd)
		ts, te := uint64(a.TargetStart), uint64(a.TargetEnd)
		w.PutUint64(qs - prevQS)
		w.PutUint64(qe - prevQE)
		w.PutUint64(ts - prevTS)
		w.PutUint64(te - prevTE)
		prevQS, prevQE, prevTS, prevTE = qs, qe, ts, te

		w.PutUint8(uint8(a.Strand))

		if a.MapQ != dotxpb.MissingMapQ {
			w.PutUint8(1)
			w.PutUint8(a.MapQ)
		} else {
			w.PutUint8(0)
		}

		if a.HasIdentity {
			w.PutUint8(1)
			w.PutFloat32(a.Identity)
		} else {
			w.PutUint8(0)
		}

		putLenPrefixedString(w, a.EngineTag)
	}
	return w.Bytes()
}

func putLenPrefixedString(w *bytebuf.Writer, s string) {
	w.PutUint16(uint16(len(s)))
	w.PutBytes([]byte(s))
}

// decodeAnchorsPayload is the inverse of encodeAnchorsPayload. Corrupt
// input (short reads, strand flag not in {0,1}) yields a Corruption
// error. UTF-8 decoding is lossy and never fails, per spec S4.2.
func decodeAnchorsPayload(p []byte) ([]dotxpb.Anchor, error) {
	r := bytebuf.NewReader(p)
	count, err := r.Uint32()
	if err != nil {
		return nil, errors.Wrap(err, "anchors: count")
	}
	anchors := make([]dotxpb.Anchor, count)

	var prevQS, prevQE, prevTS, prevTE uint64
	for i := uint32(0); i < count; i++ {
		a := &anchors[i]
		if a.Query, err = getLenPrefixedString(r); err != nil {
			return nil, errors.Wrapf(err, "anchors[%d]: query name", i)
		}
		if a.Target, err = getLenPrefixedString(r); err != nil {
			return nil, errors.Wrapf(err, "anchors[%d]: target name", i)
		}

		dqs, err := r.Uint64()
		if err != nil {
			return nil, errors.Wrapf(err, "anchors[%d]: delta qs", i)
		}
		dqe, err := r.Uint64()
		if err != nil {
			return nil, errors.Wrapf(err, "anchors[%d]: delta qe", i)
		}
		dts, err := r.Uint64()
		if err != nil {
			return nil, errors.Wrapf(err, "anchors[%d]: delta ts", i)
		}
		dte, err := r.Uint64()
		if err != nil {
			return nil, errors.Wrapf(err, "anchors[%d]: delta te", i)
		}
		prevQS += dqs
		prevQE += dqe
		prevTS += dts
		prevTE += dte
		a.QueryStart, a.QueryEnd = int64(prevQS), int64(prevQE)
		a.TargetStart, a.TargetEnd = int64(prevTS), int64(prevTE)

		strandFlag, err := r.Uint8()
		if err != nil {
			return nil, errors.Wrapf(err, "anchors[%d]: strand", i)
		}
		switch strandFlag {
		case 0:
			a.Strand = dotxpb.Forward
		case 1:
			a.Strand = dotxpb.Reverse
		default:
			return nil, errors.Wrapf(dotxerr.New(dotxerr.Corruption, "bad strand flag"), "anchors[%d]: flag=%d", i, strandFlag)
		}

		hasMapQ, err := r.Uint8()
		if err != nil {
			return nil, errors.Wrapf(err, "anchors[%d]: has_mapq", i)
		}
		if hasMapQ != 0 {
			if a.MapQ, err = r.Uint8(); err != nil {
				return nil, errors.Wrapf(err, "anchors[%d]: mapq", i)
			}
		} else {
			a.MapQ = dotxpb.MissingMapQ
		}

		hasIdentity, err := r.Uint8()
		if err != nil {
			return nil, errors.Wrapf(err, "anchors[%d]: has_identity", i)
		}
		if hasIdentity != 0 {
			a.HasIdentity = true
			if a.Identity, err = r.Float32(); err != nil {
				return nil, errors.Wrapf(err, "anchors[%d]: identity", i)
			}
		}

		if a.EngineTag, err = getLenPrefixedString(r); err != nil {
			return nil, errors.Wrapf(err, "anchors[%d]: engine_tag", i)
		}
	}
	return anchors, nil
}

func getLenPrefixedString(r *bytebuf.Reader) (string, error) {
	n, err := r.Uint16()
	if err != nil {
		return "", err
	}
	raw, err := r.RawBytes(int(n))
	if err != nil {
		return "", err
	}
	return lossyUTF8(raw), nil
}

// compressBlock compresses data with zstd at ZstdLevel and prefixes the
// result with a little-endian u64 compressed length (spec S4.2).
func compressBlock(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(ZstdLevel))
	if err != nil {
		return nil, errors.Wrap(dotxerr.New(dotxerr.Compression, err.Error()), "new zstd encoder")
	}
	defer enc.Close()
	compressed := enc.EncodeAll(data, nil)

	w := bytebuf.NewWriter(8 + len(compressed))
	w.PutUint64(uint64(len(compressed)))
	w.PutBytes(compressed)
	return w.Bytes(), nil
}

// decompressBlock reads a u64-length-prefixed zstd block from r and
// returns the decompressed bytes.
func decompressBlock(r *bytebuf.Reader) ([]byte, error) {
	n, err := r.Uint64()
	if err != nil {
		return nil, errors.Wrap(err, "block length")
	}
	raw, err := r.RawBytes(int(n))
	if err != nil {
		return nil, errors.Wrap(err, "block body")
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, errors.Wrap(dotxerr.New(dotxerr.Decompression, err.Error()), "new zstd decoder")
	}
	defer dec.Close()
	out, err := dec.DecodeAll(raw, nil)
	if err != nil {
		return nil, errors.Wrap(dotxerr.New(dotxerr.Decompression, err.Error()), "zstd decode")
	}
	return out, nil
}

// EncodeAnchors sorts anchors query-major (spec S4.1) and returns the
// compressed, length-prefixed Anchors section payload.
func EncodeAnchors(anchors []dotxpb.Anchor) ([]byte, error) {
	sorted := append([]dotxpb.Anchor(nil), anchors...)
	dotxpb.SortQueryMajor(sorted)
	payload := encodeAnchorsPayload(sorted)
	return compressBlock(payload)
}

// DecodeAnchors is the inverse of EncodeAnchors.
func DecodeAnchors(section []byte) ([]dotxpb.Anchor, error) {
	r := bytebuf.NewReader(section)
	payload, err := decompressBlock(r)
	if err != nil {
		return nil, err
	}
	return decodeAnchorsPayload(payload)
}

// StreamAnchorWriter encodes anchors one at a time directly into a
// zstd.Encoder, for the case spec S5 calls out: N large enough that a
// fully materialized payload P would exceed available RAM. Unlike
// EncodeAnchors, it never holds the uncompressed payload in memory:
// each Put call feeds encodeAnchorsPayload's per-anchor bytes straight
// into the encoder, which flushes compressed blocks to a spill file as
// its window fills. For the same (already query-major-sorted) input,
// its output decompresses to the same payload P as EncodeAnchors,
// because both paths share the same per-anchor wire layout and delta
// state; the compressed bytes themselves are not guaranteed to equal
// EncodeAnchors' output. Only the count must be known up front, since
// it is the first field in the payload.
//
// Callers MUST feed anchors in query-major order and supply the exact
// final count to NewStreamAnchorWriter; StreamAnchorWriter does not
// buffer the full set to sort or count it.
type StreamAnchorWriter struct {
	spill   *os.File
	enc     *zstd.Encoder
	scratch *bytebuf.Writer
	prevQS, prevQE, prevTS, prevTE uint64
}

// NewStreamAnchorWriter returns a writer ready to accept count anchors
// via Put. It opens a temp file to hold the compressed output as it is
// produced; callers must call Finish (or Abort, on an early exit) to
// release it.
func NewStreamAnchorWriter(count uint32) (*StreamAnchorWriter, error) {
	spill, err := os.CreateTemp("", "dotxdb-anchors-*.zst")
	if err != nil {
		return nil, errors.Wrap(dotxerr.New(dotxerr.IO, err.Error()), "stream anchor writer: spill file")
	}
	enc, err := zstd.NewWriter(spill, zstd.WithEncoderLevel(ZstdLevel))
	if err != nil {
		spill.Close()
		os.Remove(spill.Name())
		return nil, errors.Wrap(dotxerr.New(dotxerr.Compression, err.Error()), "stream anchor writer: new zstd encoder")
	}
	s := &StreamAnchorWriter{spill: spill, enc: enc, scratch: bytebuf.NewWriter(64)}
	s.scratch.PutUint32(count)
	if _, err := enc.Write(s.scratch.Bytes()); err != nil {
		return nil, s.abort(err)
	}
	return s, nil
}

// Put streams one anchor's wire-encoded bytes into the zstd encoder.
// Anchors must be supplied in query-major order.
func (s *StreamAnchorWriter) Put(a *dotxpb.Anchor) error {
	s.scratch.Reset()
	putLenPrefixedString(s.scratch, a.Query)
	putLenPrefixedString(s.scratch, a.Target)

	qs, qe := uint64(a.QueryStart), uint64(a.QueryEnd)
	ts, te := uint64(a.TargetStart), uint64(a.TargetEnd)
	s.scratch.PutUint64(qs - s.prevQS)
	s.scratch.PutUint64(qe - s.prevQE)
	s.scratch.PutUint64(ts - s.prevTS)
	s.scratch.PutUint64(te - s.prevTE)
	s.prevQS, s.prevQE, s.prevTS, s.prevTE = qs, qe, ts, te

	s.scratch.PutUint8(uint8(a.Strand))
	if a.MapQ != dotxpb.MissingMapQ {
		s.scratch.PutUint8(1)
		s.scratch.PutUint8(a.MapQ)
	} else {
		s.scratch.PutUint8(0)
	}
	if a.HasIdentity {
		s.scratch.PutUint8(1)
		s.scratch.PutFloat32(a.Identity)
	} else {
		s.scratch.PutUint8(0)
	}
	putLenPrefixedString(s.scratch, a.EngineTag)

	if _, err := s.enc.Write(s.scratch.Bytes()); err != nil {
		return s.abort(err)
	}
	return nil
}

// Finish closes the zstd stream, reads back the compressed spill file,
// and returns it as a u64-length-prefixed Anchors section that
// DecodeAnchors reads back to the same anchors as EncodeAnchors'
// output. The spill file is removed before
// returning, whether or not an error occurred.
func (s *StreamAnchorWriter) Finish() ([]byte, error) {
	if err := s.enc.Close(); err != nil {
		return nil, s.abort(err)
	}
	if _, err := s.spill.Seek(0, io.SeekStart); err != nil {
		return nil, s.abort(err)
	}
	compressed, err := io.ReadAll(s.spill)
	s.spill.Close()
	os.Remove(s.spill.Name())
	if err != nil {
		return nil, errors.Wrap(dotxerr.New(dotxerr.IO, err.Error()), "stream anchor writer: read spill file")
	}

	w := bytebuf.NewWriter(8 + len(compressed))
	w.PutUint64(uint64(len(compressed)))
	w.PutBytes(compressed)
	return w.Bytes(), nil
}

// Abort discards the writer's spill file without producing output; use
// it when giving up on a stream (e.g. the caller's own error path)
// instead of calling Finish.
func (s *StreamAnchorWriter) Abort() {
	s.enc.Close()
	s.spill.Close()
	os.Remove(s.spill.Name())
}

func (s *StreamAnchorWriter) abort(cause error) error {
	s.enc.Close()
	s.spill.Close()
	os.Remove(s.spill.Name())
	return errors.Wrap(dotxerr.New(dotxerr.IO, cause.Error()), "stream anchor writer")
}
