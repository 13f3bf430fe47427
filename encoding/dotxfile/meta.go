package dotxfile

import (
	"github.com/pkg/errors"

	"github.com/dotxdb/dotx/dotxpb"
	"github.com/dotxdb/dotx/internal/bytebuf"
)

// sectionOffsets holds the eight u64 offset/size pairs the Meta section
// carries for the Anchors, Chains, Tiles and Verify sections. Chains is
// reserved: this implementation always writes ChainsSize == 0 (spec
// S4.3).
type sectionOffsets struct {
	AnchorsOffset, AnchorsSize uint64
	ChainsOffset, ChainsSize   uint64
	TilesOffset, TilesSize     uint64
	VerifyOffset, VerifySize   uint64
}

// meta is the container's Meta section: the query- and target-contig
// lists plus the section offset table.
type meta struct {
	QueryContigs  []dotxpb.ContigInfo
	TargetContigs []dotxpb.ContigInfo
	Offsets       sectionOffsets
}

func encodeContigList(w *bytebuf.Writer, contigs []dotxpb.ContigInfo) {
	w.PutUint32(uint32(len(contigs)))
	for _, c := range contigs {
		putLenPrefixedString(w, c.Name)
		w.PutUint64(c.Length)
		if c.HasCksum {
			w.PutUint8(1)
			w.PutUint32(uint32(len(c.Checksum)))
			w.PutBytes([]byte(c.Checksum))
		} else {
			w.PutUint8(0)
		}
	}
}

func decodeContigList(r *bytebuf.Reader) ([]dotxpb.ContigInfo, error) {
	count, err := r.Uint32()
	if err != nil {
		return nil, errors.Wrap(err, "contig list: count")
	}
	out := make([]dotxpb.ContigInfo, count)
	for i := uint32(0); i < count; i++ {
		name, err := getLenPrefixedString(r)
		if err != nil {
			return nil, errors.Wrapf(err, "contig[%d]: name", i)
		}
		length, err := r.Uint64()
		if err != nil {
			return nil, errors.Wrapf(err, "contig[%d]: length", i)
		}
		hasCksum, err := r.Uint8()
		if err != nil {
			return nil, errors.Wrapf(err, "contig[%d]: has_checksum", i)
		}
		c := dotxpb.ContigInfo{Name: name, Length: length}
		if hasCksum != 0 {
			c.HasCksum = true
			n, err := r.Uint32()
			if err != nil {
				return nil, errors.Wrapf(err, "contig[%d]: checksum length", i)
			}
			raw, err := r.RawBytes(int(n))
			if err != nil {
				return nil, errors.Wrapf(err, "contig[%d]: checksum", i)
			}
			c.Checksum = lossyUTF8(raw)
		}
		out[i] = c
	}
	return out, nil
}

func (m *meta) encode() []byte {
	w := bytebuf.NewWriter(256)
	encodeContigList(w, m.QueryContigs)
	encodeContigList(w, m.TargetContigs)
	w.PutUint64(m.Offsets.AnchorsOffset)
	w.PutUint64(m.Offsets.AnchorsSize)
	w.PutUint64(m.Offsets.ChainsOffset)
	w.PutUint64(m.Offsets.ChainsSize)
	w.PutUint64(m.Offsets.TilesOffset)
	w.PutUint64(m.Offsets.TilesSize)
	w.PutUint64(m.Offsets.VerifyOffset)
	w.PutUint64(m.Offsets.VerifySize)
	return w.Bytes()
}

func decodeMeta(buf []byte) (*meta, error) {
	r := bytebuf.NewReader(buf)
	qc, err := decodeContigList(r)
	if err != nil {
		return nil, errors.Wrap(err, "meta: query contigs")
	}
	tc, err := decodeContigList(r)
	if err != nil {
		return nil, errors.Wrap(err, "meta: target contigs")
	}
	m := &meta{QueryContigs: qc, TargetContigs: tc}
	fields := []*uint64{
		&m.Offsets.AnchorsOffset, &m.Offsets.AnchorsSize,
		&m.Offsets.ChainsOffset, &m.Offsets.ChainsSize,
		&m.Offsets.TilesOffset, &m.Offsets.TilesSize,
		&m.Offsets.VerifyOffset, &m.Offsets.VerifySize,
	}
	for _, f := range fields {
		v, err := r.Uint64()
		if err != nil {
			return nil, errors.Wrap(err, "meta: section offsets")
		}
		*f = v
	}
	return m, nil
}
