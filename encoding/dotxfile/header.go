package dotxfile

import (
	"github.com/pkg/errors"

	"github.com/dotxdb/dotx/dotxerr"
	"github.com/dotxdb/dotx/internal/bytebuf"
)

// magic is the four-byte container identifier, ASCII "DOTX".
var magic = [4]byte{'D', 'O', 'T', 'X'}

// Version is the current container wire-format version this package
// writes. Readers reject any version strictly greater than this.
const Version = 1

// Header is the fixed leading section of a .dotxdb file (spec S4.3):
//
//	offset 0   4 bytes  magic "DOTX"
//	offset 4   4 bytes  version u32
//	offset 8   8 bytes  build timestamp u64 (seconds since Unix epoch)
//	offset 16  4 bytes  metadata length u32
//	offset 20  L bytes  metadata bytes (UTF-8)
//	offset 20+L 4 bytes flags u32 (reserved, 0)
type Header struct {
	Version          uint32
	BuildTimestamp   uint64
	Metadata         string
	Flags            uint32
}

func (h *Header) encode() []byte {
	w := bytebuf.NewWriter(24 + len(h.Metadata))
	w.PutBytes(magic[:])
	w.PutUint32(h.Version)
	w.PutUint64(h.BuildTimestamp)
	w.PutUint32(uint32(len(h.Metadata)))
	w.PutBytes([]byte(h.Metadata))
	w.PutUint32(h.Flags)
	return w.Bytes()
}

// decodeHeader parses a Header from r, verifying the magic and that
// the version does not exceed Version. Unknown flag bits are reserved
// and never rejected.
func decodeHeader(r *bytebuf.Reader) (*Header, error) {
	magicBytes, err := r.RawBytes(4)
	if err != nil {
		return nil, errors.Wrap(err, "header: magic")
	}
	if string(magicBytes) != string(magic[:]) {
		return nil, errors.Wrapf(dotxerr.ErrInvalidMagic, "got %q", magicBytes)
	}
	version, err := r.Uint32()
	if err != nil {
		return nil, errors.Wrap(err, "header: version")
	}
	if version > Version {
		return nil, errors.Wrapf(dotxerr.ErrUnsupportedVersion, "file version %d > compiled version %d", version, Version)
	}
	ts, err := r.Uint64()
	if err != nil {
		return nil, errors.Wrap(err, "header: build timestamp")
	}
	metaLen, err := r.Uint32()
	if err != nil {
		return nil, errors.Wrap(err, "header: metadata length")
	}
	metaBytes, err := r.RawBytes(int(metaLen))
	if err != nil {
		return nil, errors.Wrap(err, "header: metadata")
	}
	flags, err := r.Uint32()
	if err != nil {
		return nil, errors.Wrap(err, "header: flags")
	}
	return &Header{
		Version:        version,
		BuildTimestamp: ts,
		Metadata:       lossyUTF8(metaBytes),
		Flags:          flags,
	}, nil
}
