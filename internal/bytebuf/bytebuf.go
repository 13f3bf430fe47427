// Package bytebuf is a small little-endian byte buffer for the
// dotxdb wire formats, grounded on the growable-buffer idiom of
// github.com/grailbio/bio/encoding/pam/fieldio's byteBuffer: a single
// backing []byte doubled on overflow, with Put* methods for encoding
// and matching Reader methods (Uint8, Uint16, ...) for decoding.
//
// Unlike fieldio's byteBuffer, Reader methods return an error instead
// of panicking on underflow: dotxdb's container format reads untrusted
// files and must surface Corruption rather than crash the process
// (spec S7's propagation policy).
package bytebuf

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"github.com/dotxdb/dotx/dotxerr"
)

// Writer accumulates little-endian encoded fields into a growable
// buffer.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer with capacity preallocated.
func NewWriter(capacityHint int) *Writer {
	return &Writer{buf: make([]byte, 0, capacityHint)}
}

func (w *Writer) ensure(n int) {
	if cap(w.buf)-len(w.buf) >= n {
		return
	}
	newCap := ((len(w.buf)+n)/16 + 1) * 16
	if newCap < cap(w.buf)*2 {
		newCap = cap(w.buf) * 2
	}
	newBuf := make([]byte, len(w.buf), newCap)
	copy(newBuf, w.buf)
	w.buf = newBuf
}

// Bytes returns the bytes written so far. The caller must not retain
// it across further Put calls.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// Reset empties the buffer while keeping its backing array, so a
// Writer can be reused as per-record scratch space without
// reallocating on every record.
func (w *Writer) Reset() { w.buf = w.buf[:0] }

// PutUint8 appends v as one byte.
func (w *Writer) PutUint8(v uint8) {
	w.ensure(1)
	w.buf = append(w.buf, v)
}

// PutUint16 appends v as a little-endian fixed16.
func (w *Writer) PutUint16(v uint16) {
	w.ensure(2)
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

// PutUint32 appends v as a little-endian fixed32.
func (w *Writer) PutUint32(v uint32) {
	w.ensure(4)
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

// PutUint64 appends v as a little-endian fixed64.
func (w *Writer) PutUint64(v uint64) {
	w.ensure(8)
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

// PutFloat32 appends v as a little-endian IEEE-754 float32.
func (w *Writer) PutFloat32(v float32) {
	w.PutUint32(math.Float32bits(v))
}

// PutBytes appends data raw, without a length prefix.
func (w *Writer) PutBytes(data []byte) {
	w.ensure(len(data))
	w.buf = append(w.buf, data...)
}

// PutUvarint appends v as a standard unsigned varint.
func (w *Writer) PutUvarint(v uint64) {
	w.ensure(binary.MaxVarintLen64)
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	w.buf = append(w.buf, tmp[:n]...)
}

// Reader decodes little-endian fields from a fixed byte slice,
// returning a dotxerr Corruption error instead of panicking on
// underflow.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf for sequential decoding.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

// Cursor returns the current read offset into the wrapped buffer.
func (r *Reader) Cursor() int { return r.pos }

func (r *Reader) need(n int) error {
	if r.Remaining() < n {
		return errors.Wrapf(dotxerr.New(dotxerr.Corruption, "unexpected EOF"), "need %d bytes, have %d", n, r.Remaining())
	}
	return nil
}

// Uint8 reads one byte.
func (r *Reader) Uint8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

// Uint16 reads a little-endian fixed16.
func (r *Reader) Uint16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

// Uint32 reads a little-endian fixed32.
func (r *Reader) Uint32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

// Uint64 reads a little-endian fixed64.
func (r *Reader) Uint64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v, nil
}

// Float32 reads a little-endian IEEE-754 float32.
func (r *Reader) Float32() (float32, error) {
	v, err := r.Uint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// RawBytes returns the next n bytes without copying.
func (r *Reader) RawBytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	v := r.buf[r.pos : r.pos+n]
	r.pos += n
	return v, nil
}

// Uvarint reads a standard unsigned varint.
func (r *Reader) Uvarint() (uint64, error) {
	v, n := binary.Uvarint(r.buf[r.pos:])
	if n <= 0 {
		return 0, errors.Wrap(dotxerr.New(dotxerr.Corruption, "unexpected EOF"), "truncated varint")
	}
	r.pos += n
	return v, nil
}
