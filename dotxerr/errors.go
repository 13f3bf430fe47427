// Package dotxerr defines the error taxonomy shared by the dotxdb
// container, chainer, tile builder and verifier.
package dotxerr

import (
	"errors"
)

// Kind classifies an error into one of the categories the core surfaces
// to callers. Callers should not switch on error strings; use Of(err)
// instead.
type Kind int

const (
	// Other is the zero value: an error not produced by this package,
	// or one that doesn't fit any of the named kinds.
	Other Kind = iota
	// IO covers underlying read/write/seek/open failures.
	IO
	// InvalidMagic means the header magic was not "DOTX".
	InvalidMagic
	// UnsupportedVersion means the header version exceeds the compiled version.
	UnsupportedVersion
	// Compression means the block compressor rejected input on encode.
	Compression
	// Decompression means the block compressor rejected input on decode.
	Decompression
	// Corruption covers short reads mid-record, out-of-range flag bytes,
	// and counts inconsistent with the payload size.
	Corruption
	// InvalidSequence means the verifier was given impossible coordinates
	// or an empty extraction window.
	InvalidSequence
	// InvalidParams means chainer/verifier parameters violate their
	// documented bounds.
	InvalidParams
	// NoAnchors means the chainer was called on an empty anchor set.
	NoAnchors
)

func (k Kind) String() string {
	switch k {
	case IO:
		return "io"
	case InvalidMagic:
		return "invalid_magic"
	case UnsupportedVersion:
		return "unsupported_version"
	case Compression:
		return "compression"
	case Decompression:
		return "decompression"
	case Corruption:
		return "corruption"
	case InvalidSequence:
		return "invalid_sequence"
	case InvalidParams:
		return "invalid_params"
	case NoAnchors:
		return "no_anchors"
	default:
		return "other"
	}
}

// kindError pairs a Kind with a sentinel so errors.Is keeps working
// after errors.Wrap wraps it with call-site context.
type kindError struct {
	kind Kind
	msg  string
}

func (e *kindError) Error() string { return e.msg }

// New returns a sentinel error of the given kind and message. Wrap the
// result with github.com/pkg/errors.Wrap at call sites to attach
// context; Of() still recovers the original Kind through the wrap chain.
func New(kind Kind, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// Of reports the Kind of err, unwrapping any github.com/pkg/errors or
// stdlib wrap chain. Returns Other if err is nil or wasn't created by
// New.
func Of(err error) Kind {
	if err == nil {
		return Other
	}
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.kind
	}
	return Other
}

// Is reports whether err (or anything it wraps) has the given Kind.
func Is(err error, kind Kind) bool {
	return Of(err) == kind
}

var (
	// ErrInvalidMagic is the sentinel for Kind=InvalidMagic.
	ErrInvalidMagic = New(InvalidMagic, "dotxdb: invalid magic")
	// ErrUnsupportedVersion is the sentinel for Kind=UnsupportedVersion.
	ErrUnsupportedVersion = New(UnsupportedVersion, "dotxdb: unsupported version")
	// ErrNoAnchors is the sentinel for Kind=NoAnchors.
	ErrNoAnchors = New(NoAnchors, "dotxdb: no anchors")
)
