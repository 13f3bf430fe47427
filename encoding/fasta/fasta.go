// Package fasta parses FASTA-formatted sequence files and adapts them
// into a verify.SequenceProvider (spec.md S6's "sequence provider
// interface"). See http://www.htslib.org/doc/faidx.html. Briefly,
// FASTA files consist of a number of named sequences that may be
// interrupted by newlines. For example:
//
// >chr7
// ACGTAC
// GAGGAC
// GCG
// >chr8
// ACGT
//
// Sequence names are defined to be the stretch of characters excluding
// spaces immediately after '>'. Any text appearing after a space is
// ignored. For example, '>chr1 A viral sequence' becomes 'chr1'.
package fasta

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/dotxdb/dotx/verify"
)

const bufferInitSize = 300 * 1024 * 1024

// Load reads every sequence in r into memory and returns it as a
// verify.SequenceProvider, keyed by contig name. The core performs no
// residue-alphabet validation on the result (spec.md S6); bytes are
// kept exactly as they appear in the file, including case.
func Load(r io.Reader) (verify.SequenceProvider, error) {
	provider := make(verify.SequenceProvider)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, bufferInitSize)

	var name string
	var seq strings.Builder
	flush := func() error {
		if name == "" {
			return nil
		}
		provider[name] = []byte(seq.String())
		seq.Reset()
		return nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			if err := flush(); err != nil {
				return nil, err
			}
			name = strings.SplitN(line[1:], " ", 2)[0]
			if name == "" {
				return nil, errors.New("fasta: malformed header line")
			}
			continue
		}
		if name == "" {
			return nil, errors.New("fasta: sequence data before first header")
		}
		seq.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "fasta: read")
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return provider, nil
}
