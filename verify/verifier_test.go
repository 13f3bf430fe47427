package verify

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dotxdb/dotx/dotxerr"
	"github.com/dotxdb/dotx/dotxpb"
)

func anchorFwd(qs, qe, ts, te int64) *dotxpb.Anchor {
	return &dotxpb.Anchor{
		Query: "q", Target: "t",
		QueryStart: qs, QueryEnd: qe, TargetStart: ts, TargetEnd: te,
		Strand: dotxpb.Forward, MapQ: dotxpb.MissingMapQ,
	}
}

// Invariant 7: identical query/target substrings verify at 100% with
// no edits.
func TestVerifyIdenticalSubstringIsPerfectIdentity(t *testing.T) {
	seq := []byte("ACGTACGTACGT")
	a := anchorFwd(0, int64(len(seq)), 0, int64(len(seq)))
	res, err := VerifyAnchor(a, seq, seq, DefaultParams())
	require.NoError(t, err)
	require.Equal(t, float32(100), res.Identity)
	require.Zero(t, res.Mismatches)
	require.Zero(t, res.Insertions)
	require.Zero(t, res.Deletions)
}

// Scenario S5 (spec.md): forward-strand anchor over an exact repeat,
// identity well above the 90% sanity floor with zero mismatches.
func TestScenarioS5ForwardIdentity(t *testing.T) {
	seq := []byte("ACGTACGTACGT")
	a := anchorFwd(0, 12, 0, 12)
	res, err := VerifyAnchor(a, seq, seq, DefaultParams())
	require.NoError(t, err)
	require.Greater(t, res.Identity, float32(90))
	require.Zero(t, res.Mismatches)
}

// Invariant 8: a reverse-strand anchor where the target substring is
// the reverse complement of the query substring verifies at 100%,
// since the verifier reverse-complements the target before aligning.
func TestReverseStrandPerfectIdentity(t *testing.T) {
	query := []byte("ACGTACGTTTAA")
	target := ReverseComplement(query)
	a := anchorFwd(0, int64(len(query)), 0, int64(len(target)))
	a.Strand = dotxpb.Reverse
	res, err := VerifyAnchor(a, query, target, DefaultParams())
	require.NoError(t, err)
	require.Equal(t, float32(100), res.Identity)
	require.Zero(t, res.Mismatches)
	require.Zero(t, res.Insertions)
	require.Zero(t, res.Deletions)
}

// Boundary: a bandwidth of 1 still aligns identical sequences at 100%.
func TestBandwidthOneStillAlignsIdenticalSequences(t *testing.T) {
	seq := []byte("ACGTACGT")
	a := anchorFwd(0, int64(len(seq)), 0, int64(len(seq)))
	params := DefaultParams()
	params.Bandwidth = 1
	params.Padding = 0
	res, err := VerifyAnchor(a, seq, seq, params)
	require.NoError(t, err)
	require.Equal(t, float32(100), res.Identity)
}

func TestVerifyDetectsMismatch(t *testing.T) {
	query := []byte("ACGTACGT")
	target := []byte("ACGTTCGT") // single substitution at index 4
	a := anchorFwd(0, 8, 0, 8)
	params := DefaultParams()
	params.Padding = 0
	res, err := VerifyAnchor(a, query, target, params)
	require.NoError(t, err)
	require.Equal(t, 1, res.Mismatches)
	require.Less(t, res.Identity, float32(100))
}

func TestVerifyInvalidSequenceOnEmptyWindow(t *testing.T) {
	a := anchorFwd(5, 5, 0, 10) // degenerate query span
	params := DefaultParams()
	params.Padding = 0
	_, err := VerifyAnchor(a, []byte("ACGTACGTAC"), []byte("ACGTACGTAC"), params)
	require.Error(t, err)
	require.Equal(t, dotxerr.InvalidSequence, dotxerr.Of(err))
}

func TestVerifyRejectsInvalidParams(t *testing.T) {
	a := anchorFwd(0, 4, 0, 4)
	params := DefaultParams()
	params.Bandwidth = 0
	_, err := VerifyAnchor(a, []byte("ACGT"), []byte("ACGT"), params)
	require.Error(t, err)
	require.Equal(t, dotxerr.InvalidParams, dotxerr.Of(err))
}

func TestReverseComplementPalindrome(t *testing.T) {
	require.Equal(t, []byte("ACGT"), ReverseComplement([]byte("ACGT")))
	require.Equal(t, []byte("TTAA"), ReverseComplement([]byte("TTAA")))
	require.Equal(t, []byte("N"), ReverseComplement([]byte("n")))
}
