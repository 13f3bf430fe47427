package genomicrange

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Scenario S3 (spec.md).
func TestScenarioS3GenomicRangeParse(t *testing.T) {
	r1, err := Parse("chr1:12.3M-18.6M")
	require.NoError(t, err)
	require.Equal(t, Range{Contig: "chr1", Start: 12_300_000, End: 18_600_000}, r1)

	r2, err := Parse("chr2:500K-1.5M")
	require.NoError(t, err)
	require.Equal(t, Range{Contig: "chr2", Start: 500_000, End: 1_500_000}, r2)

	_, err = Parse("chr1:100M-50M")
	require.Error(t, err)
}

func TestParsePlainIntegerPositions(t *testing.T) {
	r, err := Parse("chrX:100-200")
	require.NoError(t, err)
	require.Equal(t, Range{Contig: "chrX", Start: 100, End: 200}, r)
}

func TestParseGigabaseSuffix(t *testing.T) {
	r, err := Parse("chr1:1G-2G")
	require.NoError(t, err)
	require.Equal(t, int64(1_000_000_000), r.Start)
	require.Equal(t, int64(2_000_000_000), r.End)
}

func TestParseRejectsMissingSeparators(t *testing.T) {
	_, err := Parse("chr1-100-200")
	require.Error(t, err)
	_, err = Parse("chr1:100200")
	require.Error(t, err)
}

func TestParseRejectsEqualStartEnd(t *testing.T) {
	_, err := Parse("chr1:100-100")
	require.Error(t, err)
}

func TestParseListCommaSeparated(t *testing.T) {
	ranges, err := ParseList("chr1:12.3M-18.6M, chr2:500K-1.5M")
	require.NoError(t, err)
	require.Equal(t, []Range{
		{Contig: "chr1", Start: 12_300_000, End: 18_600_000},
		{Contig: "chr2", Start: 500_000, End: 1_500_000},
	}, ranges)
}

func TestParseListRejectsAnyInvalidMember(t *testing.T) {
	_, err := ParseList("chr1:1-2,chr1:100M-50M")
	require.Error(t, err)
}
