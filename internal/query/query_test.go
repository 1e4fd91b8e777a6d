package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patchcov/patchcov/internal/coverage"
	"github.com/patchcov/patchcov/internal/diffscope"
	"github.com/patchcov/patchcov/internal/model"
)

// s3Report reproduces a worked scenario: a two-line file1.go, line 1 hit
// only by session 0, line 2 hit by session 0 and partial (1/2) by session 1.
func s3Report(t *testing.T) *model.Report {
	t.Helper()
	half, err := coverage.NewPartial(1, 2)
	require.NoError(t, err)

	r := model.NewReport()
	r.SessionMapping[0] = []string{"unit"}
	r.SessionMapping[1] = []string{"integration"}

	f := model.NewReportFile()
	f.Lines[1] = &model.ReportLine{
		Coverage: coverage.C(coverage.Hit),
		Sessions: []model.LineSession{{SessionID: 0, Coverage: coverage.C(coverage.Hit)}},
	}
	f.Lines[2] = &model.ReportLine{
		Coverage: coverage.C(coverage.Hit),
		Sessions: []model.LineSession{
			{SessionID: 0, Coverage: coverage.C(coverage.Hit)},
			{SessionID: 1, Coverage: half},
		},
	}
	r.Files["file1.go"] = f
	return r
}

func TestFilterAnalyzer_S3_UnitFlag(t *testing.T) {
	r := s3Report(t)
	a := FilterAnalyzer{Files: map[string]struct{}{"file1.go": {}}, Flags: []string{"unit"}}
	got := a.GetTotals(r)
	assert.Equal(t, int32(2), got.Hits)
	assert.Equal(t, int32(0), got.Partials)
	assert.Equal(t, int32(1), got.Sessions)
}

func TestFilterAnalyzer_S3_IntegrationFlag(t *testing.T) {
	r := s3Report(t)
	a := FilterAnalyzer{Files: map[string]struct{}{"file1.go": {}}, Flags: []string{"integration"}}
	got := a.GetTotals(r)
	assert.Equal(t, int32(1), got.Lines())
	assert.Equal(t, int32(1), got.Partials)
}

func TestFilterAnalyzer_S3_UnmatchedFlags(t *testing.T) {
	r := s3Report(t)
	a := FilterAnalyzer{Files: map[string]struct{}{"file1.go": {}}, Flags: []string{"banana", "apple"}}
	got := a.GetTotals(r)
	assert.Equal(t, int32(0), got.Lines())
	assert.Equal(t, int32(0), got.Sessions)
}

func TestFilterAnalyzer_NoFilters_MatchesSimpleAnalyzer(t *testing.T) {
	r := s3Report(t)
	simple := SimpleAnalyzer{}.GetTotals(r)
	filtered := FilterAnalyzer{}.GetTotals(r)
	assert.Equal(t, simple.Hits, filtered.Hits)
	assert.Equal(t, simple.Lines(), filtered.Lines())
	assert.Equal(t, simple.Sessions, filtered.Sessions)
}

func TestFilterAnalyzer_CalculateDiff(t *testing.T) {
	r := model.NewReport()
	f := model.NewReportFile()
	f.Lines[1] = &model.ReportLine{Coverage: coverage.C(coverage.Hit)}
	f.Lines[2] = &model.ReportLine{Coverage: coverage.C(coverage.Miss)}
	r.Files["a.go"] = f

	diff := map[string]DiffEntry{
		"a.go": {Hunks: []diffscope.Hunk{{BaseStart: 1, HeadStart: 1, Markers: []byte{' ', '+'}}}},
	}

	analyses := FilterAnalyzer{}.CalculateDiff(r, diff)
	require.Len(t, analyses, 1)
	assert.Equal(t, "a.go", analyses[0].Filename)
	assert.Equal(t, []int32{2}, analyses[0].LinesWithMisses)
	assert.Empty(t, analyses[0].LinesWithHits)
}

func TestFilterAnalyzer_CalculateDiff_MissingFileSkipped(t *testing.T) {
	r := model.NewReport()
	diff := map[string]DiffEntry{"missing.go": {}}
	analyses := FilterAnalyzer{}.CalculateDiff(r, diff)
	assert.Empty(t, analyses)
}
