package comparison

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patchcov/patchcov/internal/coverage"
	"github.com/patchcov/patchcov/internal/diffscope"
	"github.com/patchcov/patchcov/internal/model"
)

func strPtr(s string) *string { return &s }

func hit() *model.ReportLine  { return &model.ReportLine{Coverage: coverage.C(coverage.Hit)} }
func miss() *model.ReportLine { return &model.ReportLine{Coverage: coverage.C(coverage.Miss)} }

// TestRunComparisonAnalysis_S4 reproduces a worked rename scenario: a rename from
// "apple" (base) to "file1.go" (head) plus a brand-new "file_p.py".
func TestRunComparisonAnalysis_S4(t *testing.T) {
	base := model.NewReport()
	appleFile := model.NewReportFile()
	appleFile.Lines[1] = hit()
	appleFile.Lines[2] = hit()
	base.Files["apple"] = appleFile

	head := model.NewReport()
	file1 := model.NewReportFile()
	file1.Lines[1] = hit()
	file1.Lines[2] = miss()
	head.Files["file1.go"] = file1
	head.Files["file_p.py"] = model.NewReportFile()

	diff := map[string]DiffEntry{
		"file1.go": {
			ChangeKind: "changed",
			RenameOld:  strPtr("apple"),
			Hunks:      []diffscope.Hunk{{BaseStart: 1, HeadStart: 1, Markers: []byte{'+'}}},
		},
		"file_p.py": {
			ChangeKind: "new",
			Hunks:      []diffscope.Hunk{{BaseStart: 1, HeadStart: 1, Markers: []byte{'+'}}},
		},
	}

	analysis := RunComparisonAnalysis(base, head, diff)
	require.Len(t, analysis.Files, 2)

	var renamed *FileChangesAnalysis
	for i := range analysis.Files {
		if analysis.Files[i].HeadName == "file1.go" {
			renamed = &analysis.Files[i]
		}
	}
	require.NotNil(t, renamed)
	assert.Equal(t, "apple", renamed.BaseName)
	require.Len(t, renamed.AddedDiffCoverage, 1)
	assert.Equal(t, int32(1), renamed.AddedDiffCoverage[0].Line)
	assert.True(t, renamed.AddedDiffCoverage[0].Coverage.Equal(coverage.C(coverage.Hit)))
	assert.Empty(t, renamed.RemovedDiffCoverage)
	assert.Len(t, renamed.UnexpectedLineChanges, 2)
}

// TestUnexpectedChanges_S5 reproduces a worked scenario: base has
// {1075:Miss, 1079:Hit}, head has {1076:Miss}, a hunk producing
// only_on_base={991,992}, only_on_head={998,999,1000}. Expect a single
// unexpected change ((1079, Hit), (1080, None)).
func TestUnexpectedChanges_S5(t *testing.T) {
	old := model.NewReportFile()
	old.Lines[1075] = miss()
	old.Lines[1079] = hit()

	newFile := model.NewReportFile()
	newFile.Lines[1076] = miss()

	markers := []byte{' ', ' ', ' ', '-', '-', ' ', ' ', ' ', ' ', ' ', ' ', ' ', '+', '+', '+'}
	scope := diffscope.NewScope([]diffscope.Hunk{{BaseStart: 988, HeadStart: 988, Markers: markers}})
	require.Equal(t, []int32{991, 992}, scope.SortedOnlyOnBase())
	require.Equal(t, []int32{998, 999, 1000}, scope.SortedOnlyOnHead())

	changes := unexpectedChanges(old, true, newFile, true, scope)
	require.Len(t, changes, 1)
	assert.Equal(t, int32(1079), changes[0].Base.Line)
	require.NotNil(t, changes[0].Base.Coverage)
	assert.True(t, changes[0].Base.Coverage.Equal(coverage.C(coverage.Hit)))
	assert.Equal(t, int32(1080), changes[0].Head.Line)
	assert.Nil(t, changes[0].Head.Coverage)
}

func TestRunComparisonAnalysis_IdenticalFilesDropped(t *testing.T) {
	base := model.NewReport()
	f := model.NewReportFile()
	f.Lines[1] = hit()
	base.Files["a.go"] = f

	head := model.NewReport()
	f2 := model.NewReportFile()
	f2.Lines[1] = hit()
	head.Files["a.go"] = f2

	analysis := RunComparisonAnalysis(base, head, nil)
	assert.Empty(t, analysis.Files)
}

// TestRunComparisonAnalysis_Deterministic guards against iteration-order
// flakiness (map ranges over candidates/renames): two runs over the same
// inputs must produce byte-for-byte identical output.
func TestRunComparisonAnalysis_Deterministic(t *testing.T) {
	base := model.NewReport()
	f := model.NewReportFile()
	f.Lines[1] = hit()
	f.Lines[2] = miss()
	base.Files["a.go"] = f
	base.Files["b.go"] = f

	head := model.NewReport()
	g := model.NewReportFile()
	g.Lines[1] = hit()
	g.Lines[2] = hit()
	head.Files["a.go"] = g
	head.Files["b.go"] = g

	first := RunComparisonAnalysis(base, head, nil)
	second := RunComparisonAnalysis(base, head, nil)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("RunComparisonAnalysis is not deterministic across repeated runs (-first +second):\n%s", diff)
	}
}

func TestPatchSummary_NilWhenEmpty(t *testing.T) {
	pt := patchSummary(nil)
	assert.Nil(t, pt.Coverage)
	assert.Equal(t, int32(0), pt.Hits)
}

func TestPatchSummary_ComputesRatio(t *testing.T) {
	files := []FileChangesAnalysis{{
		AddedDiffCoverage: []LineCoverage{
			{Line: 1, Coverage: coverage.C(coverage.Hit)},
			{Line: 2, Coverage: coverage.C(coverage.Miss)},
			{Line: 3, Coverage: coverage.C(coverage.Ignore)},
		},
	}}
	pt := patchSummary(files)
	require.NotNil(t, pt.Coverage)
	assert.InDelta(t, 0.5, *pt.Coverage, 1e-9)
}
