package httpapi

import (
	"github.com/patchcov/patchcov/internal/comparison"
	"github.com/patchcov/patchcov/internal/totals"
)

// These types mirror the engine's internal result types as JSON wire
// shapes: line/coverage pairs serialize as two-element arrays rather than
// objects, matching how the chunks format itself represents them.

type fileTotalsJSONT struct {
	Files      int32   `json:"files,omitempty"`
	Lines      int32   `json:"lines"`
	Hits       int32   `json:"hits"`
	Misses     int32   `json:"misses"`
	Partials   int32   `json:"partials"`
	Branches   int32   `json:"branches"`
	Methods    int32   `json:"methods"`
	Sessions   int32   `json:"sessions,omitempty"`
	Complexity int32   `json:"complexity,omitempty"`
	Coverage   *string `json:"coverage"`
}

func fileTotalsJSON(f totals.FileTotals) fileTotalsJSONT {
	return fileTotalsJSONT{
		Lines:      f.Lines(),
		Hits:       f.Hits,
		Misses:     f.Misses,
		Partials:   f.Partials,
		Branches:   f.Branches,
		Methods:    f.Methods,
		Complexity: f.Complexity,
		Coverage:   f.Coverage(),
	}
}

func reportTotalsJSON(r totals.ReportTotals) fileTotalsJSONT {
	out := fileTotalsJSON(r.FileTotals)
	out.Files = r.Files
	out.Sessions = r.Sessions
	return out
}

type lineCoveragePairJSON [2]interface{}

func lineCoverageJSON(lc comparison.LineCoverage) lineCoveragePairJSON {
	return lineCoveragePairJSON{lc.Line, string(lc.Coverage.Char())}
}

func lineCoverageListJSON(lcs []comparison.LineCoverage) []lineCoveragePairJSON {
	out := make([]lineCoveragePairJSON, len(lcs))
	for i, lc := range lcs {
		out[i] = lineCoverageJSON(lc)
	}
	return out
}

type positionJSON [2]interface{}

func positionJSONOf(p comparison.Position) positionJSON {
	out := positionJSON{p.Line, nil}
	if p.Coverage != nil {
		out[1] = string(p.Coverage.Char())
	}
	return out
}

type changeJSON [2]positionJSON

func changeJSONOf(c comparison.Change) changeJSON {
	return changeJSON{positionJSONOf(c.Base), positionJSONOf(c.Head)}
}

type fileChangesJSON struct {
	BaseName              string               `json:"base_name"`
	HeadName              string               `json:"head_name"`
	FileWasAddedByDiff    bool                 `json:"file_was_added_by_diff"`
	FileWasRemovedByDiff  bool                 `json:"file_was_removed_by_diff"`
	BaseCoverage          *fileTotalsJSONT     `json:"base_coverage"`
	HeadCoverage          *fileTotalsJSONT     `json:"head_coverage"`
	RemovedDiffCoverage   []lineCoveragePairJSON `json:"removed_diff_coverage"`
	AddedDiffCoverage     []lineCoveragePairJSON `json:"added_diff_coverage"`
	UnexpectedLineChanges []changeJSON         `json:"unexpected_line_changes"`
	LinesOnlyOnBase       []int32              `json:"lines_only_on_base"`
	LinesOnlyOnHead       []int32              `json:"lines_only_on_head"`
}

func fileChangesJSONOf(fc comparison.FileChangesAnalysis) fileChangesJSON {
	out := fileChangesJSON{
		BaseName:              fc.BaseName,
		HeadName:              fc.HeadName,
		FileWasAddedByDiff:    fc.FileWasAddedByDiff,
		FileWasRemovedByDiff:  fc.FileWasRemovedByDiff,
		RemovedDiffCoverage:   lineCoverageListJSON(fc.RemovedDiffCoverage),
		AddedDiffCoverage:     lineCoverageListJSON(fc.AddedDiffCoverage),
		LinesOnlyOnBase:       fc.LinesOnlyOnBase,
		LinesOnlyOnHead:       fc.LinesOnlyOnHead,
	}
	if fc.BaseCoverage != nil {
		t := fileTotalsJSON(*fc.BaseCoverage)
		out.BaseCoverage = &t
	}
	if fc.HeadCoverage != nil {
		t := fileTotalsJSON(*fc.HeadCoverage)
		out.HeadCoverage = &t
	}
	out.UnexpectedLineChanges = make([]changeJSON, len(fc.UnexpectedLineChanges))
	for i, c := range fc.UnexpectedLineChanges {
		out.UnexpectedLineChanges[i] = changeJSONOf(c)
	}
	return out
}

type patchTotalsJSON struct {
	Hits     int32    `json:"hits"`
	Misses   int32    `json:"misses"`
	Partials int32    `json:"partials"`
	Coverage *float64 `json:"coverage"`
}

type changeAnalysisJSONT struct {
	Files          []fileChangesJSON `json:"files"`
	ChangesSummary struct {
		PatchTotals patchTotalsJSON `json:"patch_totals"`
	} `json:"changes_summary"`
}

func changeAnalysisJSON(a comparison.ChangeAnalysis) changeAnalysisJSONT {
	var out changeAnalysisJSONT
	out.Files = make([]fileChangesJSON, len(a.Files))
	for i, fc := range a.Files {
		out.Files[i] = fileChangesJSONOf(fc)
	}
	out.ChangesSummary.PatchTotals = patchTotalsJSON{
		Hits:     a.ChangesSummary.PatchTotals.Hits,
		Misses:   a.ChangesSummary.PatchTotals.Misses,
		Partials: a.ChangesSummary.PatchTotals.Partials,
		Coverage: a.ChangesSummary.PatchTotals.Coverage,
	}
	return out
}
