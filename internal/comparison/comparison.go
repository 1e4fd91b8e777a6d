// Package comparison implements the comparison engine: given two reports
// and a diff, it classifies every file as added/removed/modified, locates
// unexpected line-coverage changes between base and head, and produces a
// patch summary.
package comparison

import (
	"sort"

	"github.com/patchcov/patchcov/internal/coverage"
	"github.com/patchcov/patchcov/internal/diffscope"
	"github.com/patchcov/patchcov/internal/model"
	"github.com/patchcov/patchcov/internal/totals"
)

// DiffEntry describes one file's entry in the DiffInput: its change kind,
// optional pre-diff name (for renames), and hunks.
type DiffEntry struct {
	ChangeKind string // "new", "deleted", anything else is "modified"
	RenameOld  *string
	Hunks      []diffscope.Hunk
}

// LineCoverage pairs a line number with its coverage, used for
// removed/added_diff_coverage.
type LineCoverage struct {
	Line     int32
	Coverage coverage.Coverage
}

// Position is one side of an unexpected line change: a line number and its
// coverage, or no coverage at all if the line is absent on that side.
type Position struct {
	Line     int32
	Coverage *coverage.Coverage
}

// Change is one unexpected-change entry: a (base, head) position pair.
type Change struct {
	Base Position
	Head Position
}

// FileChangesAnalysis is one file's comparison result, matching the
// serialized comparison-output schema.
type FileChangesAnalysis struct {
	BaseName              string
	HeadName              string
	FileWasAddedByDiff    bool
	FileWasRemovedByDiff  bool
	BaseCoverage          *totals.FileTotals
	HeadCoverage          *totals.FileTotals
	RemovedDiffCoverage   []LineCoverage
	AddedDiffCoverage     []LineCoverage
	UnexpectedLineChanges []Change
	LinesOnlyOnBase       []int32
	LinesOnlyOnHead       []int32
}

// PatchTotals is the comparison's aggregate patch summary.
type PatchTotals struct {
	Hits     int32
	Misses   int32
	Partials int32
	Coverage *float64
}

// ChangeAnalysis is the top-level comparison output.
type ChangeAnalysis struct {
	Files          []FileChangesAnalysis
	ChangesSummary struct {
		PatchTotals PatchTotals
	}
}

// RunComparisonAnalysis runs the full comparison engine end to end.
func RunComparisonAnalysis(base, head *model.Report, diff map[string]DiffEntry) ChangeAnalysis {
	renames := make(map[string]string) // old name -> new (head-side) name
	for newName, entry := range diff {
		if entry.RenameOld != nil {
			renames[*entry.RenameOld] = newName
		}
	}

	candidates := make(map[string]struct{})
	for f := range base.Files {
		target := f
		if renamed, ok := renames[f]; ok {
			target = renamed
		}
		candidates[target] = struct{}{}
	}
	for f := range head.Files {
		candidates[f] = struct{}{}
	}

	var files []FileChangesAnalysis
	for _, fname := range sortedKeys(candidates) {
		entry := diff[fname]
		original := fname
		if entry.RenameOld != nil {
			original = *entry.RenameOld
		}
		old, hasOld := base.GetByFilename(original)
		newFile, hasNew := head.GetByFilename(fname)
		if !hasOld && !hasNew {
			continue
		}

		fc, keep := buildFileChanges(original, fname, entry, old, hasOld, newFile, hasNew)
		if keep {
			files = append(files, fc)
		}
	}

	return ChangeAnalysis{
		Files: files,
		ChangesSummary: struct{ PatchTotals PatchTotals }{
			PatchTotals: patchSummary(files),
		},
	}
}

func buildFileChanges(baseName, headName string, entry DiffEntry, old *model.ReportFile, hasOld bool, newFile *model.ReportFile, hasNew bool) (FileChangesAnalysis, bool) {
	isNew := entry.ChangeKind == "new"
	wasDeleted := entry.ChangeKind == "deleted"
	scope := diffscope.NewScope(entry.Hunks)

	fc := FileChangesAnalysis{
		BaseName:             baseName,
		HeadName:             headName,
		FileWasAddedByDiff:   isNew,
		FileWasRemovedByDiff: wasDeleted,
		LinesOnlyOnBase:      scope.SortedOnlyOnBase(),
		LinesOnlyOnHead:      scope.SortedOnlyOnHead(),
	}

	if hasOld {
		t := old.GetTotals()
		fc.BaseCoverage = &t
		fc.RemovedDiffCoverage = diffCoverageList(old, scope.SortedOnlyOnBase())
	}
	if hasNew {
		t := newFile.GetTotals()
		fc.HeadCoverage = &t
		fc.AddedDiffCoverage = diffCoverageList(newFile, scope.SortedOnlyOnHead())
	}

	if !isNew && !wasDeleted {
		fc.UnexpectedLineChanges = unexpectedChanges(old, hasOld, newFile, hasNew, scope)
	}

	if hasOld && hasNew && len(fc.UnexpectedLineChanges) == 0 &&
		len(fc.RemovedDiffCoverage) == 0 && len(fc.AddedDiffCoverage) == 0 &&
		len(fc.LinesOnlyOnBase) == 0 && len(fc.LinesOnlyOnHead) == 0 {
		return FileChangesAnalysis{}, false
	}
	return fc, true
}

// diffCoverageList implements removed_diff_coverage / added_diff_coverage:
// the (line, coverage) pairs for every line in `onlyLines` that the file
// actually has, in ascending line order.
func diffCoverageList(f *model.ReportFile, onlyLines []int32) []LineCoverage {
	out := make([]LineCoverage, 0, len(onlyLines))
	for _, ln := range onlyLines {
		line, ok := f.Lines[ln]
		if !ok {
			continue
		}
		out = append(out, LineCoverage{Line: ln, Coverage: line.Coverage})
	}
	return out
}

// unexpectedChanges walks base and head with a two-pointer cursor. Both
// cursors are incremented before the only_on_* skip each iteration, so the
// first compared position is cb=ch=1 — this is deliberate, not an
// off-by-one bug.
func unexpectedChanges(old *model.ReportFile, hasOld bool, newFile *model.ReportFile, hasNew bool, scope diffscope.Scope) []Change {
	var eofB, eofH int32
	if hasOld {
		eofB = old.EOF()
	}
	if hasNew {
		eofH = newFile.EOF()
	}

	var changes []Change
	cb, ch := int32(0), int32(0)
	for cb < eofB || ch < eofH {
		cb++
		ch++
		for {
			if _, skip := scope.OnlyOnBase[cb]; !skip {
				break
			}
			cb++
		}
		for {
			if _, skip := scope.OnlyOnHead[ch]; !skip {
				break
			}
			ch++
		}

		var baseLine, headLine *model.ReportLine
		if hasOld {
			baseLine = old.Lines[cb]
		}
		if hasNew {
			headLine = newFile.Lines[ch]
		}

		switch {
		case baseLine == nil && headLine == nil:
			// nothing
		case baseLine != nil && headLine != nil:
			if !baseLine.Coverage.Equal(headLine.Coverage) {
				bc, hc := baseLine.Coverage, headLine.Coverage
				changes = append(changes, Change{
					Base: Position{Line: cb, Coverage: &bc},
					Head: Position{Line: ch, Coverage: &hc},
				})
			}
		default:
			var basePos, headPos Position
			basePos.Line = cb
			headPos.Line = ch
			if baseLine != nil {
				bc := baseLine.Coverage
				basePos.Coverage = &bc
			}
			if headLine != nil {
				hc := headLine.Coverage
				headPos.Coverage = &hc
			}
			changes = append(changes, Change{Base: basePos, Head: headPos})
		}
	}
	return changes
}

// patchSummary: sum Hits/Misses/Partials across all
// emitted files' added_diff_coverage; Ignore contributes nothing.
func patchSummary(files []FileChangesAnalysis) PatchTotals {
	var pt PatchTotals
	for _, f := range files {
		for _, lc := range f.AddedDiffCoverage {
			switch lc.Coverage.Kind {
			case coverage.Hit:
				pt.Hits++
			case coverage.Miss:
				pt.Misses++
			case coverage.Partial:
				pt.Partials++
			}
		}
	}
	total := pt.Hits + pt.Misses + pt.Partials
	if total > 0 {
		cov := float64(pt.Hits) / float64(total)
		pt.Coverage = &cov
	}
	return pt
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
