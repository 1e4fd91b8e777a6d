// Package query implements the SimpleAnalyzer and FilterAnalyzer façades:
// the unfiltered and filename/flag-filtered ways to pull totals and
// diff-restricted analyses out of a Report.
package query

import (
	"sort"

	"github.com/patchcov/patchcov/internal/coverage"
	"github.com/patchcov/patchcov/internal/diffscope"
	"github.com/patchcov/patchcov/internal/model"
	"github.com/patchcov/patchcov/internal/totals"
)

// SimpleAnalyzer computes totals with no filtering at all.
type SimpleAnalyzer struct{}

// GetTotals sums GetTotals() across every file and sets sessions to the
// full session mapping's size.
func (SimpleAnalyzer) GetTotals(r *model.Report) totals.ReportTotals {
	return r.GetSimpleTotals()
}

// FilterAnalyzer restricts totals and diff analyses to a filename set
// and/or a flag set. A nil Files means "every file"; a nil Flags means
// "every session".
type FilterAnalyzer struct {
	Files map[string]struct{}
	Flags []string
}

// resolveSessions: with flags present, resolve to
// the sessions whose flag set intersects Flags; with no flags, every
// session in the report participates.
func (a FilterAnalyzer) resolveSessions(r *model.Report) (ids map[int32]struct{}, sessionCount int32, filtered bool) {
	if a.Flags == nil {
		return nil, int32(len(r.SessionMapping)), false
	}
	sids := r.GetSessionsFromFlags(a.Flags)
	ids = make(map[int32]struct{}, len(sids))
	for _, sid := range sids {
		ids[sid] = struct{}{}
	}
	return ids, int32(len(sids)), true
}

func (a FilterAnalyzer) matchesFileFilter(name string) bool {
	if a.Files == nil {
		return true
	}
	_, ok := a.Files[name]
	return ok
}

// GetTotals computes totals restricted to the filter's files and sessions.
func (a FilterAnalyzer) GetTotals(r *model.Report) totals.ReportTotals {
	sessionIDs, sessionCount, filtered := a.resolveSessions(r)

	var rt totals.ReportTotals
	for _, name := range sortedFilenames(r) {
		if !a.matchesFileFilter(name) {
			continue
		}
		f := r.Files[name]
		var ft totals.FileTotals
		if filtered {
			ft = f.GetFilteredTotals(sessionIDs)
		} else {
			ft = f.GetTotals()
		}
		rt.AddUp(ft)
	}
	rt.Sessions = sessionCount
	return rt
}

// FileDiffAnalysis is the per-file diff-restricted analysis produced by
// CalculateDiff.
type FileDiffAnalysis struct {
	Filename          string
	Summary           totals.FileTotals
	LinesWithHits     []int32
	LinesWithMisses   []int32
	LinesWithPartials []int32
}

// DiffEntry is one file's diff description: its unified-diff hunks, keyed
// by filename in CalculateDiff's diff argument.
type DiffEntry struct {
	Hunks []diffscope.Hunk
}

// CalculateDiff: for every filename
// present in diff and matching the file filter, if the report has that
// file, compute its diff-restricted analysis.
func (a FilterAnalyzer) CalculateDiff(r *model.Report, diff map[string]DiffEntry) []FileDiffAnalysis {
	sessionIDs, _, filtered := a.resolveSessions(r)

	var out []FileDiffAnalysis
	for _, name := range sortedDiffFilenames(diff) {
		if !a.matchesFileFilter(name) {
			continue
		}
		file, ok := r.GetByFilename(name)
		if !ok {
			continue
		}
		scope := diffscope.NewScope(diff[name].Hunks)
		out = append(out, perFileDiffAnalysis(name, file, scope, sessionIDs, filtered))
	}
	return out
}

// perFileDiffAnalysis restricts a file's lines to the diff's only_on_head set.
func perFileDiffAnalysis(name string, file *model.ReportFile, scope diffscope.Scope, sessionIDs map[int32]struct{}, filtered bool) FileDiffAnalysis {
	var collected []totals.LineLike
	var hits, misses, partials []int32

	for _, ln := range scope.SortedOnlyOnHead() {
		line, ok := file.Lines[ln]
		if !ok {
			continue
		}
		if filtered {
			fl, kept := line.FilterBySessionIDs(sessionIDs)
			if !kept {
				continue
			}
			line = fl
		}
		collected = append(collected, line)
		hits, misses, partials = classify(line, ln, hits, misses, partials)
	}

	return FileDiffAnalysis{
		Filename:          name,
		Summary:           totals.FromLines(collected),
		LinesWithHits:     hits,
		LinesWithMisses:   misses,
		LinesWithPartials: partials,
	}
}

func classify(line totals.LineLike, ln int32, hits, misses, partials []int32) (h, m, p []int32) {
	switch line.Cov().Kind {
	case coverage.Hit:
		hits = append(hits, ln)
	case coverage.Miss:
		misses = append(misses, ln)
	case coverage.Partial:
		partials = append(partials, ln)
	}
	return hits, misses, partials
}

func sortedFilenames(r *model.Report) []string {
	out := make([]string, 0, len(r.Files))
	for name := range r.Files {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func sortedDiffFilenames(diff map[string]DiffEntry) []string {
	out := make([]string, 0, len(diff))
	for name := range diff {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
