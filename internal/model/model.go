// Package model implements the immutable report data model: ReportLine,
// ReportFile, and Report. Everything here is built once (by internal/chunks,
// internal/govprofile or internal/merge) and thereafter read-only; queries
// borrow from it and return fresh values.
package model

import (
	"sort"

	"github.com/patchcov/patchcov/internal/coverage"
	"github.com/patchcov/patchcov/internal/totals"
)

// LineSession is one session's contribution to a line: its coverage and,
// optionally, its complexity. SessionID indexes into Report.SessionMapping.
type LineSession struct {
	SessionID  int32
	Coverage   coverage.Coverage
	Complexity coverage.Complexity
	HasComplex bool
}

// ReportLine is a single source line's coverage record: the joined coverage
// across all contributing sessions, the coverage type, the ordered sessions
// themselves, and an optional joined complexity.
type ReportLine struct {
	Coverage     coverage.Coverage
	CoverageType coverage.Type
	Sessions     []LineSession
	Complexity   coverage.Complexity
	HasComplex   bool
}

// Cov, CovType, and Complex satisfy totals.LineLike.
func (l *ReportLine) Cov() coverage.Coverage               { return l.Coverage }
func (l *ReportLine) CovType() coverage.Type               { return l.CoverageType }
func (l *ReportLine) Complex() (coverage.Complexity, bool) { return l.Complexity, l.HasComplex }

// FilterBySessionIDs projects a line onto the given session-id set per
// keep only matching sessions, rejoin coverage and complexity,
// and drop the line entirely if no sessions remain or the rejoined coverage
// is Ignore.
func (l *ReportLine) FilterBySessionIDs(ids map[int32]struct{}) (*ReportLine, bool) {
	kept := make([]LineSession, 0, len(l.Sessions))
	for _, s := range l.Sessions {
		if _, ok := ids[s.SessionID]; ok {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return nil, false
	}

	covs := make([]coverage.Coverage, len(kept))
	for i, s := range kept {
		covs[i] = s.Coverage
	}
	joined := coverage.Join(covs)
	if joined.Kind == coverage.Ignore {
		return nil, false
	}

	complexes := make([]coverage.Complexity, 0, len(kept))
	for _, s := range kept {
		if s.HasComplex {
			complexes = append(complexes, s.Complexity)
		}
	}
	cx, hasCx := coverage.JoinComplexity(complexes)

	return &ReportLine{
		Coverage:     joined,
		CoverageType: l.CoverageType,
		Sessions:     kept,
		Complexity:   cx,
		HasComplex:   hasCx,
	}, true
}

// ReportFile is the ordered mapping of 1-based line number to ReportLine for
// one source file. Contiguity is not required.
type ReportFile struct {
	Lines map[int32]*ReportLine
}

// NewReportFile returns an empty file ready to be populated by the parser.
func NewReportFile() *ReportFile {
	return &ReportFile{Lines: make(map[int32]*ReportLine)}
}

// EOF returns max(keys)+1, or 0 if the file has no lines.
func (f *ReportFile) EOF() int32 {
	var max int32
	for ln := range f.Lines {
		if ln > max {
			max = ln
		}
	}
	if max == 0 {
		return 0
	}
	return max + 1
}

// sortedLineNumbers returns the file's line numbers in ascending order.
func (f *ReportFile) sortedLineNumbers() []int32 {
	out := make([]int32, 0, len(f.Lines))
	for ln := range f.Lines {
		out = append(out, ln)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// GetTotals is FromLines over every line in the file.
func (f *ReportFile) GetTotals() totals.FileTotals {
	lines := make([]totals.LineLike, 0, len(f.Lines))
	for _, ln := range f.sortedLineNumbers() {
		lines = append(lines, f.Lines[ln])
	}
	return totals.FromLines(lines)
}

// GetFilteredTotals projects every line through the session-id set, dropping
// empty projections, then sums FileTotals over what remains.
func (f *ReportFile) GetFilteredTotals(sessionIDs map[int32]struct{}) totals.FileTotals {
	lines := make([]totals.LineLike, 0, len(f.Lines))
	for _, ln := range f.sortedLineNumbers() {
		if filtered, ok := f.Lines[ln].FilterBySessionIDs(sessionIDs); ok {
			lines = append(lines, filtered)
		}
	}
	return totals.FromLines(lines)
}

// CalculatePerFlagTotals: for each line, for each of
// its sessions, for each flag that session carries, increment that flag's
// hit/miss/partial counters by one. Branch/Method coverage_type is
// deliberately NOT reflected here (carried forward verbatim, see DESIGN.md
// Open Question 2).
func (f *ReportFile) CalculatePerFlagTotals(sessionFlags map[int32][]string) map[string]totals.FileTotals {
	out := make(map[string]totals.FileTotals)
	for _, ln := range f.sortedLineNumbers() {
		line := f.Lines[ln]
		for _, sess := range line.Sessions {
			for _, flag := range sessionFlags[sess.SessionID] {
				ft := out[flag]
				switch sess.Coverage.Kind {
				case coverage.Hit:
					ft.Hits++
				case coverage.Miss:
					ft.Misses++
				case coverage.Partial:
					ft.Partials++
				}
				out[flag] = ft
			}
		}
	}
	return out
}

// Report is the top-level model: every parsed file keyed by exact filename,
// plus the session-id -> ordered flag names mapping.
type Report struct {
	Files          map[string]*ReportFile
	SessionMapping map[int32][]string
}

// NewReport returns an empty report.
func NewReport() *Report {
	return &Report{
		Files:          make(map[string]*ReportFile),
		SessionMapping: make(map[int32][]string),
	}
}

// GetByFilename is an exact-match lookup; a miss is not an error.
func (r *Report) GetByFilename(name string) (*ReportFile, bool) {
	f, ok := r.Files[name]
	return f, ok
}

// GetSessionsFromFlags returns the sorted session ids whose flag set
// intersects the given flags.
func (r *Report) GetSessionsFromFlags(flags []string) []int32 {
	want := make(map[string]struct{}, len(flags))
	for _, fl := range flags {
		want[fl] = struct{}{}
	}
	var out []int32
	for sid, flagList := range r.SessionMapping {
		for _, fl := range flagList {
			if _, ok := want[fl]; ok {
				out = append(out, sid)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// GetSimpleTotals sums GetTotals() across every file and sets sessions to
// the size of the session mapping.
func (r *Report) GetSimpleTotals() totals.ReportTotals {
	var rt totals.ReportTotals
	for _, name := range r.sortedFilenames() {
		rt.AddUp(r.Files[name].GetTotals())
	}
	rt.Sessions = int32(len(r.SessionMapping))
	return rt
}

func (r *Report) sortedFilenames() []string {
	out := make([]string, 0, len(r.Files))
	for name := range r.Files {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
