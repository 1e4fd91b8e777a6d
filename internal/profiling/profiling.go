// Package profiling implements the profiling overlay: joining comparison
// output against recorded execution groups (e.g. endpoints) to find which
// groups are affected by a change.
package profiling

import (
	"sort"

	"github.com/patchcov/patchcov/internal/comparison"
	"github.com/patchcov/patchcov/internal/model"
)

// FileLineCounts is one file's recorded per-line execution counts within a
// profiling group.
type FileLineCounts struct {
	Filename string
	Counts   map[int32]int32 // line -> count
}

// SingleGroupProfilingData is one recorded execution group (e.g. an
// endpoint): its name, a recorded count, and the files/lines it touched.
type SingleGroupProfilingData struct {
	GroupName string
	Count     int32
	Files     []FileLineCounts
}

// ProfilingData is the full set of recorded execution groups.
type ProfilingData struct {
	Groups []SingleGroupProfilingData
}

// ImpactedFile names a file within an impacted group and the base-side
// lines that group recorded and that removed_diff_coverage also flags.
type ImpactedFile struct {
	Filename          string
	ImpactedBaseLines []int32
}

// ImpactedGroup is a group with at least one impacted file.
type ImpactedGroup struct {
	GroupName string
	Files     []ImpactedFile
}

// FindImpactedEndpoints: run the comparison
// engine, then for each group and each changed file, intersect the group's
// recorded lines with that file's removed_diff_coverage lines. Groups with
// no impacted file are dropped.
func FindImpactedEndpoints(base, head *model.Report, diff map[string]comparison.DiffEntry, data ProfilingData) []ImpactedGroup {
	analysis := comparison.RunComparisonAnalysis(base, head, diff)

	removedLines := make(map[string]map[int32]struct{}, len(analysis.Files))
	for _, f := range analysis.Files {
		lines := make(map[int32]struct{}, len(f.RemovedDiffCoverage))
		for _, lc := range f.RemovedDiffCoverage {
			lines[lc.Line] = struct{}{}
		}
		removedLines[f.BaseName] = lines
	}

	var out []ImpactedGroup
	for _, group := range data.Groups {
		var impactedFiles []ImpactedFile
		for _, gf := range group.Files {
			removed, ok := removedLines[gf.Filename]
			if !ok {
				continue
			}
			var hit []int32
			for ln := range gf.Counts {
				if _, ok := removed[ln]; ok {
					hit = append(hit, ln)
				}
			}
			if len(hit) == 0 {
				continue
			}
			sort.Slice(hit, func(i, j int) bool { return hit[i] < hit[j] })
			impactedFiles = append(impactedFiles, ImpactedFile{Filename: gf.Filename, ImpactedBaseLines: hit})
		}
		if len(impactedFiles) == 0 {
			continue
		}
		out = append(out, ImpactedGroup{GroupName: group.GroupName, Files: impactedFiles})
	}
	return out
}
