// Package merge combines multiple Reports — typically from separate test
// runs or separate GOCOVERDIR captures — into one, taking the
// highest-evidence coverage per line across all inputs.
package merge

import (
	"fmt"

	"github.com/patchcov/patchcov/internal/coverage"
	"github.com/patchcov/patchcov/internal/model"
)

// Merge combines reports into one: for each file/line present in any input,
// the merged coverage is the Join of every input's coverage for that line
// (Hit dominates, matching how a single multi-session report already
// resolves conflicting evidence for one line). Session mappings are unioned;
// on a session id collision, the later report's flags win.
func Merge(reports []*model.Report) (*model.Report, error) {
	if len(reports) == 0 {
		return nil, fmt.Errorf("merge: requires at least 1 report, got 0")
	}

	out := model.NewReport()
	for _, r := range reports {
		for name, file := range r.Files {
			mf, ok := out.Files[name]
			if !ok {
				mf = model.NewReportFile()
				out.Files[name] = mf
			}
			for ln, line := range file.Lines {
				existing, ok := mf.Lines[ln]
				if !ok {
					mf.Lines[ln] = &model.ReportLine{
						Coverage:     line.Coverage,
						CoverageType: line.CoverageType,
						Sessions:     append([]model.LineSession(nil), line.Sessions...),
						Complexity:   line.Complexity,
						HasComplex:   line.HasComplex,
					}
					continue
				}
				existing.Coverage = coverage.Join([]coverage.Coverage{existing.Coverage, line.Coverage})
				existing.Sessions = append(existing.Sessions, line.Sessions...)
				if line.CoverageType != coverage.Standard {
					existing.CoverageType = line.CoverageType
				}
				complexities := make([]coverage.Complexity, 0, 2)
				if existing.HasComplex {
					complexities = append(complexities, existing.Complexity)
				}
				if line.HasComplex {
					complexities = append(complexities, line.Complexity)
				}
				if joined, ok := coverage.JoinComplexity(complexities); ok {
					existing.Complexity = joined
					existing.HasComplex = true
				}
			}
		}
		for sid, flags := range r.SessionMapping {
			out.SessionMapping[sid] = flags
		}
	}
	return out, nil
}
