// Package govprofile adapts standard `go test -coverprofile` text profiles
// (golang.org/x/tools/cover) into this engine's model.Report, so projects
// already using `go test -cover` can feed real coverage into the
// comparison/profiling engine without a chunks export step.
package govprofile

import (
	"fmt"

	"golang.org/x/tools/cover"

	"github.com/patchcov/patchcov/internal/coverage"
	"github.com/patchcov/patchcov/internal/model"
)

// ImportFile parses the text coverage profile at path and converts it into
// a single-session Report. sessionID/flags describe the one session every
// imported line is attributed to.
func ImportFile(path string, sessionID int32, flags []string) (*model.Report, error) {
	profiles, err := cover.ParseProfiles(path)
	if err != nil {
		return nil, fmt.Errorf("govprofile: parse profile %s: %w", path, err)
	}
	return Import(profiles, sessionID, flags), nil
}

// Import converts already-parsed cover.Profile values into a Report. Each
// profile block covers a contiguous line range; overlapping blocks for the
// same line are joined per the coverage algebra, matching how a real
// multi-session report resolves conflicting evidence for one line.
func Import(profiles []*cover.Profile, sessionID int32, flags []string) *model.Report {
	report := model.NewReport()
	report.SessionMapping[sessionID] = flags

	for _, p := range profiles {
		file := model.NewReportFile()
		lineCov := make(map[int32]coverage.Coverage)

		for _, b := range p.Blocks {
			c := coverage.C(coverage.Miss)
			if b.Count > 0 {
				c = coverage.C(coverage.Hit)
			}
			for ln := int32(b.StartLine); ln <= int32(b.EndLine); ln++ {
				if existing, ok := lineCov[ln]; ok {
					lineCov[ln] = coverage.Join([]coverage.Coverage{existing, c})
				} else {
					lineCov[ln] = c
				}
			}
		}

		for ln, c := range lineCov {
			file.Lines[ln] = &model.ReportLine{
				Coverage: c,
				Sessions: []model.LineSession{{SessionID: sessionID, Coverage: c}},
			}
		}
		report.Files[p.FileName] = file
	}

	return report
}
