package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/patchcov/patchcov/internal/query"
)

func newTotalsCmd() *cobra.Command {
	var src reportSource
	var files string
	var flags string

	cmd := &cobra.Command{
		Use:   "totals",
		Short: "Print a report's hit/miss/partial totals, optionally filtered",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			report, err := loadReport(src, cfg)
			if err != nil {
				return err
			}

			var fileSet map[string]struct{}
			if files != "" {
				fileSet = make(map[string]struct{})
				for _, f := range strings.Split(files, ",") {
					fileSet[f] = struct{}{}
				}
			}
			var flagList []string
			if flags != "" {
				flagList = strings.Split(flags, ",")
			}

			var totals interface{}
			if fileSet == nil && flagList == nil {
				totals = query.SimpleAnalyzer{}.GetTotals(report)
			} else {
				totals = query.FilterAnalyzer{Files: fileSet, Flags: flagList}.GetTotals(report)
			}

			log.WithField("files", len(report.Files)).Debug("computed totals")
			return printJSON(cmd, totals)
		},
	}

	addReportSourceFlags(cmd, &src)
	cmd.Flags().StringVar(&files, "files", "", "comma-separated filename filter")
	cmd.Flags().StringVar(&flags, "flags", "", "comma-separated session-flag filter")
	return cmd
}

func addReportSourceFlags(cmd *cobra.Command, s *reportSource) {
	cmd.Flags().StringVar(&s.ChunksFile, "chunks", "", "path to a chunks-format text file")
	cmd.Flags().StringVar(&s.FilenamesFile, "filenames", "", "path to a JSON filename->slot map for --chunks")
	cmd.Flags().StringVar(&s.SessionsFile, "sessions", "", "path to a JSON session-id->flags map for --chunks")
	cmd.Flags().StringVar(&s.ProfileFile, "profile", "", "path to a go test -coverprofile text profile")
	cmd.Flags().StringVar(&s.CoverDir, "coverdir", "", "path to a GOCOVERDIR directory")
	cmd.Flags().BoolVar(&s.CoverDirDeep, "coverdir-recursive", false, "scan --coverdir recursively and merge per build group")
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("covreport: encode output: %w", err)
	}
	return nil
}
