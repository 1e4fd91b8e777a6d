package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/patchcov/patchcov/internal/query"
)

func newDiffCmd() *cobra.Command {
	var src reportSource
	var diffFile string
	var files string
	var flags string

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Print per-file diff-restricted line coverage for a report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			report, err := loadReport(src, cfg)
			if err != nil {
				return err
			}
			diffInput, err := loadQueryDiffFile(diffFile)
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

			analyzer := query.FilterAnalyzer{Files: fileSet, Flags: flagList}
			result := analyzer.CalculateDiff(report, diffInput)
			log.WithField("files", len(result)).Debug("computed diff")
			return printJSON(cmd, result)
		},
	}

	addReportSourceFlags(cmd, &src)
	cmd.Flags().StringVar(&diffFile, "diff", "", "path to a diff-JSON file (filename -> hunks)")
	cmd.Flags().StringVar(&files, "files", "", "comma-separated filename filter")
	cmd.Flags().StringVar(&flags, "flags", "", "comma-separated session-flag filter")
	_ = cmd.MarkFlagRequired("diff")
	return cmd
}
