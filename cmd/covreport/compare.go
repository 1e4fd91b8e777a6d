package main

import (
	"github.com/spf13/cobra"

	"github.com/patchcov/patchcov/internal/comparison"
)

func newCompareCmd() *cobra.Command {
	var base, head reportSource
	var diffFile string

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare a base and head report over a diff and print the change analysis",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			baseReport, err := loadReport(base, cfg)
			if err != nil {
				return err
			}
			headReport, err := loadReport(head, cfg)
			if err != nil {
				return err
			}
			diffInput, err := loadDiffFile(diffFile)
			if err != nil {
				return err
			}

			analysis := comparison.RunComparisonAnalysis(baseReport, headReport, diffInput)
			log.WithField("files", len(analysis.Files)).Debug("ran comparison analysis")
			return printJSON(cmd, analysis)
		},
	}

	addPrefixedReportSourceFlags(cmd, "base", &base)
	addPrefixedReportSourceFlags(cmd, "head", &head)
	cmd.Flags().StringVar(&diffFile, "diff", "", "path to a diff-JSON file (filename -> change_kind/rename_old/hunks)")
	_ = cmd.MarkFlagRequired("diff")
	return cmd
}

func addPrefixedReportSourceFlags(cmd *cobra.Command, prefix string, s *reportSource) {
	cmd.Flags().StringVar(&s.ChunksFile, prefix+"-chunks", "", "path to the "+prefix+" chunks-format text file")
	cmd.Flags().StringVar(&s.FilenamesFile, prefix+"-filenames", "", "path to the "+prefix+" JSON filename->slot map")
	cmd.Flags().StringVar(&s.SessionsFile, prefix+"-sessions", "", "path to the "+prefix+" JSON session-id->flags map")
	cmd.Flags().StringVar(&s.ProfileFile, prefix+"-profile", "", "path to the "+prefix+" go test -coverprofile text profile")
	cmd.Flags().StringVar(&s.CoverDir, prefix+"-coverdir", "", "path to the "+prefix+" GOCOVERDIR directory")
	cmd.Flags().BoolVar(&s.CoverDirDeep, prefix+"-coverdir-recursive", false, "scan "+prefix+"-coverdir recursively and merge per build group")
}
