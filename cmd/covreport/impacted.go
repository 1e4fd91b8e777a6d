package main

import (
	"github.com/spf13/cobra"

	"github.com/patchcov/patchcov/internal/profiling"
)

func newImpactedCmd() *cobra.Command {
	var base, head reportSource
	var diffFile string
	var profilingFile string

	cmd := &cobra.Command{
		Use:   "impacted",
		Short: "Find recorded execution groups (e.g. endpoints) impacted by a change",
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
			data, err := loadProfilingData(profilingFile)
			if err != nil {
				return err
			}

			impacted := profiling.FindImpactedEndpoints(baseReport, headReport, diffInput, data)
			log.WithField("groups", len(impacted)).Debug("found impacted groups")
			return printJSON(cmd, impacted)
		},
	}

	addPrefixedReportSourceFlags(cmd, "base", &base)
	addPrefixedReportSourceFlags(cmd, "head", &head)
	cmd.Flags().StringVar(&diffFile, "diff", "", "path to a diff-JSON file (filename -> change_kind/rename_old/hunks)")
	cmd.Flags().StringVar(&profilingFile, "profiling-data", "", "path to a JSON profiling-groups file")
	_ = cmd.MarkFlagRequired("diff")
	_ = cmd.MarkFlagRequired("profiling-data")
	return cmd
}
