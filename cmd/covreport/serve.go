package main

import (
	"fmt"
	"net"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/patchcov/patchcov/internal/comparison"
	"github.com/patchcov/patchcov/internal/httpapi"
)

func newServeCmd() *cobra.Command {
	var src reportSource
	var base, head reportSource
	var diffFile string
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a report's totals (and, optionally, a comparison) over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			report, err := loadReport(src, cfg)
			if err != nil {
				return err
			}

			srv := &httpapi.Server{Report: report}
			if base.ChunksFile != "" || base.ProfileFile != "" || base.CoverDir != "" {
				srv.Base, err = loadReport(base, cfg)
				if err != nil {
					return err
				}
				srv.Head, err = loadReport(head, cfg)
				if err != nil {
					return err
				}
				if diffFile != "" {
					srv.Diff, err = loadDiffFile(diffFile)
					if err != nil {
						return err
					}
				} else {
					srv.Diff = map[string]comparison.DiffEntry{}
				}
			}

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("covreport: listen on %s: %w", addr, err)
			}
			log.WithField("addr", ln.Addr().String()).Info("serving covreport API")
			return http.Serve(ln, srv.Handler())
		},
	}

	addReportSourceFlags(cmd, &src)
	addPrefixedReportSourceFlags(cmd, "compare-base", &base)
	addPrefixedReportSourceFlags(cmd, "compare-head", &head)
	cmd.Flags().StringVar(&diffFile, "compare-diff", "", "path to a diff-JSON file, enabling GET /api/compare alongside --compare-base-* / --compare-head-*")
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "address to listen on")
	return cmd
}
