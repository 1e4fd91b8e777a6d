// Command covreport is a thin driver over the covreport engine: it reads
// chunks files, diff-JSON files, and go coverage profiles from disk, calls
// the engine, and prints the result as JSON. It carries no coverage logic
// of its own — every subcommand is a few lines of I/O around one engine
// call.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	log     = logrus.New()

	configPath string
	logLevel   string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "covreport: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "covreport",
		Short:   "Query and compare coverage reports",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("covreport: --log-level: %w", err)
			}
			log.SetLevel(level)
			return nil
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML session-mapping/default-flags config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")

	root.AddCommand(newTotalsCmd())
	root.AddCommand(newDiffCmd())
	root.AddCommand(newCompareCmd())
	root.AddCommand(newImpactedCmd())
	root.AddCommand(newServeCmd())
	return root
}
