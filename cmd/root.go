package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd scans a replication package when called without subcommands
var rootCmd = &cobra.Command{
	Use:   "piihound [path]",
	Short: "PIIHound - Flag personally identifiable information in research packages",
	Long: `PIIHound scans a replication package for variables and code lines that
look like personally identifiable information. Data file variable names and
labels, and every line of code, are matched against a catalog of PII terms;
flagged items are written to a markdown or JSON report.`,
	Args:          cobra.MaximumNArgs(1),
	RunE:          runScan,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with ctx and exits non-zero on failure.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./piihound.yaml)")
	initScanFlags(rootCmd, viper.GetViper())
}
