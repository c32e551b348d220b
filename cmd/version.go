package cmd

import (
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/rafabd1/PIIHound/core/terms"
	"github.com/spf13/cobra"
)

// Build information
var (
	Version   = "0.1.0"
	BuildDate = "undefined"
	GitCommit = "undefined"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display build, version, and runtime information about PIIHound.`,
	Run: func(cmd *cobra.Command, args []string) {
		cyan := color.New(color.FgCyan).SprintFunc()
		green := color.New(color.FgGreen).SprintFunc()

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, cyan("PIIHound Version Information"))
		fmt.Fprintf(out, "%s: %s\n", cyan("Version"), green(Version))
		fmt.Fprintf(out, "%s: %s\n", cyan("Term Catalog"), green("v"+terms.CatalogVersion))
		fmt.Fprintf(out, "%s: %s\n", cyan("Build Date"), green(BuildDate))
		fmt.Fprintf(out, "%s: %s\n", cyan("Git Commit"), green(GitCommit))
		fmt.Fprintf(out, "%s: %s\n", cyan("Go Version"), green(runtime.Version()))
		fmt.Fprintf(out, "%s: %s/%s\n", cyan("Platform"), green(runtime.GOOS), green(runtime.GOARCH))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
