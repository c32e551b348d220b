package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/rafabd1/PIIHound/config"
	"github.com/rafabd1/PIIHound/core/terms"
	"github.com/spf13/cobra"
)

var termsCmd = &cobra.Command{
	Use:   "terms",
	Short: "List the PII term catalog",
	Long:  `Print every term PIIHound matches, defaults first, followed by custom terms from --terms or the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = config.DefaultFile
		}
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}

		custom, _ := cmd.Flags().GetStringSlice("terms")
		catalog, err := terms.NewCatalog(append(cfg.CustomTerms, custom...)...)
		if err != nil {
			return err
		}

		cyan := color.New(color.FgCyan).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (v%s, %d terms)\n", cyan("PII Term Catalog"), terms.CatalogVersion, catalog.Len())
		for i, term := range catalog.Terms() {
			if catalog.IsDefault(term) {
				fmt.Fprintf(out, "  %3d. %s\n", i+1, term)
			} else {
				fmt.Fprintf(out, "  %3d. %s %s\n", i+1, term, yellow("(custom)"))
			}
		}
		return nil
	},
}

func init() {
	termsCmd.Flags().StringSliceP("terms", "t", []string{}, "Additional PII terms (comma-separated)")
	rootCmd.AddCommand(termsCmd)
}
