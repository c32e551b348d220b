package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the false-positive context rules",
	Long: `Print the rules that mark a code line as structural (imports, declarations, decorators),
after the category filters and custom rules from the config file are applied. Matching lines
are never flagged.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfiguration(viper.GetViper())
		if err != nil {
			return err
		}
		rules, err := buildRuleSet(cfg)
		if err != nil {
			return err
		}

		cyan := color.New(color.FgCyan).SprintFunc()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (%d active)\n", cyan("False-Positive Context Rules"), rules.GetRuleCount())
		fmt.Fprintln(out, "===========================================")
		for _, rule := range rules.Rules() {
			fmt.Fprintf(out, "  - %-22s [%s] %s\n", rule.Name, rule.Config.Category, rule.Description)
			fmt.Fprintf(out, "    %s\n", rule.Regex.String())
		}
		fmt.Fprintln(out, "===========================================")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
