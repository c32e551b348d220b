package cmd

import (
	"fmt"

	"github.com/rafabd1/PIIHound/config"
	"github.com/rafabd1/PIIHound/utils"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the PIIHound config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [file]",
	Short: "Write the default configuration as YAML",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultFile
		if len(args) > 0 {
			path = args[0]
		}

		force, _ := cmd.Flags().GetBool("force")
		if utils.FileExists(path) && !force {
			return utils.NewError(utils.ConfigError, fmt.Sprintf("%s already exists (use --force to overwrite)", path), nil)
		}

		if err := config.Save(path, config.Default()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
