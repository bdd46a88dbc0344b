package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sofmeright/idebuild/src/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and maintain the idebuild config file",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check a config file for errors",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigValidate,
}

func init() {
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	c := cfg
	path := cfgFile
	if len(args) > 0 {
		path = args[0]
		var err error
		if c, err = config.Load(path); err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
	}
	if path == "" {
		path = ".idebuild.yml"
	}

	warnings, err := config.Validate(c)
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "  warning: %s\n", w)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  %s ok\n", path)
	return nil
}
