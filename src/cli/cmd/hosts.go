package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sofmeright/idebuild/src/host"
)

var hostsCmd = &cobra.Command{
	Use:   "hosts",
	Short: "List registered host drivers",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range host.All() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hostsCmd)
}
