// ABOUTME: CLI command printing the pulse version.
// ABOUTME: The version string is overridden at build time with -ldflags.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the pulse version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "pulse %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
