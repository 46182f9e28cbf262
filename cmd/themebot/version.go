package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/m3rciful/themebot/core/buildinfo"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "themebot %s\n", buildinfo.Summary())
		},
	}
}
