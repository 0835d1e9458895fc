package main

import (
	"fmt"

	"studio-go/internal/artifact"

	"github.com/spf13/cobra"
)

func newActivityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "activity <json>",
		Short: "把活动对象格式化为一行文字",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), artifact.ParseActivity(args[0]))
			return nil
		},
	}
}
