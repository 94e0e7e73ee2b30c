package main

import (
	"fmt"

	"github.com/danmuck/photohandoff/internal/config"
	"github.com/spf13/cobra"
)

var initForce bool

func init() {
	cmd := &cobra.Command{
		Use:   "init <path>",
		Short: "Write a host config template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteTemplate(args[0], "host", initForce); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing file")
	rootCmd.AddCommand(cmd)
}
