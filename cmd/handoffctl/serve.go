package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/photohandoff/internal/server"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Serve the debug HTTP surface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newProcess()
			if err != nil {
				return err
			}
			defer p.Shutdown()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s := server.New(p)
			s.RegisterRoutes()
			return s.Run(ctx)
		},
	})
}
