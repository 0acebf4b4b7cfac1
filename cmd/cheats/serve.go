package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/opsdeck/cheatsheets/constants"
	httpserver "github.com/opsdeck/cheatsheets/http"
	"github.com/spf13/cobra"
)

// newServeCmd creates the 'serve' subcommand.
func newServeCmd() *cobra.Command {
	var addr string
	var watch bool
	cmd := &cobra.Command{
		Use:   constants.CmdServe,
		Short: constants.DescServe,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				host, port, err := splitAddr(addr)
				if err != nil {
					return err
				}
				cfg.HTTP.Host, cfg.HTTP.Port = host, port
			}
			if cmd.Flags().Changed("watch") {
				cfg.Content.Watch = watch
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return httpserver.StartServer(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, e.g. :8080 (overrides config)")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload the catalog when library files change")
	return cmd
}
