package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"notelist/internal/host"
	"notelist/internal/logging"
)

type hostOptions struct {
	addr    string
	dbPath  string
	version string
	logger  logging.Logger
}

func newHostCommand(env *commandEnv) *cobra.Command {
	var (
		addr   string
		dbPath string
	)
	cmd := &cobra.Command{
		Use:   "host",
		Short: "Run the development GraphQL host backed by a local database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.config()
			if err != nil {
				return err
			}
			if strings.TrimSpace(addr) == "" {
				addr = cfg.HostAddress()
			}
			if strings.TrimSpace(dbPath) == "" {
				dbPath, err = cfg.ResolveHostDBPath()
				if err != nil {
					return err
				}
			}
			return env.wiring.runHost(cmd.Context(), hostOptions{
				addr:    addr,
				dbPath:  dbPath,
				version: env.wiring.version,
				logger:  env.logger(cfg),
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default host.address)")
	cmd.Flags().StringVar(&dbPath, "db", "", "database file (default host.db_path)")
	return cmd
}

func runHostProcess(ctx context.Context, opts hostOptions) error {
	store, err := host.OpenStore(opts.dbPath)
	if err != nil {
		return err
	}
	defer store.Close()
	service := host.NewService(store, opts.logger)
	server := host.NewServer(opts.addr, opts.version, service, opts.logger)
	opts.logger.Info("host_starting", logging.F("addr", opts.addr), logging.F("db", opts.dbPath))
	return server.Run(ctx)
}
