package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"notelist/internal/app"
	"notelist/internal/logging"
)

func newUICommand(env *commandEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Run the terminal note editor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.config()
			if err != nil {
				return err
			}
			logger := logging.Nop()
			if path, err := env.wiring.uiLogPath(); err == nil {
				fileLogger, closer, err := logging.OpenFile(path, logging.ParseLevel(cfg.LogLevel()))
				if err == nil {
					defer closer.Close()
					logger = fileLogger
				}
			}
			s := env.session(logger, cfg)
			return env.wiring.runUI(s.ctrl, s.notes, app.Options{
				PageSize:     cfg.PageSize(),
				DefaultStep:  cfg.DefaultStep(),
				Timeout:      cfg.RemoteTimeout(),
				KeyOverrides: cfg.KeyOverrides(),
				Logger:       logger,
			})
		},
	}
}

func newVersionCommand(env *commandEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), env.wiring.version)
		},
	}
}
