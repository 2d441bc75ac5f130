package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"notelist/internal/clipsync"
)

type transportAction func(ctrl *clipsync.Controller, ctx context.Context) error

// newTransportCommand builds fire, start and stop. Each fetches first so the
// clip and song ids come from the current selection.
func newTransportCommand(env *commandEnv, name, short string, action transportAction) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := env.openSession(cmd.Context())
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), s.cfg.RemoteTimeout())
			defer cancel()
			if err := action(s.ctrl, ctx); err != nil {
				return commandError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", name, s.clipTitle())
			return nil
		},
	}
}
