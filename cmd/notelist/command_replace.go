package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"notelist/internal/types"
)

func newReplaceCommand(env *commandEnv) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "replace",
		Short: "Replace the selected clip's notes with notes from a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(file) == "" {
				return errors.New("--file is required")
			}
			inputs, err := readNoteInputs(file)
			if err != nil {
				return err
			}
			s, err := env.openSession(cmd.Context())
			if err != nil {
				return err
			}
			s.notes.RemoveWhere(func(int, types.Note) bool { return true })
			patches := make([]types.NotePatch, 0, len(inputs))
			for _, input := range inputs {
				patches = append(patches, input.Patch())
			}
			s.notes.Insert(patches...)
			if err := s.save(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %d notes to %s\n", s.notes.Len(), s.clipTitle())
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "JSON file with a notes array or {\"notes\": [...]}")
	return cmd
}
