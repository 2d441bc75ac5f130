package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"notelist/internal/types"
)

const (
	outputFormatTable = "table"
	outputFormatJSON  = "json"
)

type fetchOutput struct {
	Clip  types.ClipContext `json:"clip"`
	Notes []types.Note      `json:"notes"`
}

func newFetchCommand(env *commandEnv) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Print the notes of the selected clip",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(strings.TrimSpace(format))
			if format != outputFormatTable && format != outputFormatJSON {
				return errors.New("invalid format: must be table or json")
			}
			s, err := env.openSession(cmd.Context())
			if err != nil {
				return err
			}
			clip, _ := s.ctrl.Clip()
			notes := s.notes.Notes()
			out := cmd.OutOrStdout()
			if format == outputFormatJSON {
				if notes == nil {
					notes = []types.Note{}
				}
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(fetchOutput{Clip: clip, Notes: notes})
			}
			fmt.Fprintf(out, "%s (clip %d, %d notes)\n", clip.Title(), clip.ClipID, len(notes))
			printNotes(out, notes)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", outputFormatTable, "output format: table|json")
	return cmd
}
