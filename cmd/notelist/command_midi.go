package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"notelist/internal/logging"
	"notelist/internal/smfio"
	"notelist/internal/types"
)

func newExportCommand(env *commandEnv) *cobra.Command {
	var (
		out     string
		bpm     float64
		channel uint8
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the selected clip's notes to a standard MIDI file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(out) == "" {
				return errors.New("--out is required")
			}
			if channel > 15 {
				return errors.New("channel must be between 0 and 15")
			}
			s, err := env.openSession(cmd.Context())
			if err != nil {
				return err
			}
			clip, _ := s.ctrl.Clip()
			notes := s.notes.Notes()
			err = smfio.WriteFile(out, notes, smfio.Options{
				BPM:         bpm,
				Channel:     channel,
				TrackName:   clip.ClipName,
				Numerator:   signaturePart(clip.SignatureNumerator),
				Denominator: signaturePart(clip.SignatureDenominator),
			})
			if err != nil {
				return err
			}
			s.logger.Info("clip_exported", logFields(clip, len(notes), out)...)
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d notes to %s\n", len(notes), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "destination .mid file")
	cmd.Flags().Float64Var(&bpm, "bpm", 120, "tempo written to the file")
	cmd.Flags().Uint8Var(&channel, "channel", 0, "MIDI channel (0-15)")
	return cmd
}

func newImportCommand(env *commandEnv) *cobra.Command {
	var (
		file    string
		replace bool
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Add the notes of a standard MIDI file to the selected clip",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(file) == "" {
				return errors.New("--file is required")
			}
			imported, err := smfio.ReadFile(file)
			if err != nil {
				return err
			}
			s, err := env.openSession(cmd.Context())
			if err != nil {
				return err
			}
			if replace {
				s.notes.RemoveWhere(func(int, types.Note) bool { return true })
			}
			s.notes.Insert(imported.Notes...)
			if err := s.save(cmd.Context()); err != nil {
				return err
			}
			clip, _ := s.ctrl.Clip()
			s.logger.Info("clip_imported", logFields(clip, len(imported.Notes), file)...)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d notes, %s now has %d notes\n", len(imported.Notes), s.clipTitle(), s.notes.Len())
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "source .mid file")
	cmd.Flags().BoolVar(&replace, "replace", false, "remove the clip's existing notes first")
	return cmd
}

// signaturePart maps an out-of-range signature value to zero, which the
// writer replaces with 4.
func signaturePart(v int) uint8 {
	if v <= 0 || v > 255 {
		return 0
	}
	return uint8(v)
}

func logFields(clip types.ClipContext, count int, path string) []logging.Field {
	return []logging.Field{
		logging.F("clip_id", clip.ClipID),
		logging.F("notes", count),
		logging.F("path", path),
	}
}
