package main

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strconv"
	"text/tabwriter"

	"notelist/internal/clipsync"
	"notelist/internal/types"
)

const version = "dev"

func printNotes(output io.Writer, notes []types.Note) {
	writer := tabwriter.NewWriter(output, 0, 8, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tSTART\tPITCH\tVELOCITY\tDURATION\tPROB\tVEL_DEV\tMUTE")
	for _, note := range notes {
		id := "-"
		if note.NoteID > 0 {
			id = strconv.Itoa(note.NoteID)
		}
		fmt.Fprintf(writer, "%s\t%s\t%d\t%s\t%s\t%s\t%s\t%d\n",
			id,
			formatFloat(note.StartTime),
			note.Pitch,
			formatFloat(note.Velocity),
			formatFloat(note.Duration),
			formatFloat(note.Probability),
			formatFloat(note.VelocityDeviation),
			note.Mute,
		)
	}
	_ = writer.Flush()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// cliError carries the user-facing text of a controller error while keeping
// the chain for errors.Is.
type cliError struct {
	message string
	err     error
}

func (e *cliError) Error() string { return e.message }

func (e *cliError) Unwrap() error { return e.err }

func commandError(err error) error {
	if err == nil {
		return nil
	}
	return &cliError{message: clipsync.UserMessage(err), err: err}
}

// readNoteInputs accepts either a JSON array of notes or a notes dictionary
// object with a "notes" key.
func readNoteInputs(path string) ([]types.NoteInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var inputs []types.NoteInput
		if err := json.Unmarshal(data, &inputs); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return inputs, nil
	}
	var dict types.NotesDictionary
	if err := json.Unmarshal(data, &dict); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return dict.Notes, nil
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		var revision string
		var modified string
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				revision = setting.Value
			case "vcs.modified":
				modified = setting.Value
			}
		}
		if revision != "" {
			if modified == "true" {
				return revision + "-dirty"
			}
			return revision
		}
	}

	exe, err := os.Executable()
	if err == nil {
		file, err := os.Open(exe)
		if err == nil {
			defer file.Close()
			hasher := sha256.New()
			if _, err := io.Copy(hasher, file); err == nil {
				sum := hasher.Sum(nil)
				return fmt.Sprintf("bin-%x", sum[:6])
			}
		}
	}

	return version
}
