package app

import (
	"context"
	"encoding/json"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"notelist/internal/types"
)

const toastTickInterval = 500 * time.Millisecond

// Controller is the sync surface the UI drives. *clipsync.Controller
// satisfies it.
type Controller interface {
	Fetch(ctx context.Context) (types.ClipContext, error)
	Save(ctx context.Context) ([]types.Note, error)
	Fire(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Clip() (types.ClipContext, bool)
	Dirty() bool
}

func fetchCmd(ctrl Controller, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		clip, err := ctrl.Fetch(ctx)
		return fetchedMsg{clip: clip, err: err}
	}
}

func saveCmd(ctrl Controller, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		notes, err := ctrl.Save(ctx)
		return savedMsg{notes: notes, err: err}
	}
}

func transportCmd(action string, timeout time.Duration, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return transportMsg{action: action, err: fn(ctx)}
	}
}

func copyNotesCmd(notes []types.Note) tea.Cmd {
	return func() tea.Msg {
		if notes == nil {
			notes = []types.Note{}
		}
		data, err := json.MarshalIndent(types.NoteInputs(notes), "", "  ")
		if err != nil {
			return copiedMsg{err: err}
		}
		method, err := copyTextToClipboard(string(data))
		return copiedMsg{count: len(notes), method: method, err: err}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(toastTickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
