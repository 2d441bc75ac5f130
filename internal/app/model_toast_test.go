package app

import (
	"strings"
	"testing"
	"time"

	xansi "github.com/charmbracelet/x/ansi"

	"notelist/internal/notes"
)

func TestShowInfoToastExpires(t *testing.T) {
	m := NewModel(nil, notes.NewCollection(nil), Options{})
	start := time.Now()
	m.now = func() time.Time { return start }
	m.showInfoToast("copied 3 notes")

	if !m.toastActive(start) {
		t.Fatalf("expected toast to be active")
	}
	m.Update(tickMsg(start.Add(toastDuration + time.Millisecond)))
	if m.toastText != "" {
		t.Fatalf("expected toast to clear after expiry, got %q", m.toastText)
	}
	if m.toastLevel != toastLevelInfo {
		t.Fatalf("expected level reset after clear, got %v", m.toastLevel)
	}
}

func TestErrorToastPersistsUntilDismissed(t *testing.T) {
	m := NewModel(nil, notes.NewCollection(nil), Options{})
	m.showErrorToast("Could not reach Live: connection refused")

	m.expireToast(time.Now().Add(time.Hour))
	if m.toastText == "" {
		t.Fatalf("expected error toast to persist")
	}
	m.clearToast()
	if m.toastActive(time.Now()) {
		t.Fatalf("expected toast to be cleared")
	}
}

func TestBlankToastIsIgnored(t *testing.T) {
	m := NewModel(nil, notes.NewCollection(nil), Options{})
	m.showWarningToast("   ")
	if m.toastText != "" {
		t.Fatalf("expected blank toast to be dropped, got %q", m.toastText)
	}
}

func TestViewShowsToast(t *testing.T) {
	m := NewModel(nil, notes.NewCollection(nil), Options{})
	m.resize(100, 20)
	m.showErrorToast("notes[0]: pitch 300 out of range")

	plain := xansi.Strip(m.View())
	if !strings.Contains(plain, "notes[0]: pitch 300 out of range") {
		t.Fatalf("expected toast text in view output: %q", plain)
	}
}
