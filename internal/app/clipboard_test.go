package app

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func stubClipboard(t *testing.T, system, osc func(string) error) {
	t.Helper()
	origWriteAll := clipboardWriteAll
	origWriteOSC52 := clipboardWriteOSC52
	t.Cleanup(func() {
		clipboardWriteAll = origWriteAll
		clipboardWriteOSC52 = origWriteOSC52
	})
	clipboardWriteAll = system
	clipboardWriteOSC52 = osc
}

func TestCopyTextToClipboardUsesSystemBackend(t *testing.T) {
	fallbackCalled := false
	stubClipboard(t,
		func(string) error { return nil },
		func(string) error {
			fallbackCalled = true
			return nil
		},
	)

	method, err := copyTextToClipboard("hello")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if method != clipboardMethodSystem {
		t.Fatalf("expected system method, got %v", method)
	}
	if fallbackCalled {
		t.Fatalf("expected no OSC52 fallback call")
	}
}

func TestCopyTextToClipboardFallsBackToOSC52(t *testing.T) {
	var copied string
	stubClipboard(t,
		func(string) error { return errors.New("exit status 1") },
		func(text string) error {
			copied = text
			return nil
		},
	)

	method, err := copyTextToClipboard("hello")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if method != clipboardMethodOSC52 || method.String() != "terminal" {
		t.Fatalf("expected OSC52 method, got %v", method)
	}
	if copied != "hello" {
		t.Fatalf("expected fallback to receive text, got %q", copied)
	}
}

func TestCopyTextToClipboardHelpfulErrorWhenDisplayMissing(t *testing.T) {
	t.Setenv("DISPLAY", "")
	t.Setenv("WAYLAND_DISPLAY", "")
	stubClipboard(t,
		func(string) error { return errors.New("exit status 1") },
		func(string) error { return errors.New("open /dev/tty: no such device") },
	)

	_, err := copyTextToClipboard("hello")
	if err == nil {
		t.Fatalf("expected copy error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "no GUI clipboard available") || !strings.Contains(msg, "OSC52 fallback failed") {
		t.Fatalf("unexpected error %q", msg)
	}
}

func TestCopyTextToClipboardReportsBothFailures(t *testing.T) {
	t.Setenv("DISPLAY", ":0")
	stubClipboard(t,
		func(string) error { return errors.New("exit status 1") },
		func(string) error { return errors.New("OSC52 unavailable for this terminal") },
	)

	_, err := copyTextToClipboard("hello")
	if err == nil {
		t.Fatalf("expected copy error")
	}
	if !strings.Contains(err.Error(), "clipboard helper exited with status 1") {
		t.Fatalf("unexpected error %q", err)
	}
}

func TestShouldAttemptOSC52(t *testing.T) {
	t.Setenv("TERM", "xterm-256color")
	t.Setenv("NOTELIST_DISABLE_OSC52", "")
	if !shouldAttemptOSC52() {
		t.Fatalf("expected OSC52 for xterm")
	}
	t.Setenv("NOTELIST_DISABLE_OSC52", "yes")
	if shouldAttemptOSC52() {
		t.Fatalf("expected OSC52 to be disabled")
	}
	t.Setenv("NOTELIST_DISABLE_OSC52", "")
	t.Setenv("TERM", "dumb")
	if shouldAttemptOSC52() {
		t.Fatalf("expected no OSC52 for dumb terminals")
	}
}

func TestWriteOSC52SequenceWrapsForScreen(t *testing.T) {
	t.Setenv("TMUX", "")
	t.Setenv("TERM", "screen-256color")

	var buf bytes.Buffer
	if err := writeOSC52Sequence(&buf, "hello"); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "\x1bP") {
		t.Fatalf("expected DCS passthrough for screen, got %q", out)
	}
	if !strings.Contains(out, "aGVsbG8=") {
		t.Fatalf("expected base64 payload, got %q", out)
	}
}
