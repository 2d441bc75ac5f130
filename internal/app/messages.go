package app

import (
	"time"

	"notelist/internal/types"
)

type fetchedMsg struct {
	clip types.ClipContext
	err  error
}

type savedMsg struct {
	notes []types.Note
	err   error
}

type transportMsg struct {
	action string
	err    error
}

type copiedMsg struct {
	count  int
	method clipboardMethod
	err    error
}

type tickMsg time.Time
