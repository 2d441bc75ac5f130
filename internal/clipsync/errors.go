package clipsync

import (
	"errors"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"notelist/internal/client"
)

const (
	KindIneligible ftag.Kind = "ineligible"
	KindTransport  ftag.Kind = "transport"
	KindBusy       ftag.Kind = "busy"
	KindStale      ftag.Kind = "stale"
)

// IneligibleMessage is shown when the host has no single MIDI clip in view.
const IneligibleMessage = "No single midi clip selected in Live."

var (
	ErrIneligible    = errors.New("no single midi clip selected")
	ErrSaveInFlight  = errors.New("save already in progress")
	ErrStaleResponse = errors.New("response superseded by a newer request")
)

func ineligibleError(reason string) error {
	return fault.Wrap(ErrIneligible,
		ftag.With(KindIneligible),
		fmsg.WithDesc(reason, IneligibleMessage),
	)
}

func transportError(action string, err error) error {
	return fault.Wrap(err,
		ftag.With(KindTransport),
		fmsg.WithDesc(action, remoteMessage(err)),
	)
}

func busyError() error {
	return fault.Wrap(ErrSaveInFlight,
		ftag.With(KindBusy),
		fmsg.WithDesc("save rejected", "A save is already in progress."),
	)
}

func staleError(action string) error {
	return fault.Wrap(ErrStaleResponse,
		ftag.With(KindStale),
		fmsg.With(action),
	)
}

// Kind returns the failure class of an error produced by the controller.
func Kind(err error) ftag.Kind {
	if err == nil {
		return ""
	}
	return ftag.Get(err)
}

// UserMessage returns the first human-readable message for err, suitable for
// a notification.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if issue := strings.TrimSpace(fmsg.GetIssue(err)); issue != "" {
		return issue
	}
	return remoteMessage(err)
}

func remoteMessage(err error) string {
	var gqlErr *client.GraphQLError
	if errors.As(err, &gqlErr) {
		return gqlErr.FirstMessage()
	}
	msg := strings.TrimSpace(err.Error())
	if client.IsUnavailable(err) {
		return "Could not reach Live: " + msg
	}
	return msg
}
