package client

import (
	"errors"
	"fmt"
	"strings"
)

// GraphQLError carries every message from a response's errors array.
type GraphQLError struct {
	Operation string
	Messages  []string
}

func (e *GraphQLError) Error() string {
	if e == nil {
		return ""
	}
	return e.FirstMessage()
}

// FirstMessage returns the first non-empty message, which is what gets shown
// to the user.
func (e *GraphQLError) FirstMessage() string {
	if e == nil {
		return ""
	}
	for _, msg := range e.Messages {
		if msg = strings.TrimSpace(msg); msg != "" {
			return msg
		}
	}
	return fmt.Sprintf("%s failed", e.Operation)
}

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

func asAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}

func newGraphQLError(operation string, entries []ErrorEntry) *GraphQLError {
	messages := make([]string, 0, len(entries))
	for _, entry := range entries {
		messages = append(messages, entry.Message)
	}
	return &GraphQLError{Operation: operation, Messages: messages}
}
