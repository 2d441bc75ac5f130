package host

import "fmt"

type ServiceErrorKind string

const (
	ServiceErrorInvalid  ServiceErrorKind = "invalid"
	ServiceErrorNotFound ServiceErrorKind = "not_found"
	ServiceErrorInternal ServiceErrorKind = "internal"
)

// ServiceError is a failure the GraphQL layer reports in the errors array.
// Invalid errors may carry one message per offending input.
type ServiceError struct {
	Kind    ServiceErrorKind
	Message string
	Details []string
	Err     error
}

func (e *ServiceError) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return string(e.Kind)
	}
}

func (e *ServiceError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Messages lists the per-input details, or the error text when there are none.
func (e *ServiceError) Messages() []string {
	if e == nil {
		return nil
	}
	if len(e.Details) > 0 {
		return append([]string(nil), e.Details...)
	}
	return []string{e.Error()}
}

func invalidError(message string, details []string) *ServiceError {
	return &ServiceError{Kind: ServiceErrorInvalid, Message: message, Details: details}
}

func notFoundError(format string, args ...any) *ServiceError {
	return &ServiceError{Kind: ServiceErrorNotFound, Message: fmt.Sprintf(format, args...)}
}

func internalError(message string, err error) *ServiceError {
	return &ServiceError{Kind: ServiceErrorInternal, Message: message, Err: err}
}
