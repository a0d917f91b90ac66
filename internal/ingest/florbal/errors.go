package florbal

import (
	"errors"
	"fmt"
)

// Kind classifies why a fetch failed so callers can pick a recovery action.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindTransport   Kind = "transport"
	KindHTTP        Kind = "http"
	KindStructure   Kind = "structure"
	KindEmptyResult Kind = "empty_result"
)

// Error is a classified fetch failure. Message is meant to be shown to the user.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error with the same kind and message, so a sentinel still
// matches after a cause has been attached to a copy of it.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Message == e.Message
}

// withCause returns a copy of e carrying err as its cause.
func (e *Error) withCause(err error) *Error {
	c := *e
	c.Err = err
	return &c
}

var (
	ErrInvalidMatchID = &Error{Kind: KindValidation, Message: "invalid match id, enter digits only"}
	ErrInvalidTeamID  = &Error{Kind: KindValidation, Message: "invalid team id, enter digits only"}
	ErrQueryTooShort  = &Error{Kind: KindValidation, Message: "enter at least 2 characters"}

	ErrUnreachable = &Error{Kind: KindTransport, Message: "could not connect to ceskyflorbal.cz"}

	ErrRostersNotFound = &Error{Kind: KindStructure, Message: "could not find rosters in the page, check the match id"}
	ErrNoMatches       = &Error{Kind: KindStructure, Message: "could not find any matches, check the team id"}

	ErrEmptyRoster   = &Error{Kind: KindEmptyResult, Message: "rosters are empty, the match may not have a published roster yet"}
	ErrNoMatchesRead = &Error{Kind: KindEmptyResult, Message: "could not read matches from the page, check the team id"}
	ErrNoTeams       = &Error{Kind: KindEmptyResult, Message: "no teams found"}
)

// httpError reports a non-2xx status returned through the gateway.
func httpError(status int) *Error {
	return &Error{
		Kind:    KindHTTP,
		Status:  status,
		Message: fmt.Sprintf("server returned error %d", status),
	}
}

// parseError wraps an unexpected failure while reading a page.
func parseError(err error) *Error {
	return &Error{
		Kind:    KindStructure,
		Message: "unknown error while parsing the page",
		Err:     err,
	}
}

// KindOf returns the Kind of err, or KindStructure for unclassified errors.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindStructure
}
