package florbal

import (
	"encoding/json"
	"errors"
)

// Result is the tagged outcome of every fetch-and-parse operation. Exactly one of
// Data (OK == true) or Error (OK == false) is meaningful.
type Result[T any] struct {
	OK    bool
	Data  T
	Error string
	Kind  Kind

	err error
}

// Ok wraps a successful value.
func Ok[T any](data T) Result[T] {
	return Result[T]{OK: true, Data: data}
}

// Fail wraps a failure. Unclassified errors are reported as parse failures.
func Fail[T any](err error) Result[T] {
	var fe *Error
	if !errors.As(err, &fe) {
		fe = parseError(err)
	}
	return Result[T]{
		OK:    false,
		Error: fe.Message,
		Kind:  fe.Kind,
		err:   fe,
	}
}

// Err returns the underlying classified error, or nil for a success.
func (r Result[T]) Err() error {
	if r.OK {
		return nil
	}
	if r.err == nil {
		return &Error{Kind: r.Kind, Message: r.Error}
	}
	return r.err
}

type okPayload[T any] struct {
	OK   bool `json:"ok"`
	Data T    `json:"data"`
}

type failPayload struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	Kind  Kind   `json:"kind,omitempty"`
}

// MarshalJSON encodes {"ok":true,"data":…} or {"ok":false,"error":…,"kind":…}.
func (r Result[T]) MarshalJSON() ([]byte, error) {
	if r.OK {
		return json.Marshal(okPayload[T]{OK: true, Data: r.Data})
	}
	return json.Marshal(failPayload{Error: r.Error, Kind: r.Kind})
}

func (r *Result[T]) UnmarshalJSON(b []byte) error {
	var head struct {
		OK    bool            `json:"ok"`
		Data  json.RawMessage `json:"data"`
		Error string          `json:"error"`
		Kind  Kind            `json:"kind"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return err
	}

	*r = Result[T]{OK: head.OK, Error: head.Error, Kind: head.Kind}
	if head.OK && len(head.Data) > 0 {
		return json.Unmarshal(head.Data, &r.Data)
	}
	return nil
}
