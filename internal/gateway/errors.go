package gateway

import "fmt"

// Error is returned for any failed provider call: a rejected request or an
// unreachable provider. Description carries the provider's message when it sent one.
type Error struct {
	Op          string // Provider operation, e.g. orders.create
	StatusCode  int    // HTTP status, 0 for transport failures
	Code        string // Provider error code
	Description string // Provider error description
	Err         error  // Underlying transport or decode error
}

func (e *Error) Error() string {
	switch {
	case e.Description != "":
		return fmt.Sprintf("gateway %s: %s", e.Op, e.Description)
	case e.Err != nil:
		return fmt.Sprintf("gateway %s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("gateway %s: http status %d", e.Op, e.StatusCode)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Message is the text safe to show to a user.
func (e *Error) Message() string {
	if e.Description != "" {
		return e.Description
	}
	return "Payment gateway unavailable"
}
