package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors forming the domain error taxonomy. Services wrap
// these with detail; controllers map them to HTTP status codes.
var (
	// Entity absent or the caller lacks visibility over it.
	ErrNotFound = errors.New("not found")
	// Malformed or out-of-range input field.
	ErrValidation = errors.New("validation error")
	// Action not permitted in the entity's current state.
	ErrInvalidOperation = errors.New("invalid operation")
	// Race lost: the order already has an accepted bid.
	ErrAlreadyAssigned = errors.New("order already assigned")
	// Race lost: the bid has already been finalized.
	ErrAlreadyProcessed = errors.New("bid already processed")
	// Caller lacks the required role or ownership.
	ErrForbidden = errors.New("forbidden")
	// Bid amount exceeds the order budget, or order budget is below minimum.
	ErrBudgetExceeded = errors.New("budget exceeded")
	// Proposed deadline is malformed or exceeds the order deadline.
	ErrInvalidDeadline = errors.New("invalid deadline")
	// The writer already has an open bid on the order.
	ErrDuplicateBid = errors.New("duplicate open bid")
	// Withdrawal transition attempted from a non-pending state.
	ErrInvalidState = errors.New("invalid state")
	// Authorization token is missing, expired or unparseable.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// JSON is the error envelope every failure response carries.
// Should only be used immediately before marshalling.
type JSON struct {
	Error string `json:"error"`
}

// RequiredParamError lets users know which required request parameter
// is not provided.
type RequiredParamError struct {
	ParamName string
}

func (e *RequiredParamError) Error() string {
	return fmt.Sprintf("%s: %q is required, but not found", ErrValidation, e.ParamName)
}

func (e *RequiredParamError) Unwrap() error {
	return ErrValidation
}
