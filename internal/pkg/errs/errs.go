package errs

import (
	"fmt"
	"strings"
	"time"
)

// sanitize flattens multi-line input so error messages stay single-line in logs.
func sanitize(v any) string {
	s := fmt.Sprintf("%s", v)
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return s
}

func withCause(msg string, cause error) string {
	if cause == nil {
		return msg
	}
	return fmt.Sprintf("%s (cause: %s)", msg, sanitize(cause.Error()))
}

// ---------------------------------------------------------------------------
// Value errors
// ---------------------------------------------------------------------------

var ErrValueIsRequired = fmt.Errorf("value is required")

// ValueIsRequiredError indicates a required parameter was missing or empty.
type ValueIsRequiredError struct {
	ParamName string
	Cause     error
}

func NewValueIsRequiredError(paramName string) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName}
}

func NewValueIsRequiredErrorWithCause(paramName string, cause error) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsRequiredError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrValueIsRequired, sanitize(e.ParamName)), e.Cause)
}

func (e *ValueIsRequiredError) Unwrap() error { return ErrValueIsRequired }

var ErrValueIsInvalid = fmt.Errorf("value is invalid")

// ValueIsInvalidError indicates a parameter was present but malformed.
// Caught before any side effect takes place.
type ValueIsInvalidError struct {
	ParamName string
	Cause     error
}

func NewValueIsInvalidError(paramName string) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName}
}

func NewValueIsInvalidErrorWithCause(paramName string, cause error) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsInvalidError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrValueIsInvalid, sanitize(e.ParamName)), e.Cause)
}

func (e *ValueIsInvalidError) Unwrap() error { return ErrValueIsInvalid }

var ErrValueIsOutOfRange = fmt.Errorf("value is out of range")

// ValueIsOutOfRangeError indicates a numeric parameter fell outside its valid bounds.
type ValueIsOutOfRangeError struct {
	ParamName string
	Value     any
	Min       any
	Max       any
	Cause     error
}

func NewValueIsOutOfRangeError(paramName string, value, minValue, maxValue any) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue}
}

func NewValueIsOutOfRangeErrorWithCause(
	paramName string, value, minValue, maxValue any, cause error,
) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue, Cause: cause}
}

func (e *ValueIsOutOfRangeError) Error() string {
	msg := fmt.Sprintf("%s: %v is %s, min value is %v, max value is %v",
		ErrValueIsOutOfRange, sanitize(fmt.Sprintf("%v", e.Value)), sanitize(e.ParamName), e.Min, e.Max)
	return withCause(msg, e.Cause)
}

func (e *ValueIsOutOfRangeError) Unwrap() error { return ErrValueIsOutOfRange }

// ErrInvalidCoordinates marks geolocation samples rejected by range validation.
// It unwraps to ErrValueIsOutOfRange so generic validation handling still applies.
var ErrInvalidCoordinates = fmt.Errorf("%w: invalid coordinates", ErrValueIsOutOfRange)

// InvalidCoordinatesError indicates a geolocation field outside its valid range,
// e.g. latitude 95 or a negative speed.
type InvalidCoordinatesError struct {
	Field string
	Value float64
	Min   float64
	Max   float64
}

func NewInvalidCoordinatesError(field string, value, minValue, maxValue float64) *InvalidCoordinatesError {
	return &InvalidCoordinatesError{Field: field, Value: value, Min: minValue, Max: maxValue}
}

func (e *InvalidCoordinatesError) Error() string {
	return fmt.Sprintf("invalid coordinates: %s=%v is outside [%v, %v]", sanitize(e.Field), e.Value, e.Min, e.Max)
}

func (e *InvalidCoordinatesError) Unwrap() error { return ErrInvalidCoordinates }

// ---------------------------------------------------------------------------
// Lookup and authorization errors
// ---------------------------------------------------------------------------

var ErrObjectNotFound = fmt.Errorf("object not found")

// ObjectNotFoundError indicates the requested object does not exist in storage.
type ObjectNotFoundError struct {
	ParamName string
	ID        any
	Cause     error
}

func NewObjectNotFoundError(paramName string, id any) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id}
}

func NewObjectNotFoundErrorWithCause(paramName string, id any, cause error) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id, Cause: cause}
}

func (e *ObjectNotFoundError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", ErrObjectNotFound, sanitize(e.ID))
	}
	return fmt.Sprintf("%s: param is: %s, ID is: %s (cause: %s)",
		ErrObjectNotFound, sanitize(e.ParamName), sanitize(e.ID), sanitize(e.Cause.Error()))
}

func (e *ObjectNotFoundError) Unwrap() error { return ErrObjectNotFound }

var ErrForbidden = fmt.Errorf("forbidden")

// ForbiddenError indicates the acting role has no grant for the attempted action.
// Callers surface it the same way as a missing object so order existence does not
// leak across parties; logs keep the full detail.
type ForbiddenError struct {
	Action     string
	ResourceID string
}

func NewForbiddenError(action, resourceID string) *ForbiddenError {
	return &ForbiddenError{Action: action, ResourceID: resourceID}
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("%s: %s on %s", ErrForbidden, sanitize(e.Action), sanitize(e.ResourceID))
}

func (e *ForbiddenError) Unwrap() error { return ErrForbidden }

// ---------------------------------------------------------------------------
// Lifecycle and concurrency errors
// ---------------------------------------------------------------------------

var ErrInvalidTransition = fmt.Errorf("invalid transition")

// InvalidTransitionError indicates a requested status change is not an edge of
// the order state graph for the acting role.
type InvalidTransitionError struct {
	Current   string
	Requested string
	Role      string
}

func NewInvalidTransitionError(current, requested, role string) *InvalidTransitionError {
	return &InvalidTransitionError{Current: current, Requested: requested, Role: role}
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s is not allowed for role %s",
		ErrInvalidTransition, sanitize(e.Current), sanitize(e.Requested), sanitize(e.Role))
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

var ErrStaleState = fmt.Errorf("stale state")

// StaleStateError indicates an optimistic-concurrency loss: another actor moved
// the order after the caller read it. Expected under concurrent use; callers
// should re-fetch rather than treat this as a fault.
type StaleStateError struct {
	OrderID  string
	Expected string
}

func NewStaleStateError(orderID, expected string) *StaleStateError {
	return &StaleStateError{OrderID: orderID, Expected: expected}
}

func (e *StaleStateError) Error() string {
	return fmt.Sprintf("%s: order %s is no longer in status %s",
		ErrStaleState, sanitize(e.OrderID), sanitize(e.Expected))
}

func (e *StaleStateError) Unwrap() error { return ErrStaleState }

var ErrAlreadyAssigned = fmt.Errorf("order already assigned")

// AlreadyAssignedError indicates a concurrent assignment won the race for the
// order. Expected under concurrent dispatch; the caller must re-fetch and decide.
type AlreadyAssignedError struct {
	OrderID string
}

func NewAlreadyAssignedError(orderID string) *AlreadyAssignedError {
	return &AlreadyAssignedError{OrderID: orderID}
}

func (e *AlreadyAssignedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrAlreadyAssigned, sanitize(e.OrderID))
}

func (e *AlreadyAssignedError) Unwrap() error { return ErrAlreadyAssigned }

var ErrCourierOffline = fmt.Errorf("courier is offline")

// CourierOfflineError indicates the courier is not on shift.
type CourierOfflineError struct {
	CourierID string
}

func NewCourierOfflineError(courierID string) *CourierOfflineError {
	return &CourierOfflineError{CourierID: courierID}
}

func (e *CourierOfflineError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCourierOffline, sanitize(e.CourierID))
}

func (e *CourierOfflineError) Unwrap() error { return ErrCourierOffline }

var ErrCourierUnavailable = fmt.Errorf("courier is unavailable")

// CourierUnavailableError indicates the courier is mid-delivery on another order.
type CourierUnavailableError struct {
	CourierID string
}

func NewCourierUnavailableError(courierID string) *CourierUnavailableError {
	return &CourierUnavailableError{CourierID: courierID}
}

func (e *CourierUnavailableError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCourierUnavailable, sanitize(e.CourierID))
}

func (e *CourierUnavailableError) Unwrap() error { return ErrCourierUnavailable }

var ErrRateLimited = fmt.Errorf("rate limited")

// RateLimitedError indicates the per-identity token bucket is exhausted.
// RetryAfter tells the caller when the next request will be admitted.
type RateLimitedError struct {
	Key        string
	RetryAfter time.Duration
}

func NewRateLimitedError(key string, retryAfter time.Duration) *RateLimitedError {
	return &RateLimitedError{Key: key, RetryAfter: retryAfter}
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("%s: %s, retry after %s", ErrRateLimited, sanitize(e.Key), e.RetryAfter)
}

func (e *RateLimitedError) Unwrap() error { return ErrRateLimited }
