// Package errs provides the standardized error taxonomy for the order
// lifecycle and dispatch engine.
//
// Each taxonomy entry follows the same pattern:
//   - a sentinel error variable (e.g. ErrStaleState) for errors.Is checks
//   - a struct type carrying structured detail (current vs. requested status,
//     offending field, retry-after)
//   - constructor functions, with and without cause
//   - Error() for single-line formatting and Unwrap() for classification
//
// The taxonomy distinguishes expected, retryable outcomes of legitimate
// concurrent use (ErrStaleState, ErrAlreadyAssigned) from genuine input or
// authorization failures, so callers and logs can treat them differently.
// Errors are returned as typed results, never thrown across the transport
// boundary as opaque failures.
package errs
