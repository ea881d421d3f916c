// internal/services/errors.go
package services

import "errors"

// Error taxonomy for the submission workflow. Handlers map these to HTTP
// status codes; callers should test with errors.Is since they are usually
// wrapped with context.
var (
	// ErrValidationFailed: the cart or customer info is bad. The caller must
	// correct the input; never retried automatically.
	ErrValidationFailed = errors.New("validation failed")

	// ErrPersistenceUnavailable: the backing store is unreachable or timed
	// out with nothing committed. The whole submission is safe to retry.
	ErrPersistenceUnavailable = errors.New("persistence unavailable")

	// ErrCommitFailed: a step failed partway through commit. Surfaced, never
	// retried blindly, because a blind retry risks double-decrementing stock.
	ErrCommitFailed = errors.New("commit failed")

	// ErrDuplicateOrderNumber: defensive check at the order store boundary.
	ErrDuplicateOrderNumber = errors.New("duplicate order number")

	// ErrProductNotFound: catalog lookup miss.
	ErrProductNotFound = errors.New("product not found")

	// ErrInvoiceNotFound: no retained invoice for the order number.
	ErrInvoiceNotFound = errors.New("invoice not found")
)
