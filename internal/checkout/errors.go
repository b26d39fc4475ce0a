package checkout

import "github.com/pkg/errors"

var (
	// ErrMissingProof blocks transfer payments without an uploaded
	// payment proof.
	ErrMissingProof = errors.New("payment proof required for transfer payment")
	// ErrInvalidEmail blocks guest checkout with a malformed email.
	ErrInvalidEmail = errors.New("valid email required")
	// ErrEmptyCart blocks submission of an empty cart.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrSubmissionFailed wraps an order creation failure; the cart is
	// preserved so the customer can retry.
	ErrSubmissionFailed = errors.New("order submission failed")
	// ErrTimedOut reports that the submission deadline elapsed before an
	// answer arrived. Distinct from ErrSubmissionFailed because the
	// order may or may not have been committed server side; the
	// idempotency key makes the retry safe either way.
	ErrTimedOut = errors.New("order submission timed out")
)
