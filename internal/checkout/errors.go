package checkout

import "errors"

var (
	ErrEmptyCart      = errors.New("cart is empty, nothing to checkout")
	ErrMissingAddress = errors.New("delivery address is missing")
	ErrCommitInFlight = errors.New("a checkout is already in progress")
)
