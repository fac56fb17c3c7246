package billing

import "errors"

var (
	// ErrUnknownSubscriptionOwner marks a billing event whose metadata
	// cannot be tied back to a local user or package. Retrying cannot
	// fix it, so the event is dropped after logging.
	ErrUnknownSubscriptionOwner = errors.New("subscription event has no resolvable owner")

	// ErrUnknownPackage marks an event referencing a package id that does
	// not exist locally.
	ErrUnknownPackage = errors.New("subscription event references unknown package")
)
