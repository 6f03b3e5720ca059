package order

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is returned for a status change outside the workflow
	// graph and for any mutation of a terminal order.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrStaleUpdate is returned for a location update whose sequence is not
	// newer than the one already applied.
	ErrStaleUpdate = errors.New("stale tracking update")

	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder")
)

func invalidTransition(from, to Status) error {
	return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, to)
}
