package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDeliveryNotFound means no delivery matches the lookup.
	ErrDeliveryNotFound = errors.New("delivery not found")
	// ErrUnknownStatus means a status string is outside the enumeration.
	ErrUnknownStatus = errors.New("unknown delivery status")
	// ErrUnknownPaymentStatus means a payment status string is outside the
	// enumeration.
	ErrUnknownPaymentStatus = errors.New("unknown payment status")
	// ErrInvalidTransition means the requested status move is not an edge of
	// the transition graph.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// TransitionError reports a rejected status move with both ends of the edge,
// so the client can see what the record actually is right now.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition delivery from %s to %s", e.From, e.To)
}

// Is lets errors.Is(err, ErrInvalidTransition) match a *TransitionError.
func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }
