package domain

import (
	"fmt"
	"time"
)

// Status is the delivery lifecycle state. pending is initial; delivered and
// cancelled are terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAssigned  Status = "assigned"
	StatusPickedUp  Status = "picked_up"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// ParseStatus validates a status string against the enumeration.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusAssigned, StatusPickedUp, StatusDelivered, StatusCancelled:
		return Status(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
}

// transitions is the directed graph of allowed status moves. Terminal states
// have no outgoing edges.
var transitions = map[Status][]Status{
	StatusPending:   {StatusAssigned, StatusCancelled},
	StatusAssigned:  {StatusPickedUp, StatusCancelled},
	StatusPickedUp:  {StatusDelivered, StatusCancelled},
	StatusDelivered: {},
	StatusCancelled: {},
}

// CanTransition reports whether the move from s to next is in the graph.
// There are no self-loops: re-requesting the current status is invalid.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the status has no outgoing transitions.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

func (s Status) String() string { return string(s) }

// PaymentStatus is orthogonal to Status; it has no transition graph and is
// written only by explicit payment updates.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// ParsePaymentStatus validates a payment status string.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(s) {
	case PaymentPending, PaymentPaid, PaymentFailed:
		return PaymentStatus(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPaymentStatus, s)
	}
}

// Delivery is a unit of courier work.
type Delivery struct {
	ID              string        `json:"id"`
	CustomerID      string        `json:"customer_id"`
	RiderID         string        `json:"rider_id,omitempty"`
	ShopID          string        `json:"shop_id,omitempty"`
	PickupAddress   string        `json:"pickup_address"`
	DeliveryAddress string        `json:"delivery_address"`
	Status          Status        `json:"status"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	PaymentMethod   string        `json:"payment_method,omitempty"`
	Price           float64       `json:"price"`
	Notes           string        `json:"notes,omitempty"`
	ScheduledTime   *time.Time    `json:"scheduled_time,omitempty"`
	CompletedTime   *time.Time    `json:"completed_time,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}
