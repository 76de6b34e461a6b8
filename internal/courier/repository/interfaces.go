package repository

import (
	"context"
	"time"

	"github.com/trustdelivery/backoffice/internal/courier/domain"
)

// ListFilter scopes delivery listings to what the caller may see. Zero-value
// fields are not applied.
type ListFilter struct {
	CustomerID string
	RiderID    string
	ShopID     string
}

// DeliveryRepository persists deliveries.
type DeliveryRepository interface {
	Create(ctx context.Context, delivery *domain.Delivery) (*domain.Delivery, error)
	GetByID(ctx context.Context, id string) (*domain.Delivery, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Delivery, error)
	Delete(ctx context.Context, id string) error

	// UpdateStatus is a compare-and-set: the row is written only if its
	// status still equals from. It reports false without error when the
	// guard fails, so a lost race can be re-read and re-judged.
	UpdateStatus(ctx context.Context, id string, from, to domain.Status, completedTime *time.Time) (bool, error)
	// UpdatePayment writes only the payment columns; delivery status and
	// timestamps other than updated_at are untouched.
	UpdatePayment(ctx context.Context, id string, status domain.PaymentStatus, method string) error
	// AssignRider sets the rider and moves the row from pending to assigned
	// in one guarded write. It reports false without error when the row is
	// no longer pending, so the caller can re-read and report the conflict.
	AssignRider(ctx context.Context, id string, riderID string) (bool, error)
}
