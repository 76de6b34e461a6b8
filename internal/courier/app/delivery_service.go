package app

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/trustdelivery/backoffice/internal/courier/domain"
	"github.com/trustdelivery/backoffice/internal/courier/repository"
	identity "github.com/trustdelivery/backoffice/internal/identity/domain"
	identityrepo "github.com/trustdelivery/backoffice/internal/identity/repository"
)

// ErrForbidden means the actor's role or ownership does not permit the
// operation.
var ErrForbidden = errors.New("operation not permitted for this role")

// Actor identifies who is performing a delivery operation. It always comes
// from the auth middleware's resolved identity, never from client input.
type Actor struct {
	AccountID string
	Role      identity.Role
}

// EventPublisher is the sliver of the message broker this service needs.
// A nil publisher disables events.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// NewDeliveryInput is the create payload. Status and payment status are not
// part of it: every delivery starts pending/pending.
type NewDeliveryInput struct {
	RiderID         string
	ShopID          string
	PickupAddress   string
	DeliveryAddress string
	ScheduledTime   *time.Time
	Notes           string
	Price           float64
	PaymentMethod   string
}

// DeliveryService is the delivery lifecycle manager: it owns the status
// transition graph, the role policy on mutations, and role-scoped reads.
type DeliveryService struct {
	deliveries repository.DeliveryRepository
	riders     identityrepo.RiderRepository
	shops      identityrepo.ShopRepository
	publisher  EventPublisher
	logger     *slog.Logger
	now        func() time.Time
}

// NewDeliveryService creates a DeliveryService. publisher may be nil.
func NewDeliveryService(
	deliveries repository.DeliveryRepository,
	riders identityrepo.RiderRepository,
	shops identityrepo.ShopRepository,
	publisher EventPublisher,
	logger *slog.Logger,
) *DeliveryService {
	return &DeliveryService{
		deliveries: deliveries,
		riders:     riders,
		shops:      shops,
		publisher:  publisher,
		logger:     logger,
		now:        time.Now,
	}
}

// Create registers a new delivery owned by the acting customer (or created
// on a customer's behalf by an admin, who still becomes the record owner in
// the original's model).
func (s *DeliveryService) Create(ctx context.Context, actor Actor, in NewDeliveryInput) (*domain.Delivery, error) {
	switch actor.Role {
	case identity.RoleAdmin, identity.RoleShopOwner, identity.RoleCustomer:
	default:
		return nil, ErrForbidden
	}

	return s.deliveries.Create(ctx, &domain.Delivery{
		CustomerID:      actor.AccountID,
		RiderID:         in.RiderID,
		ShopID:          in.ShopID,
		PickupAddress:   in.PickupAddress,
		DeliveryAddress: in.DeliveryAddress,
		Status:          domain.StatusPending,
		PaymentStatus:   domain.PaymentPending,
		PaymentMethod:   in.PaymentMethod,
		Price:           in.Price,
		Notes:           in.Notes,
		ScheduledTime:   in.ScheduledTime,
	})
}

// List returns the deliveries the actor may see: everything for the admin
// tier, otherwise only records the actor owns, rides, or sells through.
func (s *DeliveryService) List(ctx context.Context, actor Actor) ([]domain.Delivery, error) {
	filter := repository.ListFilter{}
	switch actor.Role {
	case identity.RoleAdmin, identity.RoleManager:
	case identity.RoleRider:
		rider, err := s.riders.GetByAccountID(ctx, actor.AccountID)
		if err != nil {
			if errors.Is(err, identity.ErrRiderNotFound) {
				return []domain.Delivery{}, nil
			}
			return nil, err
		}
		filter.RiderID = rider.ID
	case identity.RoleShopOwner:
		shop, err := s.shops.GetByOwnerID(ctx, actor.AccountID)
		if err != nil {
			if errors.Is(err, identity.ErrShopNotFound) {
				return []domain.Delivery{}, nil
			}
			return nil, err
		}
		filter.ShopID = shop.ID
	case identity.RoleCustomer:
		filter.CustomerID = actor.AccountID
	default:
		return nil, ErrForbidden
	}
	return s.deliveries.List(ctx, filter)
}

// Get returns one delivery if the actor is privileged or party to it.
func (s *DeliveryService) Get(ctx context.Context, actor Actor, id string) (*domain.Delivery, error) {
	delivery, err := s.deliveries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role.IsPrivileged() {
		return delivery, nil
	}

	allowed := delivery.CustomerID == actor.AccountID
	if !allowed && actor.Role == identity.RoleRider && delivery.RiderID != "" {
		rider, err := s.riders.GetByAccountID(ctx, actor.AccountID)
		if err == nil && rider.ID == delivery.RiderID {
			allowed = true
		}
	}
	if !allowed && actor.Role == identity.RoleShopOwner && delivery.ShopID != "" {
		shop, err := s.shops.GetByOwnerID(ctx, actor.AccountID)
		if err == nil && shop.ID == delivery.ShopID {
			allowed = true
		}
	}
	if !allowed {
		return nil, ErrForbidden
	}
	return delivery, nil
}

// Transition moves a delivery along the status graph. The write is a
// compare-and-set against the status the decision was made on, so two racing
// updates cannot both win; the loser is re-judged against the fresh row.
func (s *DeliveryService) Transition(ctx context.Context, actor Actor, id string, requested domain.Status) (*domain.Delivery, error) {
	switch actor.Role {
	case identity.RoleAdmin, identity.RoleRider:
	default:
		return nil, ErrForbidden
	}

	delivery, err := s.deliveries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !delivery.Status.CanTransition(requested) {
		return nil, &domain.TransitionError{From: delivery.Status, To: requested}
	}

	var completed *time.Time
	if requested == domain.StatusDelivered {
		t := s.now()
		completed = &t
	}

	applied, err := s.deliveries.UpdateStatus(ctx, id, delivery.Status, requested, completed)
	if err != nil {
		return nil, err
	}
	if !applied {
		// Lost a race; report against whatever the row is now.
		fresh, err := s.deliveries.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, &domain.TransitionError{From: fresh.Status, To: requested}
	}

	delivery.Status = requested
	delivery.CompletedTime = completed

	s.publishEvent(ctx, "delivery.status.changed", map[string]string{
		"delivery_id": delivery.ID,
		"status":      string(requested),
		"actor_id":    actor.AccountID,
	})
	return delivery, nil
}

// UpdatePayment sets payment status and method. Admin only; the status graph
// does not constrain it, and nothing else ever writes the payment columns.
func (s *DeliveryService) UpdatePayment(ctx context.Context, actor Actor, id string, status domain.PaymentStatus, method string) (*domain.Delivery, error) {
	if !actor.Role.IsAdminTier() {
		return nil, ErrForbidden
	}
	if err := s.deliveries.UpdatePayment(ctx, id, status, method); err != nil {
		return nil, err
	}
	return s.deliveries.GetByID(ctx, id)
}

// AssignRider places a rider on a pending delivery and moves it to assigned.
// The rider and status land in one write guarded on the pending status, so a
// delivery that has already advanced or been cancelled is never touched.
func (s *DeliveryService) AssignRider(ctx context.Context, actor Actor, id, riderID string) (*domain.Delivery, error) {
	if !actor.Role.IsAdminTier() {
		return nil, ErrForbidden
	}
	if _, err := s.riders.GetByID(ctx, riderID); err != nil {
		return nil, err
	}

	applied, err := s.deliveries.AssignRider(ctx, id, riderID)
	if err != nil {
		return nil, err
	}
	delivery, err := s.deliveries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, &domain.TransitionError{From: delivery.Status, To: domain.StatusAssigned}
	}

	s.publishEvent(ctx, "delivery.status.changed", map[string]string{
		"delivery_id": delivery.ID,
		"status":      string(domain.StatusAssigned),
		"rider_id":    riderID,
		"actor_id":    actor.AccountID,
	})
	return delivery, nil
}

// Delete removes a delivery record. Admin only.
func (s *DeliveryService) Delete(ctx context.Context, actor Actor, id string) error {
	if !actor.Role.IsAdminTier() {
		return ErrForbidden
	}
	return s.deliveries.Delete(ctx, id)
}

func (s *DeliveryService) publishEvent(ctx context.Context, subject string, payload map[string]string) {
	if s.publisher == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to marshal event payload", "error", err, "subject", subject)
		return
	}
	// Events are best-effort; a broker outage never fails the request.
	if err := s.publisher.Publish(ctx, subject, data); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish event", "error", err, "subject", subject)
	}
}
