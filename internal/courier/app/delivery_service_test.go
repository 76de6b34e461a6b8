package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/trustdelivery/backoffice/internal/courier/domain"
	"github.com/trustdelivery/backoffice/internal/courier/repository"
	identity "github.com/trustdelivery/backoffice/internal/identity/domain"
	identityrepo "github.com/trustdelivery/backoffice/internal/identity/repository"
)

// MockDeliveryRepository is a testify mock of repository.DeliveryRepository.
type MockDeliveryRepository struct {
	mock.Mock
}

func (m *MockDeliveryRepository) Create(ctx context.Context, delivery *domain.Delivery) (*domain.Delivery, error) {
	args := m.Called(ctx, delivery)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) GetByID(ctx context.Context, id string) (*domain.Delivery, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) List(ctx context.Context, filter repository.ListFilter) ([]domain.Delivery, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDeliveryRepository) UpdateStatus(ctx context.Context, id string, from, to domain.Status, completedTime *time.Time) (bool, error) {
	args := m.Called(ctx, id, from, to, completedTime)
	return args.Bool(0), args.Error(1)
}

func (m *MockDeliveryRepository) UpdatePayment(ctx context.Context, id string, status domain.PaymentStatus, method string) error {
	args := m.Called(ctx, id, status, method)
	return args.Error(0)
}

func (m *MockDeliveryRepository) AssignRider(ctx context.Context, id string, riderID string) (bool, error) {
	args := m.Called(ctx, id, riderID)
	return args.Bool(0), args.Error(1)
}

// MockRiderRepository is a testify mock of the identity rider repository.
type MockRiderRepository struct {
	mock.Mock
}

func (m *MockRiderRepository) Create(ctx context.Context, q identityrepo.Querier, rider *identity.Rider) (*identity.Rider, error) {
	args := m.Called(ctx, q, rider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Rider), args.Error(1)
}

func (m *MockRiderRepository) GetByID(ctx context.Context, id string) (*identity.Rider, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Rider), args.Error(1)
}

func (m *MockRiderRepository) GetByAccountID(ctx context.Context, accountID string) (*identity.Rider, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Rider), args.Error(1)
}

func (m *MockRiderRepository) GetByPhone(ctx context.Context, phone string) (*identity.Rider, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Rider), args.Error(1)
}

func (m *MockRiderRepository) List(ctx context.Context) ([]identity.Rider, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.Rider), args.Error(1)
}

func (m *MockRiderRepository) Update(ctx context.Context, q identityrepo.Querier, rider *identity.Rider) error {
	args := m.Called(ctx, q, rider)
	return args.Error(0)
}

func (m *MockRiderRepository) SetStatus(ctx context.Context, q identityrepo.Querier, id string, status string) error {
	args := m.Called(ctx, q, id, status)
	return args.Error(0)
}

// MockShopRepository is a testify mock of the identity shop repository.
type MockShopRepository struct {
	mock.Mock
}

func (m *MockShopRepository) Create(ctx context.Context, shop *identity.OnlineShop) (*identity.OnlineShop, error) {
	args := m.Called(ctx, shop)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.OnlineShop), args.Error(1)
}

func (m *MockShopRepository) GetByID(ctx context.Context, id string) (*identity.OnlineShop, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.OnlineShop), args.Error(1)
}

func (m *MockShopRepository) GetByOwnerID(ctx context.Context, ownerID string) (*identity.OnlineShop, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.OnlineShop), args.Error(1)
}

func (m *MockShopRepository) List(ctx context.Context) ([]identity.OnlineShop, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.OnlineShop), args.Error(1)
}

func (m *MockShopRepository) Update(ctx context.Context, shop *identity.OnlineShop) error {
	args := m.Called(ctx, shop)
	return args.Error(0)
}

var serviceNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestDeliveryService(deliveries *MockDeliveryRepository, riders *MockRiderRepository, shops *MockShopRepository) *DeliveryService {
	svc := NewDeliveryService(deliveries, riders, shops, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.now = func() time.Time { return serviceNow }
	return svc
}

func adminActor() Actor    { return Actor{AccountID: "admin-acc", Role: identity.RoleAdmin} }
func riderActor() Actor    { return Actor{AccountID: "rider-acc", Role: identity.RoleRider} }
func customerActor() Actor { return Actor{AccountID: "cust-acc", Role: identity.RoleCustomer} }

func TestCreateForcesPendingState(t *testing.T) {
	deliveries := new(MockDeliveryRepository)
	svc := newTestDeliveryService(deliveries, new(MockRiderRepository), new(MockShopRepository))

	deliveries.On("Create", mock.Anything, mock.MatchedBy(func(d *domain.Delivery) bool {
		return d.Status == domain.StatusPending &&
			d.PaymentStatus == domain.PaymentPending &&
			d.CustomerID == "cust-acc"
	})).Return(&domain.Delivery{ID: "d1", Status: domain.StatusPending}, nil)

	_, err := svc.Create(context.Background(), customerActor(), NewDeliveryInput{
		PickupAddress:   "12 Hledan Rd",
		DeliveryAddress: "4 Inya Ave",
		Price:           3500,
	})
	require.NoError(t, err)
	deliveries.AssertExpectations(t)
}

func TestCreateRejectsRider(t *testing.T) {
	deliveries := new(MockDeliveryRepository)
	svc := newTestDeliveryService(deliveries, new(MockRiderRepository), new(MockShopRepository))

	_, err := svc.Create(context.Background(), riderActor(), NewDeliveryInput{})
	assert.True(t, errors.Is(err, ErrForbidden))
	deliveries.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestListScopedByRole(t *testing.T) {
	deliveries := new(MockDeliveryRepository)
	riders := new(MockRiderRepository)
	shops := new(MockShopRepository)
	svc := newTestDeliveryService(deliveries, riders, shops)

	riders.On("GetByAccountID", mock.Anything, "rider-acc").
		Return(&identity.Rider{ID: "rider-1"}, nil)
	shops.On("GetByOwnerID", mock.Anything, "owner-acc").
		Return(&identity.OnlineShop{ID: "shop-1"}, nil)

	tests := []struct {
		name   string
		actor  Actor
		filter repository.ListFilter
	}{
		{"admin sees all", adminActor(), repository.ListFilter{}},
		{"manager sees all", Actor{AccountID: "mgr-acc", Role: identity.RoleManager}, repository.ListFilter{}},
		{"rider scoped to own rides", riderActor(), repository.ListFilter{RiderID: "rider-1"}},
		{"shop owner scoped to own shop", Actor{AccountID: "owner-acc", Role: identity.RoleShopOwner}, repository.ListFilter{ShopID: "shop-1"}},
		{"customer scoped to own orders", customerActor(), repository.ListFilter{CustomerID: "cust-acc"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			deliveries.On("List", mock.Anything, tc.filter).Return([]domain.Delivery{}, nil).Once()
			_, err := svc.List(context.Background(), tc.actor)
			require.NoError(t, err)
		})
	}
	deliveries.AssertExpectations(t)
}

func TestListRiderWithoutProfileSeesNothing(t *testing.T) {
	deliveries := new(MockDeliveryRepository)
	riders := new(MockRiderRepository)
	svc := newTestDeliveryService(deliveries, riders, new(MockShopRepository))

	riders.On("GetByAccountID", mock.Anything, "rider-acc").
		Return(nil, identity.ErrRiderNotFound)

	result, err := svc.List(context.Background(), riderActor())
	require.NoError(t, err)
	assert.Empty(t, result)
	deliveries.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestGetDeniedForUnrelatedCustomer(t *testing.T) {
	deliveries := new(MockDeliveryRepository)
	svc := newTestDeliveryService(deliveries, new(MockRiderRepository), new(MockShopRepository))

	deliveries.On("GetByID", mock.Anything, "d1").Return(&domain.Delivery{
		ID:         "d1",
		CustomerID: "someone-else",
		Status:     domain.StatusPending,
	}, nil)

	_, err := svc.Get(context.Background(), customerActor(), "d1")
	assert.True(t, errors.Is(err, ErrForbidden))
}

func TestTransitionHappyPath(t *testing.T) {
	deliveries := new(MockDeliveryRepository)
	svc := newTestDeliveryService(deliveries, new(MockRiderRepository), new(MockShopRepository))

	deliveries.On("GetByID", mock.Anything, "d1").Return(&domain.Delivery{
		ID:     "d1",
		Status: domain.StatusAssigned,
	}, nil)
	deliveries.On("UpdateStatus", mock.Anything, "d1", domain.StatusAssigned, domain.StatusPickedUp, (*time.Time)(nil)).
		Return(true, nil)

	delivery, err := svc.Transition(context.Background(), riderActor(), "d1", domain.StatusPickedUp)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPickedUp, delivery.Status)
	assert.Nil(t, delivery.CompletedTime)
}

func TestTransitionToDeliveredStampsCompletedTime(t *testing.T) {
	deliveries := new(MockDeliveryRepository)
	svc := newTestDeliveryService(deliveries, new(MockRiderRepository), new(MockShopRepository))

	deliveries.On("GetByID", mock.Anything, "d1").Return(&domain.Delivery{
		ID:     "d1",
		Status: domain.StatusPickedUp,
	}, nil)
	deliveries.On("UpdateStatus", mock.Anything, "d1", domain.StatusPickedUp, domain.StatusDelivered, &serviceNow).
		Return(true, nil)

	delivery, err := svc.Transition(context.Background(), riderActor(), "d1", domain.StatusDelivered)
	require.NoError(t, err)
	require.NotNil(t, delivery.CompletedTime)
	assert.Equal(t, serviceNow, *delivery.CompletedTime)
}

func TestTransitionRejectsInvalidEdge(t *testing.T) {
	deliveries := new(MockDeliveryRepository)
	svc := newTestDeliveryService(deliveries, new(MockRiderRepository), new(MockShopRepository))

	deliveries.On("GetByID", mock.Anything, "d1").Return(&domain.Delivery{
		ID:     "d1",
		Status: domain.StatusDelivered,
	}, nil)

	_, err := svc.Transition(context.Background(), adminActor(), "d1", domain.StatusPending)
	var terr *domain.TransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, domain.StatusDelivered, terr.From)
	assert.Equal(t, domain.StatusPending, terr.To)
	deliveries.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTransitionRejectsCustomer(t *testing.T) {
	deliveries := new(MockDeliveryRepository)
	svc := newTestDeliveryService(deliveries, new(MockRiderRepository), new(MockShopRepository))

	_, err := svc.Transition(context.Background(), customerActor(), "d1", domain.StatusCancelled)
	assert.True(t, errors.Is(err, ErrForbidden))
	deliveries.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestTransitionLostRaceReportsFreshStatus(t *testing.T) {
	deliveries := new(MockDeliveryRepository)
	svc := newTestDeliveryService(deliveries, new(MockRiderRepository), new(MockShopRepository))

	deliveries.On("GetByID", mock.Anything, "d1").Return(&domain.Delivery{
		ID:     "d1",
		Status: domain.StatusPending,
	}, nil).Once()
	deliveries.On("UpdateStatus", mock.Anything, "d1", domain.StatusPending, domain.StatusCancelled, (*time.Time)(nil)).
		Return(false, nil)
	deliveries.On("GetByID", mock.Anything, "d1").Return(&domain.Delivery{
		ID:     "d1",
		Status: domain.StatusAssigned,
	}, nil).Once()

	_, err := svc.Transition(context.Background(), adminActor(), "d1", domain.StatusCancelled)
	var terr *domain.TransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, domain.StatusAssigned, terr.From)
}

func TestUpdatePaymentAdminOnly(t *testing.T) {
	deliveries := new(MockDeliveryRepository)
	svc := newTestDeliveryService(deliveries, new(MockRiderRepository), new(MockShopRepository))

	for _, actor := range []Actor{riderActor(), customerActor(), {AccountID: "mgr", Role: identity.RoleManager}} {
		_, err := svc.UpdatePayment(context.Background(), actor, "d1", domain.PaymentPaid, "cash")
		assert.True(t, errors.Is(err, ErrForbidden), "role %s", actor.Role)
	}

	deliveries.On("UpdatePayment", mock.Anything, "d1", domain.PaymentPaid, "cash").Return(nil)
	deliveries.On("GetByID", mock.Anything, "d1").Return(&domain.Delivery{
		ID:            "d1",
		PaymentStatus: domain.PaymentPaid,
	}, nil)

	delivery, err := svc.UpdatePayment(context.Background(), adminActor(), "d1", domain.PaymentPaid, "cash")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, delivery.PaymentStatus)
}

func TestAssignRiderValidatesRider(t *testing.T) {
	deliveries := new(MockDeliveryRepository)
	riders := new(MockRiderRepository)
	svc := newTestDeliveryService(deliveries, riders, new(MockShopRepository))

	riders.On("GetByID", mock.Anything, "ghost-rider").Return(nil, identity.ErrRiderNotFound)

	_, err := svc.AssignRider(context.Background(), adminActor(), "d1", "ghost-rider")
	assert.True(t, errors.Is(err, identity.ErrRiderNotFound))
	deliveries.AssertNotCalled(t, "AssignRider", mock.Anything, mock.Anything, mock.Anything)
}

func TestAssignRiderMovesToAssigned(t *testing.T) {
	deliveries := new(MockDeliveryRepository)
	riders := new(MockRiderRepository)
	svc := newTestDeliveryService(deliveries, riders, new(MockShopRepository))

	riders.On("GetByID", mock.Anything, "rider-1").Return(&identity.Rider{ID: "rider-1"}, nil)
	deliveries.On("AssignRider", mock.Anything, "d1", "rider-1").Return(true, nil)
	deliveries.On("GetByID", mock.Anything, "d1").Return(&domain.Delivery{
		ID:      "d1",
		RiderID: "rider-1",
		Status:  domain.StatusAssigned,
	}, nil)

	delivery, err := svc.AssignRider(context.Background(), adminActor(), "d1", "rider-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAssigned, delivery.Status)
	assert.Equal(t, "rider-1", delivery.RiderID)
}

func TestAssignRiderLeavesTerminalDeliveryUntouched(t *testing.T) {
	deliveries := new(MockDeliveryRepository)
	riders := new(MockRiderRepository)
	svc := newTestDeliveryService(deliveries, riders, new(MockShopRepository))

	riders.On("GetByID", mock.Anything, "rider-1").Return(&identity.Rider{ID: "rider-1"}, nil)
	// The guarded write refuses once the row is no longer pending.
	deliveries.On("AssignRider", mock.Anything, "d1", "rider-1").Return(false, nil)
	deliveries.On("GetByID", mock.Anything, "d1").Return(&domain.Delivery{
		ID:     "d1",
		Status: domain.StatusDelivered,
	}, nil)

	_, err := svc.AssignRider(context.Background(), adminActor(), "d1", "rider-1")

	var terr *domain.TransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, domain.StatusDelivered, terr.From)
	assert.Equal(t, domain.StatusAssigned, terr.To)
	deliveries.AssertNotCalled(t, "UpdateStatus",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteAdminOnly(t *testing.T) {
	deliveries := new(MockDeliveryRepository)
	svc := newTestDeliveryService(deliveries, new(MockRiderRepository), new(MockShopRepository))

	err := svc.Delete(context.Background(), customerActor(), "d1")
	assert.True(t, errors.Is(err, ErrForbidden))

	deliveries.On("Delete", mock.Anything, "d1").Return(nil)
	require.NoError(t, svc.Delete(context.Background(), adminActor(), "d1"))
}
