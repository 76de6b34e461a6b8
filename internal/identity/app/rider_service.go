package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/trustdelivery/backoffice/internal/identity/domain"
	"github.com/trustdelivery/backoffice/internal/identity/repository"
)

// TxBeginner opens database transactions; *pgxpool.Pool satisfies it.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// NewRiderInput is the payload for onboarding a rider. It creates both the
// login account and the courier profile.
type NewRiderInput struct {
	Name             string
	PhoneNumber      string
	Township         string
	FullAddress      string
	Email            string
	Password         string
	NRC              string
	JoinedDate       *time.Time
	EmergencyContact string
	VehicleType      string
}

// UpdateRiderInput carries optional profile changes; empty fields are kept.
type UpdateRiderInput struct {
	Name             string
	PhoneNumber      string
	Township         string
	FullAddress      string
	NRC              string
	EmergencyContact string
	VehicleType      string
	Email            string
}

// RiderService manages courier profiles. Creation spans two rows, an
// account and a rider, and runs in one transaction so a failure leaves
// neither behind.
type RiderService struct {
	db       TxBeginner
	accounts repository.AccountRepository
	riders   repository.RiderRepository
	logger   *slog.Logger
}

// NewRiderService creates a RiderService.
func NewRiderService(db TxBeginner, accounts repository.AccountRepository, riders repository.RiderRepository, logger *slog.Logger) *RiderService {
	return &RiderService{db: db, accounts: accounts, riders: riders, logger: logger}
}

// List returns all riders with their linked account views.
func (s *RiderService) List(ctx context.Context) ([]domain.Rider, error) {
	return s.riders.List(ctx)
}

// Get returns one rider with its linked account view.
func (s *RiderService) Get(ctx context.Context, id string) (*domain.Rider, error) {
	return s.riders.GetByID(ctx, id)
}

// Create onboards a rider: login account plus profile, atomically.
func (s *RiderService) Create(ctx context.Context, in NewRiderInput) (*domain.Rider, error) {
	if existing, err := s.accounts.GetByEmail(ctx, in.Email); err == nil && existing != nil {
		return nil, domain.ErrEmailExists
	} else if err != nil && !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}
	if existing, err := s.riders.GetByPhone(ctx, in.PhoneNumber); err == nil && existing != nil {
		return nil, domain.ErrPhoneExists
	} else if err != nil && !errors.Is(err, domain.ErrRiderNotFound) {
		return nil, err
	}

	hashed, err := HashPassword(in.Password)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to hash rider password", "error", err)
		return nil, errors.New("failed to create rider")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	account, err := s.accounts.Create(ctx, tx, &domain.Account{
		Username:       in.Name,
		Email:          in.Email,
		HashedPassword: hashed,
		Role:           domain.RoleRider,
		IsActive:       true,
	})
	if err != nil {
		return nil, err
	}

	joined := time.Time{}
	if in.JoinedDate != nil {
		joined = *in.JoinedDate
	}
	rider, err := s.riders.Create(ctx, tx, &domain.Rider{
		AccountID:        account.ID,
		Name:             in.Name,
		PhoneNumber:      in.PhoneNumber,
		Township:         in.Township,
		FullAddress:      in.FullAddress,
		NRC:              in.NRC,
		JoinedDate:       joined,
		EmergencyContact: in.EmergencyContact,
		VehicleType:      in.VehicleType,
		Status:           domain.RiderStatusActive,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	view := account.Safe()
	rider.Account = &view
	return rider, nil
}

// Update changes profile fields. An email change propagates to the linked
// account inside the same transaction.
func (s *RiderService) Update(ctx context.Context, id string, in UpdateRiderInput) (*domain.Rider, error) {
	rider, err := s.riders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != "" {
		rider.Name = in.Name
	}
	if in.PhoneNumber != "" {
		rider.PhoneNumber = in.PhoneNumber
	}
	if in.Township != "" {
		rider.Township = in.Township
	}
	if in.FullAddress != "" {
		rider.FullAddress = in.FullAddress
	}
	if in.NRC != "" {
		rider.NRC = in.NRC
	}
	if in.EmergencyContact != "" {
		rider.EmergencyContact = in.EmergencyContact
	}
	if in.VehicleType != "" {
		rider.VehicleType = in.VehicleType
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := s.riders.Update(ctx, tx, rider); err != nil {
		return nil, err
	}
	if in.Email != "" {
		account, err := s.accounts.GetByID(ctx, rider.AccountID)
		if err != nil {
			return nil, err
		}
		account.Email = in.Email
		if err := s.accounts.Update(ctx, tx, account); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return s.riders.GetByID(ctx, id)
}

// ToggleStatus flips the rider between active and inactive, mirroring the
// change onto the linked account's active flag in the same transaction so an
// off-duty rider also cannot log in.
func (s *RiderService) ToggleStatus(ctx context.Context, id string) (*domain.Rider, error) {
	rider, err := s.riders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	newStatus := domain.RiderStatusActive
	if rider.Status == domain.RiderStatusActive {
		newStatus = domain.RiderStatusInactive
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := s.riders.SetStatus(ctx, tx, id, newStatus); err != nil {
		return nil, err
	}
	if err := s.accounts.SetActive(ctx, tx, rider.AccountID, newStatus == domain.RiderStatusActive); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return s.riders.GetByID(ctx, id)
}
