package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/trustdelivery/backoffice/internal/identity/domain"
	"github.com/trustdelivery/backoffice/internal/identity/repository"
)

// AccountService is the admin-facing account management surface. Role checks
// happen at the HTTP boundary; this layer enforces only invariants that must
// hold no matter who calls, like the last-admin guard.
type AccountService struct {
	accounts repository.AccountRepository
	logger   *slog.Logger
}

// NewAccountService creates an AccountService.
func NewAccountService(accounts repository.AccountRepository, logger *slog.Logger) *AccountService {
	return &AccountService{accounts: accounts, logger: logger}
}

// List returns safe views of every account.
func (s *AccountService) List(ctx context.Context) ([]domain.SafeView, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]domain.SafeView, 0, len(accounts))
	for i := range accounts {
		views = append(views, accounts[i].Safe())
	}
	return views, nil
}

// Get returns a single account's safe view.
func (s *AccountService) Get(ctx context.Context, id string) (*domain.SafeView, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := account.Safe()
	return &view, nil
}

// Add creates an account with an arbitrary role, including administrator
// roles that self-registration refuses.
func (s *AccountService) Add(ctx context.Context, username, email, password, roleStr string) (*domain.SafeView, error) {
	role, err := domain.ParseRole(roleStr)
	if err != nil {
		return nil, err
	}
	hashed, err := HashPassword(password)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to hash password", "error", err)
		return nil, errors.New("failed to create account")
	}
	account, err := s.accounts.Create(ctx, nil, &domain.Account{
		Username:       username,
		Email:          email,
		HashedPassword: hashed,
		Role:           role,
		IsActive:       true,
	})
	if err != nil {
		return nil, err
	}
	view := account.Safe()
	return &view, nil
}

// UpdateProfile changes username/email/role. Empty fields are left alone.
func (s *AccountService) UpdateProfile(ctx context.Context, id, username, email, roleStr string) (*domain.SafeView, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if username != "" {
		account.Username = username
	}
	if email != "" {
		account.Email = email
	}
	if roleStr != "" {
		role, err := domain.ParseRole(roleStr)
		if err != nil {
			return nil, err
		}
		account.Role = role
	}
	if err := s.accounts.Update(ctx, nil, account); err != nil {
		return nil, err
	}
	view := account.Safe()
	return &view, nil
}

// Delete removes an account. The final administrator cannot be deleted, or
// the system would have no one left who can administer it.
func (s *AccountService) Delete(ctx context.Context, id string) error {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if account.Role.IsAdminTier() {
		admins, err := s.accounts.CountByRole(ctx, domain.RoleAdmin)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return domain.ErrLastAdmin
		}
	}
	return s.accounts.Delete(ctx, id)
}

// ToggleActive flips the active flag and returns the new state.
func (s *AccountService) ToggleActive(ctx context.Context, id string) (*domain.SafeView, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.SetActive(ctx, nil, id, !account.IsActive); err != nil {
		return nil, err
	}
	account.IsActive = !account.IsActive
	view := account.Safe()
	return &view, nil
}

// ToggleLock flips the lock. Locking this way is permanent (no lockUntil);
// unlocking also clears the failed-attempt counter.
func (s *AccountService) ToggleLock(ctx context.Context, id string) (bool, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	newLocked := !account.AccountLocked
	if err := s.accounts.SetLockState(ctx, id, newLocked, nil); err != nil {
		return false, err
	}
	return newLocked, nil
}
