package app

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/trustdelivery/backoffice/internal/identity/domain"
	"github.com/trustdelivery/backoffice/internal/identity/repository"
)

// bcryptCost matches the cost the original account base was hashed with.
const bcryptCost = 12

// HashPassword hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPasswordHash verifies a plaintext password against a stored hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// EventPublisher is the sliver of the message broker the auth service needs.
// A nil publisher disables events.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// AuthConfig carries the lockout policy.
type AuthConfig struct {
	MaxFailedLogins int
	LockoutDuration time.Duration
}

// LoginResult is a successful authentication: a session token plus the safe
// account view. The password hash never appears here by construction.
type LoginResult struct {
	Token   string
	Account domain.SafeView
}

// AuthService is the login guard: credential checks, failed-attempt counting,
// account locking, and registration. Every branch that touches lock state
// persists immediately so lockout survives a process crash.
type AuthService struct {
	accounts  repository.AccountRepository
	tokens    *TokenService
	publisher EventPublisher
	cfg       AuthConfig
	logger    *slog.Logger
	now       func() time.Time
}

// NewAuthService creates an AuthService. publisher may be nil.
func NewAuthService(
	accounts repository.AccountRepository,
	tokens *TokenService,
	publisher EventPublisher,
	cfg AuthConfig,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		accounts:  accounts,
		tokens:    tokens,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// Login authenticates an email/password pair. Unknown email and wrong
// password produce indistinguishable failures; a lockout engages after the
// configured number of consecutive failures and clears on success.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, domain.ErrMissingCredentials
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		s.logger.ErrorContext(ctx, "failed to fetch account for login", "error", err)
		return nil, err
	}

	now := s.now()
	if account.LockedNow(now) {
		s.logger.WarnContext(ctx, "login attempt on locked account", "accountID", account.ID, "lockUntil", account.LockUntil)
		return nil, &domain.LockedError{Until: account.LockUntil}
	}

	if !CheckPasswordHash(password, account.HashedPassword) {
		lockUntil := now.Add(s.cfg.LockoutDuration)
		res, err := s.accounts.RecordFailedLogin(ctx, account.ID, s.cfg.MaxFailedLogins, lockUntil)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to record failed login", "error", err, "accountID", account.ID)
			return nil, err
		}
		remaining := s.cfg.MaxFailedLogins - res.FailedAttempts
		if remaining < 0 {
			remaining = 0
		}
		if res.Locked {
			s.logger.WarnContext(ctx, "account locked after repeated failures", "accountID", account.ID, "lockUntil", res.LockUntil)
		}
		return nil, &domain.FailedLoginError{AttemptsRemaining: remaining}
	}

	// Checked after the password so inactive accounts are not enumerable
	// with guessed passwords.
	if !account.IsActive {
		return nil, domain.ErrAccountInactive
	}

	if err := s.accounts.RecordSuccessfulLogin(ctx, account.ID, now); err != nil {
		s.logger.ErrorContext(ctx, "failed to record successful login", "error", err, "accountID", account.ID)
		return nil, err
	}
	account.FailedLoginAttempts = 0
	account.AccountLocked = false
	account.LockUntil = nil
	account.LastLoginAt = &now

	token, err := s.tokens.Issue(account)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to sign session token", "error", err, "accountID", account.ID)
		return nil, errors.New("token generation error")
	}

	return &LoginResult{Token: token, Account: account.Safe()}, nil
}

// Register creates a new account and logs it in. The requested role defaults
// to customer; administrator-tier roles cannot be self-assigned.
func (s *AuthService) Register(ctx context.Context, username, email, password, roleStr string) (*LoginResult, error) {
	role := domain.RoleCustomer
	if roleStr != "" {
		parsed, err := domain.ParseRole(roleStr)
		if err != nil {
			return nil, err
		}
		if parsed.IsPrivileged() {
			return nil, domain.ErrRoleNotAllowed
		}
		role = parsed
	}

	if existing, err := s.accounts.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, domain.ErrEmailExists
	} else if err != nil && !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}
	if existing, err := s.accounts.GetByUsername(ctx, username); err == nil && existing != nil {
		return nil, domain.ErrUsernameExists
	} else if err != nil && !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}

	hashed, err := HashPassword(password)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to hash password", "error", err)
		return nil, errors.New("failed to process registration")
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

	s.publishEvent(ctx, "account.registered", map[string]string{
		"account_id": account.ID,
		"username":   account.Username,
		"email":      account.Email,
		"role":       string(account.Role),
	})

	token, err := s.tokens.Issue(account)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to sign session token", "error", err, "accountID", account.ID)
		return nil, errors.New("token generation error")
	}
	return &LoginResult{Token: token, Account: account.Safe()}, nil
}

// UserStatus is the public pre-login lookup used by the mobile client to tell
// a deactivated account from a bad password.
func (s *AuthService) UserStatus(ctx context.Context, email string) (*domain.SafeView, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	view := account.Safe()
	return &view, nil
}

// ActivateAccount re-enables a deactivated account by email.
func (s *AuthService) ActivateAccount(ctx context.Context, email string) (*domain.SafeView, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.SetActive(ctx, nil, account.ID, true); err != nil {
		return nil, err
	}
	account.IsActive = true
	view := account.Safe()
	return &view, nil
}

// ChangePassword verifies the current password, stores a new hash, and clears
// any lock state, since a successful change is proof of ownership.
func (s *AuthService) ChangePassword(ctx context.Context, accountID, currentPassword, newPassword string) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if !CheckPasswordHash(currentPassword, account.HashedPassword) {
		return domain.ErrWrongPassword
	}
	hashed, err := HashPassword(newPassword)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to hash new password", "error", err, "accountID", accountID)
		return errors.New("failed to process password change")
	}
	return s.accounts.UpdatePassword(ctx, accountID, hashed)
}

func (s *AuthService) publishEvent(ctx context.Context, subject string, payload map[string]string) {
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
