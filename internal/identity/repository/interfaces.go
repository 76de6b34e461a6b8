package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/trustdelivery/backoffice/internal/identity/domain"
)

// Querier is the subset of pgx methods shared by *pgxpool.Pool and pgx.Tx,
// so repositories can run inside or outside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// LockoutResult reports the outcome of an atomic failed-login update.
type LockoutResult struct {
	FailedAttempts int
	Locked         bool
	LockUntil      *time.Time
}

// AccountRepository persists identity records.
type AccountRepository interface {
	Create(ctx context.Context, q Querier, account *domain.Account) (*domain.Account, error)
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
	Update(ctx context.Context, q Querier, account *domain.Account) error
	Delete(ctx context.Context, id string) error
	CountByRole(ctx context.Context, role domain.Role) (int, error)

	// RecordFailedLogin increments the failed-attempt counter in a single
	// UPDATE so concurrent attempts cannot undercount, locking the account
	// once the counter reaches maxAttempts.
	RecordFailedLogin(ctx context.Context, id string, maxAttempts int, lockUntil time.Time) (*LockoutResult, error)
	// RecordSuccessfulLogin clears the counter and lock state and stamps
	// last_login_at.
	RecordSuccessfulLogin(ctx context.Context, id string, loginTime time.Time) error
	// SetLockState applies an explicit admin lock or unlock. A nil lockUntil
	// with locked=true is a permanent lock.
	SetLockState(ctx context.Context, id string, locked bool, lockUntil *time.Time) error
	// UpdatePassword replaces the hash and resets the lock state, since a
	// password change is proof of ownership.
	UpdatePassword(ctx context.Context, id string, hashedPassword string) error
	// SetActive flips the active flag.
	SetActive(ctx context.Context, q Querier, id string, active bool) error
}

// RiderRepository persists rider profiles.
type RiderRepository interface {
	Create(ctx context.Context, q Querier, rider *domain.Rider) (*domain.Rider, error)
	GetByID(ctx context.Context, id string) (*domain.Rider, error)
	GetByAccountID(ctx context.Context, accountID string) (*domain.Rider, error)
	GetByPhone(ctx context.Context, phone string) (*domain.Rider, error)
	List(ctx context.Context) ([]domain.Rider, error)
	Update(ctx context.Context, q Querier, rider *domain.Rider) error
	SetStatus(ctx context.Context, q Querier, id string, status string) error
}

// ShopRepository persists online shop profiles.
type ShopRepository interface {
	Create(ctx context.Context, shop *domain.OnlineShop) (*domain.OnlineShop, error)
	GetByID(ctx context.Context, id string) (*domain.OnlineShop, error)
	GetByOwnerID(ctx context.Context, ownerID string) (*domain.OnlineShop, error)
	List(ctx context.Context) ([]domain.OnlineShop, error)
	Update(ctx context.Context, shop *domain.OnlineShop) error
}
