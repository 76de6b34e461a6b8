package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trustdelivery/backoffice/internal/identity/domain"
	"github.com/trustdelivery/backoffice/internal/identity/repository"
)

const accountColumns = `id, username, email, hashed_password, role, is_active,
       failed_login_attempts, account_locked, lock_until, last_login_at, created_at, updated_at`

type pgAccountRepository struct {
	db *pgxpool.Pool
}

// NewPgAccountRepository returns an AccountRepository backed by PostgreSQL.
func NewPgAccountRepository(db *pgxpool.Pool) repository.AccountRepository {
	return &pgAccountRepository{db: db}
}

func (r *pgAccountRepository) Create(ctx context.Context, q repository.Querier, account *domain.Account) (*domain.Account, error) {
	if q == nil {
		q = r.db
	}
	account.ID = uuid.NewString()
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now

	query := `
		INSERT INTO accounts (id, username, email, hashed_password, role, is_active,
		                      failed_login_attempts, account_locked, lock_until, last_login_at,
		                      created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := q.Exec(ctx, query,
		account.ID, account.Username, account.Email, account.HashedPassword, account.Role, account.IsActive,
		account.FailedLoginAttempts, account.AccountLocked, account.LockUntil, account.LastLoginAt,
		account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		return nil, mapAccountConstraint(err)
	}
	return account, nil
}

func (r *pgAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.getOne(ctx, "SELECT "+accountColumns+" FROM accounts WHERE id = $1", id)
}

func (r *pgAccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.getOne(ctx, "SELECT "+accountColumns+" FROM accounts WHERE email = $1", email)
}

func (r *pgAccountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return r.getOne(ctx, "SELECT "+accountColumns+" FROM accounts WHERE username = $1", username)
}

func (r *pgAccountRepository) getOne(ctx context.Context, query string, arg any) (*domain.Account, error) {
	account := &domain.Account{}
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&account.ID, &account.Username, &account.Email, &account.HashedPassword, &account.Role, &account.IsActive,
		&account.FailedLoginAttempts, &account.AccountLocked, &account.LockUntil, &account.LastLoginAt,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

func (r *pgAccountRepository) List(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.db.Query(ctx, "SELECT "+accountColumns+" FROM accounts ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(
			&a.ID, &a.Username, &a.Email, &a.HashedPassword, &a.Role, &a.IsActive,
			&a.FailedLoginAttempts, &a.AccountLocked, &a.LockUntil, &a.LastLoginAt,
			&a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *pgAccountRepository) Update(ctx context.Context, q repository.Querier, account *domain.Account) error {
	if q == nil {
		q = r.db
	}
	account.UpdatedAt = time.Now()
	query := `
		UPDATE accounts SET
			username = $2, email = $3, role = $4, is_active = $5, updated_at = $6
		WHERE id = $1
	`
	tag, err := q.Exec(ctx, query,
		account.ID, account.Username, account.Email, account.Role, account.IsActive, account.UpdatedAt,
	)
	if err != nil {
		return mapAccountConstraint(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *pgAccountRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM accounts WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *pgAccountRepository) CountByRole(ctx context.Context, role domain.Role) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM accounts WHERE role = $1", role).Scan(&count)
	return count, err
}

// RecordFailedLogin is a single read-modify-write UPDATE so concurrent failed
// attempts against the same account cannot undercount. The counter resets to
// zero when the lock engages.
func (r *pgAccountRepository) RecordFailedLogin(ctx context.Context, id string, maxAttempts int, lockUntil time.Time) (*repository.LockoutResult, error) {
	query := `
		UPDATE accounts SET
			failed_login_attempts = CASE WHEN failed_login_attempts + 1 >= $2 THEN 0
			                             ELSE failed_login_attempts + 1 END,
			account_locked = account_locked OR failed_login_attempts + 1 >= $2,
			lock_until = CASE WHEN failed_login_attempts + 1 >= $2 THEN $3 ELSE lock_until END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING failed_login_attempts, account_locked, lock_until
	`
	res := &repository.LockoutResult{}
	err := r.db.QueryRow(ctx, query, id, maxAttempts, lockUntil).Scan(
		&res.FailedAttempts, &res.Locked, &res.LockUntil,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	if res.Locked {
		res.FailedAttempts = maxAttempts
	}
	return res, nil
}

func (r *pgAccountRepository) RecordSuccessfulLogin(ctx context.Context, id string, loginTime time.Time) error {
	query := `
		UPDATE accounts SET
			failed_login_attempts = 0, account_locked = FALSE, lock_until = NULL,
			last_login_at = $2, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, id, loginTime)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *pgAccountRepository) SetLockState(ctx context.Context, id string, locked bool, lockUntil *time.Time) error {
	query := `
		UPDATE accounts SET
			account_locked = $2, lock_until = $3, failed_login_attempts = 0, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, id, locked, lockUntil)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *pgAccountRepository) UpdatePassword(ctx context.Context, id string, hashedPassword string) error {
	query := `
		UPDATE accounts SET
			hashed_password = $2, failed_login_attempts = 0, account_locked = FALSE,
			lock_until = NULL, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, id, hashedPassword)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *pgAccountRepository) SetActive(ctx context.Context, q repository.Querier, id string, active bool) error {
	if q == nil {
		q = r.db
	}
	tag, err := q.Exec(ctx, "UPDATE accounts SET is_active = $2, updated_at = NOW() WHERE id = $1", id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// mapAccountConstraint converts unique-violation errors into field-level
// domain errors based on the constraint name.
func mapAccountConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch {
		case strings.Contains(pgErr.ConstraintName, "email"):
			return domain.ErrEmailExists
		case strings.Contains(pgErr.ConstraintName, "username"):
			return domain.ErrUsernameExists
		}
		return domain.ErrEmailExists
	}
	return err
}
