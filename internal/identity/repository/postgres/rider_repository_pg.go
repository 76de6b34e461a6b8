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

type pgRiderRepository struct {
	db *pgxpool.Pool
}

// NewPgRiderRepository returns a RiderRepository backed by PostgreSQL.
func NewPgRiderRepository(db *pgxpool.Pool) repository.RiderRepository {
	return &pgRiderRepository{db: db}
}

func (r *pgRiderRepository) Create(ctx context.Context, q repository.Querier, rider *domain.Rider) (*domain.Rider, error) {
	if q == nil {
		q = r.db
	}
	rider.ID = uuid.NewString()
	now := time.Now()
	rider.CreatedAt = now
	rider.UpdatedAt = now
	if rider.JoinedDate.IsZero() {
		rider.JoinedDate = now
	}

	query := `
		INSERT INTO riders (id, account_id, name, phone_number, township, full_address, nrc,
		                    joined_date, emergency_contact, vehicle_type, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := q.Exec(ctx, query,
		rider.ID, rider.AccountID, rider.Name, rider.PhoneNumber, rider.Township, rider.FullAddress, rider.NRC,
		rider.JoinedDate, rider.EmergencyContact, rider.VehicleType, rider.Status, rider.CreatedAt, rider.UpdatedAt,
	)
	if err != nil {
		return nil, mapRiderConstraint(err)
	}
	return rider, nil
}

// riderJoinQuery pulls the rider together with the safe fields of the linked
// account in one round trip.
const riderJoinQuery = `
	SELECT r.id, r.account_id, r.name, r.phone_number, r.township, r.full_address, r.nrc,
	       r.joined_date, r.emergency_contact, r.vehicle_type, r.status, r.created_at, r.updated_at,
	       a.username, a.email, a.role, a.is_active, a.last_login_at, a.created_at
	FROM riders r
	JOIN accounts a ON a.id = r.account_id
`

func scanRiderRow(row pgx.Row) (*domain.Rider, error) {
	rider := &domain.Rider{Account: &domain.SafeView{}}
	err := row.Scan(
		&rider.ID, &rider.AccountID, &rider.Name, &rider.PhoneNumber, &rider.Township, &rider.FullAddress, &rider.NRC,
		&rider.JoinedDate, &rider.EmergencyContact, &rider.VehicleType, &rider.Status, &rider.CreatedAt, &rider.UpdatedAt,
		&rider.Account.Username, &rider.Account.Email, &rider.Account.Role, &rider.Account.IsActive,
		&rider.Account.LastLoginAt, &rider.Account.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	rider.Account.ID = rider.AccountID
	return rider, nil
}

func (r *pgRiderRepository) GetByID(ctx context.Context, id string) (*domain.Rider, error) {
	rider, err := scanRiderRow(r.db.QueryRow(ctx, riderJoinQuery+" WHERE r.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRiderNotFound
		}
		return nil, err
	}
	return rider, nil
}

func (r *pgRiderRepository) GetByAccountID(ctx context.Context, accountID string) (*domain.Rider, error) {
	rider, err := scanRiderRow(r.db.QueryRow(ctx, riderJoinQuery+" WHERE r.account_id = $1", accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRiderNotFound
		}
		return nil, err
	}
	return rider, nil
}

func (r *pgRiderRepository) GetByPhone(ctx context.Context, phone string) (*domain.Rider, error) {
	rider, err := scanRiderRow(r.db.QueryRow(ctx, riderJoinQuery+" WHERE r.phone_number = $1", phone))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRiderNotFound
		}
		return nil, err
	}
	return rider, nil
}

func (r *pgRiderRepository) List(ctx context.Context) ([]domain.Rider, error) {
	rows, err := r.db.Query(ctx, riderJoinQuery+" ORDER BY r.created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var riders []domain.Rider
	for rows.Next() {
		rider, err := scanRiderRow(rows)
		if err != nil {
			return nil, err
		}
		riders = append(riders, *rider)
	}
	return riders, rows.Err()
}

func (r *pgRiderRepository) Update(ctx context.Context, q repository.Querier, rider *domain.Rider) error {
	if q == nil {
		q = r.db
	}
	rider.UpdatedAt = time.Now()
	query := `
		UPDATE riders SET
			name = $2, phone_number = $3, township = $4, full_address = $5, nrc = $6,
			emergency_contact = $7, vehicle_type = $8, updated_at = $9
		WHERE id = $1
	`
	tag, err := q.Exec(ctx, query,
		rider.ID, rider.Name, rider.PhoneNumber, rider.Township, rider.FullAddress, rider.NRC,
		rider.EmergencyContact, rider.VehicleType, rider.UpdatedAt,
	)
	if err != nil {
		return mapRiderConstraint(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRiderNotFound
	}
	return nil
}

func (r *pgRiderRepository) SetStatus(ctx context.Context, q repository.Querier, id string, status string) error {
	if q == nil {
		q = r.db
	}
	tag, err := q.Exec(ctx, "UPDATE riders SET status = $2, updated_at = NOW() WHERE id = $1", id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRiderNotFound
	}
	return nil
}

func mapRiderConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if strings.Contains(pgErr.ConstraintName, "phone") {
			return domain.ErrPhoneExists
		}
		return domain.ErrPhoneExists
	}
	return err
}
