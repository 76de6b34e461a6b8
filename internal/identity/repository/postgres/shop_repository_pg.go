package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trustdelivery/backoffice/internal/identity/domain"
	"github.com/trustdelivery/backoffice/internal/identity/repository"
)

const shopColumns = `id, owner_id, name, phone_number, address, township, email, is_active, created_at, updated_at`

type pgShopRepository struct {
	db *pgxpool.Pool
}

// NewPgShopRepository returns a ShopRepository backed by PostgreSQL.
func NewPgShopRepository(db *pgxpool.Pool) repository.ShopRepository {
	return &pgShopRepository{db: db}
}

func (r *pgShopRepository) Create(ctx context.Context, shop *domain.OnlineShop) (*domain.OnlineShop, error) {
	shop.ID = uuid.NewString()
	now := time.Now()
	shop.CreatedAt = now
	shop.UpdatedAt = now

	query := `
		INSERT INTO online_shops (id, owner_id, name, phone_number, address, township, email,
		                          is_active, created_at, updated_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		shop.ID, shop.OwnerID, shop.Name, shop.PhoneNumber, shop.Address, shop.Township, shop.Email,
		shop.IsActive, shop.CreatedAt, shop.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return shop, nil
}

func (r *pgShopRepository) GetByID(ctx context.Context, id string) (*domain.OnlineShop, error) {
	shop := &domain.OnlineShop{}
	var ownerID *string
	err := r.db.QueryRow(ctx, "SELECT "+shopColumns+" FROM online_shops WHERE id = $1", id).Scan(
		&shop.ID, &ownerID, &shop.Name, &shop.PhoneNumber, &shop.Address, &shop.Township, &shop.Email,
		&shop.IsActive, &shop.CreatedAt, &shop.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrShopNotFound
		}
		return nil, err
	}
	if ownerID != nil {
		shop.OwnerID = *ownerID
	}
	return shop, nil
}

func (r *pgShopRepository) GetByOwnerID(ctx context.Context, ownerID string) (*domain.OnlineShop, error) {
	shop := &domain.OnlineShop{}
	var oid *string
	err := r.db.QueryRow(ctx, "SELECT "+shopColumns+" FROM online_shops WHERE owner_id = $1", ownerID).Scan(
		&shop.ID, &oid, &shop.Name, &shop.PhoneNumber, &shop.Address, &shop.Township, &shop.Email,
		&shop.IsActive, &shop.CreatedAt, &shop.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrShopNotFound
		}
		return nil, err
	}
	if oid != nil {
		shop.OwnerID = *oid
	}
	return shop, nil
}

func (r *pgShopRepository) List(ctx context.Context) ([]domain.OnlineShop, error) {
	rows, err := r.db.Query(ctx, "SELECT "+shopColumns+" FROM online_shops ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shops []domain.OnlineShop
	for rows.Next() {
		var s domain.OnlineShop
		var ownerID *string
		if err := rows.Scan(
			&s.ID, &ownerID, &s.Name, &s.PhoneNumber, &s.Address, &s.Township, &s.Email,
			&s.IsActive, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if ownerID != nil {
			s.OwnerID = *ownerID
		}
		shops = append(shops, s)
	}
	return shops, rows.Err()
}

func (r *pgShopRepository) Update(ctx context.Context, shop *domain.OnlineShop) error {
	shop.UpdatedAt = time.Now()
	query := `
		UPDATE online_shops SET
			name = $2, phone_number = $3, address = $4, township = $5, email = $6,
			is_active = $7, updated_at = $8
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query,
		shop.ID, shop.Name, shop.PhoneNumber, shop.Address, shop.Township, shop.Email,
		shop.IsActive, shop.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrShopNotFound
	}
	return nil
}
