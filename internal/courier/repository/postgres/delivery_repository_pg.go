package postgres

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trustdelivery/backoffice/internal/courier/domain"
	"github.com/trustdelivery/backoffice/internal/courier/repository"
)

const deliveryColumns = `id, customer_id, rider_id, shop_id, pickup_address, delivery_address,
       status, payment_status, payment_method, price, notes, scheduled_time, completed_time,
       created_at, updated_at`

type pgDeliveryRepository struct {
	db *pgxpool.Pool
}

// NewPgDeliveryRepository returns a DeliveryRepository backed by PostgreSQL.
func NewPgDeliveryRepository(db *pgxpool.Pool) repository.DeliveryRepository {
	return &pgDeliveryRepository{db: db}
}

func (r *pgDeliveryRepository) Create(ctx context.Context, delivery *domain.Delivery) (*domain.Delivery, error) {
	delivery.ID = uuid.NewString()
	now := time.Now()
	delivery.CreatedAt = now
	delivery.UpdatedAt = now

	query := `
		INSERT INTO deliveries (id, customer_id, rider_id, shop_id, pickup_address, delivery_address,
		                        status, payment_status, payment_method, price, notes, scheduled_time,
		                        completed_time, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.db.Exec(ctx, query,
		delivery.ID, delivery.CustomerID, delivery.RiderID, delivery.ShopID,
		delivery.PickupAddress, delivery.DeliveryAddress,
		delivery.Status, delivery.PaymentStatus, delivery.PaymentMethod, delivery.Price, delivery.Notes,
		delivery.ScheduledTime, delivery.CompletedTime, delivery.CreatedAt, delivery.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return delivery, nil
}

func scanDelivery(row pgx.Row) (*domain.Delivery, error) {
	d := &domain.Delivery{}
	var riderID, shopID, paymentMethod, notes *string
	err := row.Scan(
		&d.ID, &d.CustomerID, &riderID, &shopID, &d.PickupAddress, &d.DeliveryAddress,
		&d.Status, &d.PaymentStatus, &paymentMethod, &d.Price, &notes, &d.ScheduledTime, &d.CompletedTime,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if riderID != nil {
		d.RiderID = *riderID
	}
	if shopID != nil {
		d.ShopID = *shopID
	}
	if paymentMethod != nil {
		d.PaymentMethod = *paymentMethod
	}
	if notes != nil {
		d.Notes = *notes
	}
	return d, nil
}

func (r *pgDeliveryRepository) GetByID(ctx context.Context, id string) (*domain.Delivery, error) {
	d, err := scanDelivery(r.db.QueryRow(ctx, "SELECT "+deliveryColumns+" FROM deliveries WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDeliveryNotFound
		}
		return nil, err
	}
	return d, nil
}

func (r *pgDeliveryRepository) List(ctx context.Context, filter repository.ListFilter) ([]domain.Delivery, error) {
	query := "SELECT " + deliveryColumns + " FROM deliveries WHERE 1=1"
	args := []any{}
	if filter.CustomerID != "" {
		args = append(args, filter.CustomerID)
		query += " AND customer_id = $" + strconv.Itoa(len(args))
	}
	if filter.RiderID != "" {
		args = append(args, filter.RiderID)
		query += " AND rider_id = $" + strconv.Itoa(len(args))
	}
	if filter.ShopID != "" {
		args = append(args, filter.ShopID)
		query += " AND shop_id = $" + strconv.Itoa(len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deliveries []domain.Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		deliveries = append(deliveries, *d)
	}
	return deliveries, rows.Err()
}

func (r *pgDeliveryRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM deliveries WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDeliveryNotFound
	}
	return nil
}

func (r *pgDeliveryRepository) UpdateStatus(ctx context.Context, id string, from, to domain.Status, completedTime *time.Time) (bool, error) {
	query := `
		UPDATE deliveries SET
			status = $3,
			completed_time = COALESCE($4, completed_time),
			updated_at = NOW()
		WHERE id = $1 AND status = $2
	`
	tag, err := r.db.Exec(ctx, query, id, from, to, completedTime)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *pgDeliveryRepository) UpdatePayment(ctx context.Context, id string, status domain.PaymentStatus, method string) error {
	query := `
		UPDATE deliveries SET
			payment_status = $2,
			payment_method = COALESCE(NULLIF($3, ''), payment_method),
			updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, id, status, method)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDeliveryNotFound
	}
	return nil
}

func (r *pgDeliveryRepository) AssignRider(ctx context.Context, id string, riderID string) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE deliveries
		 SET rider_id = $2, status = $3, updated_at = NOW()
		 WHERE id = $1 AND status = $4`,
		id, riderID, domain.StatusAssigned, domain.StatusPending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

