package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mahfuz-anam/pawcare/libs/db"
	"github.com/mahfuz-anam/pawcare/libs/payments"
	"github.com/mahfuz-anam/pawcare/services/shop-service/internal/model"
	"github.com/mahfuz-anam/pawcare/services/shop-service/internal/outbox"
)

const orderColumns = `
	order_id, user_id, user_email, items, subtotal_bdt, discount_bdt,
	shipping_bdt, tax_bdt, total_bdt, total_usd_cents,
	COALESCE(coupon_code, ''), status, transaction_id, created_at`

type OrderRepository struct {
	pool *db.Pool
}

func NewOrderRepository(pool *db.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// FindByTransaction looks up the order created for a payment reference.
// transaction_id carries the unique index that makes checkout idempotent.
func (r *OrderRepository) FindByTransaction(ctx context.Context, ref string) (model.Order, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE transaction_id = $1
	`, ref)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Order{}, false, nil
		}
		return model.Order{}, false, err
	}
	return order, true, nil
}

// InsertWithEvent writes the order and its confirmation event in one
// transaction. A unique violation on transaction_id becomes
// payments.ErrDuplicateKey.
func (r *OrderRepository) InsertWithEvent(ctx context.Context, outboxRepo *outbox.Repository, order model.Order, evt outbox.Event) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders
			(order_id, user_id, user_email, items, subtotal_bdt, discount_bdt,
			 shipping_bdt, tax_bdt, total_bdt, total_usd_cents,
			 coupon_code, status, transaction_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, order.OrderID, order.UserID, order.UserEmail, items, order.SubtotalBDT, order.DiscountBDT,
		order.ShippingBDT, order.TaxBDT, order.TotalBDT, order.TotalUSDCents,
		order.CouponCode, order.Status, order.TransactionID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("insert order: %w", payments.ErrDuplicateKey)
		}
		return err
	}

	if err := outboxRepo.Insert(ctx, tx, evt); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.Order, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return orders, nil
}

// UpdateStatus advances an order through the fulfilment states. Returns
// false when the order does not exist.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID, status string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE orders
		SET status = $2
		WHERE order_id = $1
	`, orderID, status)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanOrder(row pgx.Row) (model.Order, error) {
	var order model.Order
	var items []byte
	err := row.Scan(
		&order.OrderID,
		&order.UserID,
		&order.UserEmail,
		&items,
		&order.SubtotalBDT,
		&order.DiscountBDT,
		&order.ShippingBDT,
		&order.TaxBDT,
		&order.TotalBDT,
		&order.TotalUSDCents,
		&order.CouponCode,
		&order.Status,
		&order.TransactionID,
		&order.CreatedAt,
	)
	if err != nil {
		return model.Order{}, err
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &order.Items); err != nil {
			return model.Order{}, err
		}
	}
	return order, nil
}
