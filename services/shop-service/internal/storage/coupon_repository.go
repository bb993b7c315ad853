package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mahfuz-anam/pawcare/libs/db"
	"github.com/mahfuz-anam/pawcare/services/shop-service/internal/model"
)

type CouponRepository struct {
	pool *db.Pool
}

func NewCouponRepository(pool *db.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// Get looks up a coupon by code, case-insensitively.
func (r *CouponRepository) Get(ctx context.Context, code string) (model.Coupon, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT code, percent, active, COALESCE(expires_at, 'epoch'::timestamptz), created_at
		FROM coupons
		WHERE lower(code) = lower($1)
	`, strings.TrimSpace(code))

	var c model.Coupon
	var expiresAt time.Time
	err := row.Scan(&c.Code, &c.Percent, &c.Active, &expiresAt, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Coupon{}, false, nil
		}
		return model.Coupon{}, false, err
	}
	// epoch stands in for NULL; treat it as no expiry.
	if expiresAt.Unix() != 0 {
		c.ExpiresAt = expiresAt
	}
	return c, true, nil
}
