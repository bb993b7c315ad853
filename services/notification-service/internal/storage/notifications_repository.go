package storage

import (
	"context"

	"github.com/mahfuz-anam/pawcare/libs/db"
)

// Notification is a record of one send attempt. ReferenceID is the
// appointment or order the email was about.
type Notification struct {
	ReferenceID string
	EventType   string
	Recipient   string
	Subject     string
	Status      string
}

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Insert(ctx context.Context, n Notification) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications (reference_id, event_type, recipient, subject, status)
		VALUES ($1, $2, $3, $4, $5)
	`, n.ReferenceID, n.EventType, n.Recipient, n.Subject, n.Status)
	return err
}
