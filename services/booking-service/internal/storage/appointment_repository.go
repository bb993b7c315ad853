package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mahfuz-anam/pawcare/libs/db"
	"github.com/mahfuz-anam/pawcare/libs/payments"
	"github.com/mahfuz-anam/pawcare/services/booking-service/internal/model"
	"github.com/mahfuz-anam/pawcare/services/booking-service/internal/outbox"
)

const appointmentColumns = `
	appointment_id, doctor_id, doctor_email, doctor_name, user_id, user_email,
	appointment_date, appointment_time, status, fee_bdt, fee_usd_cents,
	payment_intent_id, COALESCE(meet_link, ''), created_at`

type AppointmentRepository struct {
	pool *db.Pool
}

func NewAppointmentRepository(pool *db.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

func (r *AppointmentRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// FindByPaymentIntent looks up the appointment keyed by the gateway payment
// reference. The payment_intent_id column carries a unique index; it is the
// idempotency authority for appointment creation.
func (r *AppointmentRepository) FindByPaymentIntent(ctx context.Context, ref string) (model.Appointment, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE payment_intent_id = $1
	`, ref)
	appt, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Appointment{}, false, nil
		}
		return model.Appointment{}, false, err
	}
	return appt, true, nil
}

// InsertWithEvent writes the appointment and its confirmation event in one
// transaction. A unique violation on payment_intent_id is reported as
// payments.ErrDuplicateKey so the finalizer can degrade to a duplicate read.
func (r *AppointmentRepository) InsertWithEvent(ctx context.Context, outboxRepo *outbox.Repository, appt model.Appointment, evt outbox.Event) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO appointments
			(appointment_id, doctor_id, doctor_email, doctor_name, user_id, user_email,
			 appointment_date, appointment_time, status, fee_bdt, fee_usd_cents,
			 payment_intent_id, meet_link)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, appt.AppointmentID, appt.DoctorID, appt.DoctorEmail, appt.DoctorName, appt.UserID, appt.UserEmail,
		appt.Date, appt.Time, appt.Status, appt.FeeBDT, appt.FeeUSDCents,
		appt.PaymentIntentID, appt.MeetLink)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("insert appointment: %w", payments.ErrDuplicateKey)
		}
		return err
	}

	if err := outboxRepo.Insert(ctx, tx, evt); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ListActiveForDoctorDate returns non-cancelled appointments for the exact
// (doctor, date) pair. The date is compared as an opaque string.
func (r *AppointmentRepository) ListActiveForDoctorDate(ctx context.Context, doctorID, date string) ([]model.Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE doctor_id = $1
			AND appointment_date = $2
			AND status <> 'cancelled'
		ORDER BY created_at ASC
	`, doctorID, date)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *AppointmentRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.Appointment, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *AppointmentRepository) ListByDoctorEmail(ctx context.Context, email string, limit int) ([]model.Appointment, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE doctor_email = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, email, limit)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

// GetForDoctorUpdate locks the appointment row for a status transition.
func (r *AppointmentRepository) GetForDoctorUpdate(ctx context.Context, tx pgx.Tx, appointmentID, doctorEmail string) (model.Appointment, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE appointment_id = $1 AND doctor_email = $2
		FOR UPDATE
	`, appointmentID, doctorEmail)
	return scanAppointment(row)
}

func (r *AppointmentRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, appointmentID, status string) error {
	_, err := tx.Exec(ctx, `
		UPDATE appointments
		SET status = $2
		WHERE appointment_id = $1
	`, appointmentID, status)
	return err
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func scanAppointment(row pgx.Row) (model.Appointment, error) {
	var appt model.Appointment
	err := row.Scan(
		&appt.AppointmentID,
		&appt.DoctorID,
		&appt.DoctorEmail,
		&appt.DoctorName,
		&appt.UserID,
		&appt.UserEmail,
		&appt.Date,
		&appt.Time,
		&appt.Status,
		&appt.FeeBDT,
		&appt.FeeUSDCents,
		&appt.PaymentIntentID,
		&appt.MeetLink,
		&appt.CreatedAt,
	)
	if err != nil {
		return model.Appointment{}, err
	}
	return appt, nil
}

func collectAppointments(rows pgx.Rows) ([]model.Appointment, error) {
	defer rows.Close()
	var appts []model.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, appt)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return appts, nil
}
