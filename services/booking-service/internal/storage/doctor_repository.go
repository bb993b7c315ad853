package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/mahfuz-anam/pawcare/libs/db"
	"github.com/mahfuz-anam/pawcare/services/booking-service/internal/model"
)

type DoctorRepository struct {
	pool *db.Pool
}

func NewDoctorRepository(pool *db.Pool) *DoctorRepository {
	return &DoctorRepository{pool: pool}
}

const doctorColumns = `
	id, name, email, specialty, fee_bdt, available_days,
	COALESCE(start_time, ''), COALESCE(end_time, ''), created_at`

func (r *DoctorRepository) List(ctx context.Context) ([]model.Doctor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+doctorColumns+`
		FROM doctors
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var doctors []model.Doctor
	for rows.Next() {
		doc, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		doctors = append(doctors, doc)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return doctors, nil
}

func (r *DoctorRepository) Get(ctx context.Context, id string) (model.Doctor, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+doctorColumns+`
		FROM doctors
		WHERE id = $1
	`, id)
	doc, err := scanDoctor(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Doctor{}, false, nil
		}
		return model.Doctor{}, false, err
	}
	return doc, true, nil
}

func (r *DoctorRepository) Create(ctx context.Context, doc model.Doctor) error {
	if doc.AvailableDays == nil {
		doc.AvailableDays = []string{}
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO doctors (id, name, email, specialty, fee_bdt, available_days, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, doc.ID, doc.Name, doc.Email, doc.Specialty, doc.FeeBDT, doc.AvailableDays, doc.StartTime, doc.EndTime)
	return err
}

func scanDoctor(row pgx.Row) (model.Doctor, error) {
	var doc model.Doctor
	err := row.Scan(
		&doc.ID,
		&doc.Name,
		&doc.Email,
		&doc.Specialty,
		&doc.FeeBDT,
		&doc.AvailableDays,
		&doc.StartTime,
		&doc.EndTime,
		&doc.CreatedAt,
	)
	if err != nil {
		return model.Doctor{}, err
	}
	return doc, nil
}
