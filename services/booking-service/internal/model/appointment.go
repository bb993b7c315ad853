package model

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"
)

const (
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Appointment is created only by the payment-confirmation step; booking
// intents never write rows. Fees are snapshotted in both currencies at
// booking time and never recomputed.
type Appointment struct {
	AppointmentID   string
	DoctorID        string
	DoctorEmail     string
	DoctorName      string
	UserID          string
	UserEmail       string
	Date            string // opaque display/equality key, never parsed for conflicts
	Time            string // 12-hour display form
	Status          string
	FeeBDT          int64
	FeeUSDCents     int64
	PaymentIntentID string // unique; the idempotency key
	MeetLink        string
	CreatedAt       time.Time
}

// NewAppointmentID builds a human-readable id: timestamp plus random suffix.
func NewAppointmentID(now time.Time) string {
	var b [4]byte
	_, _ = rand.Read(b[:])
	return "APT-" + now.UTC().Format("20060102150405") + "-" + strings.ToUpper(hex.EncodeToString(b[:]))
}

// BookingIntent is the typed snapshot serialized into the payment intent's
// metadata at creation and decoded exactly once at confirmation.
type BookingIntent struct {
	DoctorID    string `json:"doctor_id"`
	DoctorName  string `json:"doctor_name"`
	DoctorEmail string `json:"doctor_email"`
	UserID      string `json:"user_id"`
	UserEmail   string `json:"user_email"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	FeeBDT      int64  `json:"fee_bdt"`
}
