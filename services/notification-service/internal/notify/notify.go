// Package notify composes customer-facing emails from the domain events the
// other services publish.
package notify

import (
	"encoding/json"
	"fmt"
)

const (
	TopicAppointmentConfirmed = "booking.appointment.confirmed.v1"
	TopicAppointmentCancelled = "booking.appointment.cancelled.v1"
	TopicOrderConfirmed       = "shop.order.confirmed.v1"
)

// Message is a composed email plus the fields the notifications log needs.
type Message struct {
	ReferenceID string
	Recipient   string
	Subject     string
	Body        string
}

type appointmentPayload struct {
	AppointmentID string `json:"appointment_id"`
	DoctorName    string `json:"doctor_name"`
	UserEmail     string `json:"user_email"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	MeetLink      string `json:"meet_link"`
}

type orderPayload struct {
	OrderID   string `json:"order_id"`
	UserEmail string `json:"user_email"`
	TotalBDT  int64  `json:"total_bdt"`
	Items     int    `json:"items"`
}

// Compose builds the email for one event. Unknown topics and payloads
// missing a recipient are reported as errors; the caller drops those events
// rather than retrying them.
func Compose(topic string, payload []byte) (Message, error) {
	switch topic {
	case TopicAppointmentConfirmed:
		var p appointmentPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return Message{}, fmt.Errorf("decode appointment payload: %w", err)
		}
		if p.UserEmail == "" {
			return Message{}, fmt.Errorf("appointment payload has no recipient")
		}
		body := fmt.Sprintf(
			"Your appointment with %s on %s at %s is confirmed.\r\nJoin link: %s\r\n",
			p.DoctorName, p.Date, p.Time, p.MeetLink,
		)
		return Message{
			ReferenceID: p.AppointmentID,
			Recipient:   p.UserEmail,
			Subject:     "Appointment confirmed",
			Body:        body,
		}, nil

	case TopicAppointmentCancelled:
		var p appointmentPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return Message{}, fmt.Errorf("decode appointment payload: %w", err)
		}
		if p.UserEmail == "" {
			return Message{}, fmt.Errorf("appointment payload has no recipient")
		}
		body := fmt.Sprintf(
			"Your appointment with %s on %s at %s has been cancelled.\r\nThe slot is available for rebooking.\r\n",
			p.DoctorName, p.Date, p.Time,
		)
		return Message{
			ReferenceID: p.AppointmentID,
			Recipient:   p.UserEmail,
			Subject:     "Appointment cancelled",
			Body:        body,
		}, nil

	case TopicOrderConfirmed:
		var p orderPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return Message{}, fmt.Errorf("decode order payload: %w", err)
		}
		if p.UserEmail == "" {
			return Message{}, fmt.Errorf("order payload has no recipient")
		}
		body := fmt.Sprintf(
			"Your order %s (%d items, %d BDT) is confirmed and being processed.\r\n",
			p.OrderID, p.Items, p.TotalBDT,
		)
		return Message{
			ReferenceID: p.OrderID,
			Recipient:   p.UserEmail,
			Subject:     "Order confirmed",
			Body:        body,
		}, nil
	}
	return Message{}, fmt.Errorf("unknown topic %q", topic)
}
