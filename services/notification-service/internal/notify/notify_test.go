package notify

import (
	"strings"
	"testing"
)

func TestComposeAppointmentConfirmed(t *testing.T) {
	payload := `{"appointment_id":"APT-1","doctor_name":"Dr. Rahman","user_email":"owner@example.com","date":"2026-09-07","time":"2:00 PM","meet_link":"https://meet.pawcare.app/abc"}`
	msg, err := Compose(TopicAppointmentConfirmed, []byte(payload))
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	if msg.Recipient != "owner@example.com" {
		t.Fatalf("recipient = %q", msg.Recipient)
	}
	if msg.ReferenceID != "APT-1" {
		t.Fatalf("reference = %q", msg.ReferenceID)
	}
	if !strings.Contains(msg.Body, "Dr. Rahman") || !strings.Contains(msg.Body, "https://meet.pawcare.app/abc") {
		t.Fatalf("body missing details: %q", msg.Body)
	}
}

func TestComposeOrderConfirmed(t *testing.T) {
	payload := `{"order_id":"ORD-1","user_email":"owner@example.com","total_bdt":1170,"items":2}`
	msg, err := Compose(TopicOrderConfirmed, []byte(payload))
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	if msg.Subject != "Order confirmed" {
		t.Fatalf("subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.Body, "ORD-1") || !strings.Contains(msg.Body, "1170") {
		t.Fatalf("body missing details: %q", msg.Body)
	}
}

func TestComposeRejectsMissingRecipient(t *testing.T) {
	if _, err := Compose(TopicAppointmentCancelled, []byte(`{"appointment_id":"APT-2"}`)); err == nil {
		t.Fatal("expected error for payload without recipient")
	}
}

func TestComposeRejectsUnknownTopic(t *testing.T) {
	if _, err := Compose("billing.invoice.created.v1", []byte(`{}`)); err == nil {
		t.Fatal("expected error for unknown topic")
	}
}
