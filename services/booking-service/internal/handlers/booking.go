package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mahfuz-anam/pawcare/libs/currency"
	"github.com/mahfuz-anam/pawcare/libs/httpx"
	"github.com/mahfuz-anam/pawcare/libs/payments"
	"github.com/mahfuz-anam/pawcare/services/booking-service/internal/meet"
	"github.com/mahfuz-anam/pawcare/services/booking-service/internal/model"
	"github.com/mahfuz-anam/pawcare/services/booking-service/internal/outbox"
	"github.com/mahfuz-anam/pawcare/services/booking-service/internal/schedule"
	"github.com/mahfuz-anam/pawcare/services/booking-service/internal/storage"
)

// metadataKind tags payment intents so the confirm endpoint refuses intents
// created by the shop checkout flow, and vice versa.
const metadataKind = "appointment"

type BookingHandler struct {
	doctors     *storage.DoctorRepository
	appts       *storage.AppointmentRepository
	outboxRepo  *outbox.Repository
	gateway     payments.Gateway
	finalizer   *payments.Finalizer[model.Appointment]
	logger      *slog.Logger
	meetBaseURL string
}

func NewBookingHandler(doctors *storage.DoctorRepository, appts *storage.AppointmentRepository, outboxRepo *outbox.Repository, gateway payments.Gateway, guard *payments.Reservations, logger *slog.Logger, meetBaseURL string) *BookingHandler {
	h := &BookingHandler{
		doctors:     doctors,
		appts:       appts,
		outboxRepo:  outboxRepo,
		gateway:     gateway,
		logger:      logger,
		meetBaseURL: meetBaseURL,
	}
	h.finalizer = payments.NewFinalizer[model.Appointment](gateway, guard, &appointmentStore{handler: h}, logger)
	return h
}

type doctorItem struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Specialty     string   `json:"specialty"`
	FeeBDT        int64    `json:"fee_bdt"`
	AvailableDays []string `json:"available_days"`
	StartTime     string   `json:"start_time,omitempty"`
	EndTime       string   `json:"end_time,omitempty"`
}

type createDoctorRequest struct {
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	Specialty     string   `json:"specialty"`
	FeeBDT        int64    `json:"fee_bdt"`
	AvailableDays []string `json:"available_days"`
	StartTime     string   `json:"start_time"`
	EndTime       string   `json:"end_time"`
}

type bookingIntentRequest struct {
	DoctorID string `json:"doctor_id"`
	Date     string `json:"date"`
	Time     string `json:"time"`
}

type bookingIntentResponse struct {
	PaymentIntentID string `json:"payment_intent_id"`
	ClientSecret    string `json:"client_secret"`
	AmountUSDCents  int64  `json:"amount_usd_cents"`
	FeeBDT          int64  `json:"fee_bdt"`
}

type confirmRequest struct {
	PaymentIntentID string `json:"payment_intent_id"`
}

type appointmentItem struct {
	AppointmentID string `json:"appointment_id"`
	DoctorName    string `json:"doctor_name"`
	DoctorEmail   string `json:"doctor_email"`
	UserEmail     string `json:"user_email"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Status        string `json:"status"`
	FeeBDT        int64  `json:"fee_bdt"`
	MeetLink      string `json:"meet_link,omitempty"`
	Duplicate     bool   `json:"duplicate,omitempty"`
}

type statusRequest struct {
	AppointmentID string `json:"appointment_id"`
	Status        string `json:"status"`
}

// Doctors serves the public directory.
func (h *BookingHandler) Doctors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	doctors, err := h.doctors.List(r.Context())
	if err != nil {
		h.logger.Error("list doctors failed", "err", err)
		http.Error(w, "failed to list doctors", http.StatusInternalServerError)
		return
	}

	items := make([]doctorItem, 0, len(doctors))
	for _, doc := range doctors {
		items = append(items, doctorItem{
			ID:            doc.ID,
			Name:          doc.Name,
			Specialty:     doc.Specialty,
			FeeBDT:        doc.FeeBDT,
			AvailableDays: doc.AvailableDays,
			StartTime:     doc.StartTime,
			EndTime:       doc.EndTime,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"doctors": items})
}

// CreateDoctor registers a doctor profile. Admin only; the gateway enforces
// the role, this is the backstop.
func (h *BookingHandler) CreateDoctor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, ok := httpx.IdentityFromRequest(r)
	if !ok || id.Role != httpx.RoleAdmin {
		http.Error(w, "admin role required", http.StatusForbidden)
		return
	}

	var req createDoctorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.FeeBDT <= 0 {
		http.Error(w, "name, email and positive fee_bdt are required", http.StatusBadRequest)
		return
	}
	for _, day := range req.AvailableDays {
		if _, err := schedule.ParseWeekdayName(day); err != nil {
			http.Error(w, "invalid weekday: "+day, http.StatusBadRequest)
			return
		}
	}
	if req.StartTime != "" {
		if _, err := schedule.ParseClock(req.StartTime); err != nil {
			http.Error(w, "invalid start_time", http.StatusBadRequest)
			return
		}
	}
	if req.EndTime != "" {
		if _, err := schedule.ParseClock(req.EndTime); err != nil {
			http.Error(w, "invalid end_time", http.StatusBadRequest)
			return
		}
	}

	doc := model.Doctor{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Email:         req.Email,
		Specialty:     strings.TrimSpace(req.Specialty),
		FeeBDT:        req.FeeBDT,
		AvailableDays: req.AvailableDays,
		StartTime:     strings.TrimSpace(req.StartTime),
		EndTime:       strings.TrimSpace(req.EndTime),
	}
	if err := h.doctors.Create(r.Context(), doc); err != nil {
		h.logger.Error("create doctor failed", "err", err)
		http.Error(w, "failed to create doctor", http.StatusInternalServerError)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]string{"id": doc.ID})
}

// Intent validates the requested slot and creates the payment intent. No
// appointment row exists until the payment is confirmed.
func (h *BookingHandler) Intent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, ok := httpx.IdentityFromRequest(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req bookingIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.DoctorID = strings.TrimSpace(req.DoctorID)
	req.Date = strings.TrimSpace(req.Date)
	req.Time = strings.TrimSpace(req.Time)
	if req.DoctorID == "" || req.Date == "" || req.Time == "" {
		http.Error(w, "doctor_id, date and time are required", http.StatusBadRequest)
		return
	}

	requestedMinutes, err := schedule.ParseClock(req.Time)
	if err != nil {
		http.Error(w, "invalid time: expected h:mm AM/PM", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	doc, found, err := h.doctors.Get(ctx, req.DoctorID)
	if err != nil {
		h.logger.Error("load doctor failed", "err", err)
		http.Error(w, "failed to load doctor", http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "doctor not found", http.StatusNotFound)
		return
	}

	sched := schedule.DoctorSchedule{Days: doc.AvailableDays, StartTime: doc.StartTime, EndTime: doc.EndTime}
	if err := schedule.ValidateAvailability(sched, req.Date, requestedMinutes); err != nil {
		var formatErr *schedule.FormatError
		if errors.As(err, &formatErr) {
			http.Error(w, "invalid date", http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	existing, err := h.activeSlots(ctx, doc.ID, req.Date)
	if err != nil {
		h.logger.Error("load existing appointments failed", "err", err)
		http.Error(w, "failed to check availability", http.StatusInternalServerError)
		return
	}
	if conflict, found := schedule.FindConflict(requestedMinutes, existing, h.logger); found {
		httpx.WriteJSON(w, http.StatusConflict, map[string]string{
			"error":            "the requested time conflicts with an existing appointment",
			"conflicting_time": conflict.Time,
		})
		return
	}

	intent := model.BookingIntent{
		DoctorID:    doc.ID,
		DoctorName:  doc.Name,
		DoctorEmail: doc.Email,
		UserID:      id.UserID,
		UserEmail:   id.Email,
		Date:        req.Date,
		Time:        req.Time,
		FeeBDT:      doc.FeeBDT,
	}
	snapshot, err := json.Marshal(intent)
	if err != nil {
		http.Error(w, "failed to build booking snapshot", http.StatusInternalServerError)
		return
	}

	amountCents := currency.BDTToUSDCents(doc.FeeBDT)
	created, err := h.gateway.CreateIntent(ctx, amountCents, "usd", map[string]string{
		"kind":    metadataKind,
		"booking": string(snapshot),
	})
	if err != nil {
		h.logger.Error("create payment intent failed", "err", err)
		http.Error(w, "payment gateway error", http.StatusBadGateway)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, bookingIntentResponse{
		PaymentIntentID: created.ID,
		ClientSecret:    created.ClientSecret,
		AmountUSDCents:  amountCents,
		FeeBDT:          doc.FeeBDT,
	})
}

// Confirm turns a succeeded payment intent into the appointment record.
// Safe to call any number of times; repeats return the same record tagged
// duplicate.
func (h *BookingHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, ok := httpx.IdentityFromRequest(r); !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.PaymentIntentID) == "" {
		http.Error(w, "payment_intent_id is required", http.StatusBadRequest)
		return
	}

	result, err := h.finalizer.Finalize(r.Context(), req.PaymentIntentID)
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrNotCompleted):
			http.Error(w, "payment has not completed", http.StatusPaymentRequired)
		case errors.Is(err, payments.ErrInFlight):
			http.Error(w, "confirmation already in progress, retry shortly", http.StatusConflict)
		case errors.Is(err, errWrongIntentKind):
			http.Error(w, "payment intent does not belong to a booking", http.StatusBadRequest)
		default:
			h.logger.Error("finalize booking failed", "err", err, "payment_intent_id", req.PaymentIntentID)
			http.Error(w, "failed to confirm booking", http.StatusInternalServerError)
		}
		return
	}

	appt := result.Record
	httpx.WriteJSON(w, http.StatusOK, appointmentItem{
		AppointmentID: appt.AppointmentID,
		DoctorName:    appt.DoctorName,
		DoctorEmail:   appt.DoctorEmail,
		UserEmail:     appt.UserEmail,
		Date:          appt.Date,
		Time:          appt.Time,
		Status:        appt.Status,
		FeeBDT:        appt.FeeBDT,
		MeetLink:      appt.MeetLink,
		Duplicate:     result.Duplicate,
	})
}

// List returns the caller's appointments: customers see their own bookings,
// doctors see their schedule.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, ok := httpx.IdentityFromRequest(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var (
		appts []model.Appointment
		err   error
	)
	if id.Role == httpx.RoleDoctor {
		appts, err = h.appts.ListByDoctorEmail(r.Context(), id.Email, 100)
	} else {
		appts, err = h.appts.ListByUser(r.Context(), id.UserID, 100)
	}
	if err != nil {
		h.logger.Error("list appointments failed", "err", err)
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}

	items := make([]appointmentItem, 0, len(appts))
	for _, appt := range appts {
		items = append(items, appointmentItem{
			AppointmentID: appt.AppointmentID,
			DoctorName:    appt.DoctorName,
			DoctorEmail:   appt.DoctorEmail,
			UserEmail:     appt.UserEmail,
			Date:          appt.Date,
			Time:          appt.Time,
			Status:        appt.Status,
			FeeBDT:        appt.FeeBDT,
			MeetLink:      appt.MeetLink,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"appointments": items})
}

// UpdateStatus lets the owning doctor mark an appointment completed or
// cancelled. Repeating the same transition is a no-op success.
func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, ok := httpx.IdentityFromRequest(r)
	if !ok || id.Role != httpx.RoleDoctor {
		http.Error(w, "doctor role required", http.StatusForbidden)
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	req.Status = strings.TrimSpace(req.Status)
	if req.AppointmentID == "" {
		http.Error(w, "appointment_id is required", http.StatusBadRequest)
		return
	}
	if req.Status != model.StatusCompleted && req.Status != model.StatusCancelled {
		http.Error(w, "status must be completed or cancelled", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	tx, err := h.appts.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appt, err := h.appts.GetForDoctorUpdate(ctx, tx, req.AppointmentID, id.Email)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		h.logger.Error("load appointment failed", "err", err)
		http.Error(w, "failed to load appointment", http.StatusInternalServerError)
		return
	}

	if appt.Status == req.Status {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{
			"appointment_id": appt.AppointmentID,
			"status":         appt.Status,
		})
		return
	}
	if appt.Status == model.StatusCancelled {
		http.Error(w, "appointment is cancelled", http.StatusConflict)
		return
	}

	if err := h.appts.UpdateStatus(ctx, tx, appt.AppointmentID, req.Status); err != nil {
		http.Error(w, "failed to update status", http.StatusInternalServerError)
		return
	}

	if req.Status == model.StatusCancelled {
		payload, err := json.Marshal(map[string]string{
			"appointment_id": appt.AppointmentID,
			"doctor_name":    appt.DoctorName,
			"user_email":     appt.UserEmail,
			"date":           appt.Date,
			"time":           appt.Time,
		})
		if err != nil {
			http.Error(w, "failed to build event payload", http.StatusInternalServerError)
			return
		}
		if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
			AggregateType: "appointment",
			AggregateID:   appt.AppointmentID,
			EventType:     outbox.EventAppointmentCancelled,
			Payload:       payload,
		}); err != nil {
			http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
			return
		}
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to update status", http.StatusInternalServerError)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"appointment_id": appt.AppointmentID,
		"status":         req.Status,
	})
}

// activeSlots loads the conflict-scan input for a doctor and date. Cancelled
// appointments are excluded at the query level, so a cancelled slot frees
// its window immediately.
func (h *BookingHandler) activeSlots(ctx context.Context, doctorID, date string) ([]schedule.Slot, error) {
	appts, err := h.appts.ListActiveForDoctorDate(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}
	slots := make([]schedule.Slot, 0, len(appts))
	for _, appt := range appts {
		slots = append(slots, schedule.Slot{Time: appt.Time, UserEmail: appt.UserEmail})
	}
	return slots, nil
}

var errWrongIntentKind = errors.New("payment intent metadata kind mismatch")

// appointmentStore adapts the appointment repository to the finalizer's
// store contract: it decodes the booking snapshot from intent metadata and
// materializes the appointment row plus its confirmation event.
type appointmentStore struct {
	handler *BookingHandler
}

func (s *appointmentStore) FindByReference(ctx context.Context, ref string) (model.Appointment, bool, error) {
	return s.handler.appts.FindByPaymentIntent(ctx, ref)
}

func (s *appointmentStore) Insert(ctx context.Context, details payments.IntentDetails) (model.Appointment, error) {
	h := s.handler
	if details.Metadata["kind"] != metadataKind {
		return model.Appointment{}, errWrongIntentKind
	}

	var intent model.BookingIntent
	if err := json.Unmarshal([]byte(details.Metadata["booking"]), &intent); err != nil {
		return model.Appointment{}, errors.New("payment intent is missing the booking snapshot")
	}
	if intent.DoctorID == "" || intent.UserID == "" || intent.Date == "" || intent.Time == "" {
		return model.Appointment{}, errors.New("booking snapshot is incomplete")
	}

	// Best-effort re-scan: the window between intent creation and payment
	// completion can admit a competing booking. The payment is already
	// captured at this point, so a late conflict is recorded and surfaced
	// operationally rather than rejected.
	if requestedMinutes, err := schedule.ParseClock(intent.Time); err == nil {
		if existing, err := h.activeSlots(ctx, intent.DoctorID, intent.Date); err == nil {
			if conflict, found := schedule.FindConflict(requestedMinutes, existing, h.logger); found {
				h.logger.Warn("appointment conflicts with a booking made after intent creation",
					"payment_intent_id", details.ID,
					"doctor_id", intent.DoctorID,
					"date", intent.Date,
					"requested_time", intent.Time,
					"conflicting_time", conflict.Time)
			}
		}
	}

	now := time.Now().UTC()
	appt := model.Appointment{
		AppointmentID:   model.NewAppointmentID(now),
		DoctorID:        intent.DoctorID,
		DoctorEmail:     intent.DoctorEmail,
		DoctorName:      intent.DoctorName,
		UserID:          intent.UserID,
		UserEmail:       intent.UserEmail,
		Date:            intent.Date,
		Time:            intent.Time,
		Status:          model.StatusConfirmed,
		FeeBDT:          intent.FeeBDT,
		FeeUSDCents:     details.AmountMinor,
		PaymentIntentID: details.ID,
		MeetLink:        meet.NewLink(h.meetBaseURL),
		CreatedAt:       now,
	}

	payload, err := json.Marshal(map[string]string{
		"appointment_id": appt.AppointmentID,
		"doctor_name":    appt.DoctorName,
		"user_email":     appt.UserEmail,
		"date":           appt.Date,
		"time":           appt.Time,
		"meet_link":      appt.MeetLink,
	})
	if err != nil {
		return model.Appointment{}, err
	}

	evt := outbox.Event{
		AggregateType: "appointment",
		AggregateID:   appt.AppointmentID,
		EventType:     outbox.EventAppointmentConfirmed,
		Payload:       payload,
	}
	if err := h.appts.InsertWithEvent(ctx, h.outboxRepo, appt, evt); err != nil {
		return model.Appointment{}, err
	}
	return appt, nil
}
