package main

import (
	"context"
	"net/http"
	"time"

	"github.com/mahfuz-anam/pawcare/libs/config"
	"github.com/mahfuz-anam/pawcare/libs/db"
	"github.com/mahfuz-anam/pawcare/libs/httpx"
	"github.com/mahfuz-anam/pawcare/libs/kafkax"
	otelx "github.com/mahfuz-anam/pawcare/libs/otel"
	"github.com/mahfuz-anam/pawcare/libs/payments"
	"github.com/mahfuz-anam/pawcare/libs/runtime"
	"github.com/mahfuz-anam/pawcare/services/booking-service/internal/handlers"
	"github.com/mahfuz-anam/pawcare/services/booking-service/internal/meet"
	"github.com/mahfuz-anam/pawcare/services/booking-service/internal/outbox"
	"github.com/mahfuz-anam/pawcare/services/booking-service/internal/storage"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	service := config.String("SERVICE_NAME", "booking-service")
	port, err := config.Port("PORT", "8083")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	stripeKey, err := config.RequiredString("STRIPE_SECRET_KEY")
	if err != nil {
		panic(err)
	}

	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	doctorRepo := storage.NewDoctorRepository(pool)
	apptRepo := storage.NewAppointmentRepository(pool)
	outboxRepo := outbox.NewRepository(pool)

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	gateway := payments.NewStripeGateway(stripeKey)
	guard := payments.NewReservations()
	bookingHandler := handlers.NewBookingHandler(
		doctorRepo, apptRepo, outboxRepo, gateway, guard, logger,
		config.String("MEET_BASE_URL", meet.DefaultBaseURL),
	)

	mux := runtime.NewBaseMux(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)
	mux.HandleFunc("/api/v1/public/doctors", bookingHandler.Doctors)
	mux.HandleFunc("/api/v1/doctors", bookingHandler.CreateDoctor)
	mux.HandleFunc("/api/v1/booking/intent", bookingHandler.Intent)
	mux.HandleFunc("/api/v1/booking/confirm", bookingHandler.Confirm)
	mux.HandleFunc("/api/v1/appointments", bookingHandler.List)
	mux.HandleFunc("/api/v1/appointments/status", bookingHandler.UpdateStatus)

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(1<<20),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "booking")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
