package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/mahfuz-anam/pawcare/libs/config"
	"github.com/mahfuz-anam/pawcare/libs/db"
	"github.com/mahfuz-anam/pawcare/libs/httpx"
	"github.com/mahfuz-anam/pawcare/libs/kafkax"
	otelx "github.com/mahfuz-anam/pawcare/libs/otel"
	"github.com/mahfuz-anam/pawcare/libs/runtime"
	"github.com/mahfuz-anam/pawcare/services/notification-service/internal/consumer"
	"github.com/mahfuz-anam/pawcare/services/notification-service/internal/email"
	"github.com/mahfuz-anam/pawcare/services/notification-service/internal/inbox"
	"github.com/mahfuz-anam/pawcare/services/notification-service/internal/notify"
	"github.com/mahfuz-anam/pawcare/services/notification-service/internal/storage"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	service := config.String("SERVICE_NAME", "notification-service")
	port, err := config.Port("PORT", "8085")
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

	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	inboxRepo := inbox.NewRepository(pool)
	notificationsRepo := storage.NewRepository(pool)

	smtpHost := config.String("SMTP_HOST", "mailpit")
	smtpPort := config.String("SMTP_PORT", "1025")
	smtpFrom := config.String("SMTP_FROM", "no-reply@pawcare.local")
	emailSender := email.NewSMTPSender(smtpHost, smtpPort, smtpFrom)

	brokers := config.String("KAFKA_BROKERS", "")
	groupID := config.String("KAFKA_GROUP_ID", "notification-service")

	handle := func(ctx context.Context, msg kafka.Message) error {
		composed, err := notify.Compose(msg.Topic, msg.Value)
		if err != nil {
			// Malformed events are logged and dropped; retrying cannot fix
			// the payload.
			logger.Error("undeliverable event", "err", err, "topic", msg.Topic)
			return nil
		}

		status := "sent"
		if err := emailSender.Send(composed.Recipient, composed.Subject, composed.Body); err != nil {
			status = "failed"
			logger.Error("email send failed", "err", err, "recipient", composed.Recipient)
		}

		if err := notificationsRepo.Insert(ctx, storage.Notification{
			ReferenceID: composed.ReferenceID,
			EventType:   msg.Topic,
			Recipient:   composed.Recipient,
			Subject:     composed.Subject,
			Status:      status,
		}); err != nil {
			logger.Error("failed to persist notification", "err", err)
			return err
		}

		logger.Info("notification processed", "reference_id", composed.ReferenceID, "topic", msg.Topic, "status", status)
		return nil
	}

	topics := []string{
		notify.TopicAppointmentConfirmed,
		notify.TopicAppointmentCancelled,
		notify.TopicOrderConfirmed,
	}
	for _, topic := range topics {
		if strings.TrimSpace(brokers) == "" {
			logger.Warn("kafka consumer disabled (no brokers configured)", "topic", topic)
			break
		}
		eventConsumer := consumer.New(logger, inboxRepo, consumer.Config{
			Brokers: brokers,
			GroupID: groupID,
			Topic:   topic,
		}, handle)
		go eventConsumer.Run(ctx)
	}

	mux := runtime.NewBaseMux(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)},
	)
	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	handler = otelhttp.NewHandler(handler, "notification")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
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
