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
	"github.com/mahfuz-anam/pawcare/services/shop-service/internal/cart"
	"github.com/mahfuz-anam/pawcare/services/shop-service/internal/handlers"
	"github.com/mahfuz-anam/pawcare/services/shop-service/internal/outbox"
	"github.com/mahfuz-anam/pawcare/services/shop-service/internal/storage"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	service := config.String("SERVICE_NAME", "shop-service")
	port, err := config.Port("PORT", "8084")
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

	rdb := redis.NewClient(&redis.Options{
		Addr: config.String("REDIS_ADDR", "localhost:6379"),
	})
	defer rdb.Close()

	productRepo := storage.NewProductRepository(pool)
	couponRepo := storage.NewCouponRepository(pool)
	orderRepo := storage.NewOrderRepository(pool)
	carts := cart.New(rdb, time.Duration(config.Int("CART_TTL_HOURS", 168))*time.Hour)
	outboxRepo := outbox.NewRepository(pool)

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	gateway := payments.NewStripeGateway(stripeKey)
	guard := payments.NewReservations()
	shopHandler := handlers.NewShopHandler(productRepo, couponRepo, orderRepo, carts, outboxRepo, gateway, guard, logger)

	mux := runtime.NewBaseMux(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "redis", Check: cart.ReadyCheck(rdb)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)
	mux.HandleFunc("/api/v1/public/products", shopHandler.Products)
	mux.HandleFunc("/api/v1/products", shopHandler.CreateProduct)
	mux.HandleFunc("/api/v1/coupons/validate", shopHandler.ValidateCoupon)
	mux.HandleFunc("/api/v1/cart", shopHandler.Cart)
	mux.HandleFunc("/api/v1/checkout/intent", shopHandler.CheckoutIntent)
	mux.HandleFunc("/api/v1/checkout/confirm", shopHandler.CheckoutConfirm)
	mux.HandleFunc("/api/v1/orders", shopHandler.Orders)
	mux.HandleFunc("/api/v1/orders/status", shopHandler.UpdateOrderStatus)

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(1<<20),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "shop")
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
