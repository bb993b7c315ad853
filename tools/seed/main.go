// Command seed creates the PawCare schema and loads demo data: doctors with
// schedules, a small product catalog and a welcome coupon. Safe to re-run;
// every statement is idempotent.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/mahfuz-anam/pawcare/libs/db"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            text PRIMARY KEY,
		name          text NOT NULL,
		email         text NOT NULL,
		password_hash text NOT NULL,
		role          text NOT NULL,
		created_at    timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_unique ON users (lower(email))`,

	`CREATE TABLE IF NOT EXISTS doctors (
		id             text PRIMARY KEY,
		name           text NOT NULL,
		email          text NOT NULL,
		specialty      text NOT NULL DEFAULT '',
		fee_bdt        bigint NOT NULL,
		available_days text[] NOT NULL DEFAULT '{}',
		start_time     text,
		end_time       text,
		created_at     timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS appointments (
		appointment_id    text PRIMARY KEY,
		doctor_id         text NOT NULL,
		doctor_email      text NOT NULL,
		doctor_name       text NOT NULL,
		user_id           text NOT NULL,
		user_email        text NOT NULL,
		appointment_date  text NOT NULL,
		appointment_time  text NOT NULL,
		status            text NOT NULL,
		fee_bdt           bigint NOT NULL,
		fee_usd_cents     bigint NOT NULL,
		payment_intent_id text NOT NULL,
		meet_link         text,
		created_at        timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS appointments_payment_intent_unique
		ON appointments (payment_intent_id)`,
	`CREATE INDEX IF NOT EXISTS appointments_doctor_date
		ON appointments (doctor_id, appointment_date)`,

	`CREATE TABLE IF NOT EXISTS products (
		id          text PRIMARY KEY,
		name        text NOT NULL,
		description text,
		category    text,
		price_bdt   bigint NOT NULL,
		stock       int NOT NULL DEFAULT 0,
		image_url   text,
		created_at  timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS coupons (
		code       text PRIMARY KEY,
		percent    int NOT NULL,
		active     boolean NOT NULL DEFAULT true,
		expires_at timestamptz,
		created_at timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS orders (
		order_id        text PRIMARY KEY,
		user_id         text NOT NULL,
		user_email      text NOT NULL,
		items           jsonb NOT NULL,
		subtotal_bdt    bigint NOT NULL,
		discount_bdt    bigint NOT NULL,
		shipping_bdt    bigint NOT NULL,
		tax_bdt         bigint NOT NULL,
		total_bdt       bigint NOT NULL,
		total_usd_cents bigint NOT NULL,
		coupon_code     text,
		status          text NOT NULL,
		transaction_id  text NOT NULL,
		created_at      timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS orders_transaction_unique
		ON orders (transaction_id)`,
	`CREATE INDEX IF NOT EXISTS orders_user ON orders (user_id)`,

	`CREATE TABLE IF NOT EXISTS outbox_events (
		id            bigserial PRIMARY KEY,
		event_id      uuid NOT NULL DEFAULT gen_random_uuid(),
		aggregate_type text NOT NULL,
		aggregate_id  text NOT NULL,
		event_type    text NOT NULL,
		payload       jsonb NOT NULL,
		traceparent   text,
		tracestate    text,
		created_at    timestamptz NOT NULL DEFAULT now(),
		published_at  timestamptz
	)`,

	`CREATE TABLE IF NOT EXISTS inbox_events (
		event_id   text PRIMARY KEY,
		event_type text NOT NULL,
		created_at timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id           bigserial PRIMARY KEY,
		reference_id text NOT NULL,
		event_type   text NOT NULL,
		recipient    text NOT NULL,
		subject      text NOT NULL,
		status       text NOT NULL,
		created_at   timestamptz NOT NULL DEFAULT now()
	)`,
}

type seedDoctor struct {
	name      string
	email     string
	specialty string
	feeBDT    int64
	days      []string
	start     string
	end       string
}

type seedProduct struct {
	name     string
	category string
	priceBDT int64
	stock    int
}

func main() {
	var (
		dbURL    = flag.String("database-url", os.Getenv("DATABASE_URL"), "postgres connection string")
		withDemo = flag.Bool("demo-data", true, "insert demo doctors, products and coupons")
	)
	flag.Parse()

	if *dbURL == "" {
		fatal("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.Open(ctx, *dbURL)
	if err != nil {
		fatal("db connection failed: " + err.Error())
	}
	defer pool.Close()

	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			fatal("schema statement failed: " + err.Error())
		}
	}
	fmt.Println("schema ready")

	if !*withDemo {
		return
	}

	doctors := []seedDoctor{
		{"Dr. Farhana Rahman", "farhana@pawcare.example", "Small animal surgery", 1500,
			[]string{"Monday", "Wednesday", "Thursday"}, "9:00 AM", "5:00 PM"},
		{"Dr. Tanvir Ahmed", "tanvir@pawcare.example", "Feline medicine", 1200,
			[]string{"Saturday", "Sunday", "Tuesday"}, "10:00 AM", "6:00 PM"},
		{"Dr. Nusrat Jahan", "nusrat@pawcare.example", "Exotic pets", 1800, nil, "", ""},
	}
	for _, d := range doctors {
		if d.days == nil {
			d.days = []string{}
		}
		_, err := pool.Exec(ctx, `
			INSERT INTO doctors (id, name, email, specialty, fee_bdt, available_days, start_time, end_time)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO NOTHING
		`, uuid.NewSHA1(uuid.NameSpaceDNS, []byte(d.email)).String(),
			d.name, d.email, d.specialty, d.feeBDT, d.days, d.start, d.end)
		if err != nil {
			fatal("seed doctor failed: " + err.Error())
		}
	}

	products := []seedProduct{
		{"Premium kitten food 2kg", "food", 950, 40},
		{"Adult dog food 5kg", "food", 2200, 25},
		{"Clumping cat litter 10L", "litter", 650, 60},
		{"Rope chew toy", "toys", 280, 100},
		{"Flea and tick shampoo", "grooming", 420, 35},
	}
	for _, p := range products {
		_, err := pool.Exec(ctx, `
			INSERT INTO products (id, name, category, price_bdt, stock)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO NOTHING
		`, uuid.NewSHA1(uuid.NameSpaceDNS, []byte(p.name)).String(),
			p.name, p.category, p.priceBDT, p.stock)
		if err != nil {
			fatal("seed product failed: " + err.Error())
		}
	}

	if _, err := pool.Exec(ctx, `
		INSERT INTO coupons (code, percent, active)
		VALUES ('WELCOME10', 10, true)
		ON CONFLICT (code) DO NOTHING
	`); err != nil {
		fatal("seed coupon failed: " + err.Error())
	}

	fmt.Println("demo data loaded")
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, "error: "+msg)
	os.Exit(1)
}
