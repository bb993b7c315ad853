package model

import "time"

type Product struct {
	ID          string
	Name        string
	Description string
	Category    string
	PriceBDT    int64
	Stock       int
	ImageURL    string
	CreatedAt   time.Time
}
