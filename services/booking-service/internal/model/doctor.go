package model

import "time"

type Doctor struct {
	ID            string
	Name          string
	Email         string
	Specialty     string
	FeeBDT        int64
	AvailableDays []string // empty = no configured schedule, always available
	StartTime     string   // optional 12-hour daily window
	EndTime       string
	CreatedAt     time.Time
}
