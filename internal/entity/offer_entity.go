package entity

import "time"

// Offer is a pre-negotiated interest rate for a known customer.
type Offer struct {
	CustomerID   string `gorm:"primaryKey"`
	InterestRate float64
	CreatedAt    time.Time
}
