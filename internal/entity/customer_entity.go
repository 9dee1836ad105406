package entity

import "time"

// Customer is a read-only CRM record, looked up by phone during
// verification. The conversation core never writes to this table.
type Customer struct {
	ID               string `gorm:"primaryKey"`
	Name             string
	City             string
	Phone            string `gorm:"uniqueIndex;size:10"`
	Email            string
	CreditScore      int
	PreapprovedLimit float64
	Salary           float64
	CreatedAt        time.Time
}
