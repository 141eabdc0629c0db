package models

import (
	"time"
)

// ProcessedPayment records a fully processed payment-completion reference.
// The unique index on reference is the idempotency guard: claiming a
// reference is an insert that either lands or conflicts, so two racing
// handlers cannot both win. Rows survive restarts and are shared across
// instances, unlike an in-memory set.
type ProcessedPayment struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Reference   string    `json:"reference" gorm:"type:varchar(100);uniqueIndex;not null"`
	ProcessedAt time.Time `json:"processedAt" gorm:"autoCreateTime"`
}

func (ProcessedPayment) TableName() string {
	return "processed_payments"
}
