package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuoteStatus string

const (
	QuoteStatusSubmitted        QuoteStatus = "submitted"
	QuoteStatusUnderReview      QuoteStatus = "under_review"
	QuoteStatusQuoteProvided    QuoteStatus = "quote_provided"
	QuoteStatusPaymentPending   QuoteStatus = "payment_pending"
	QuoteStatusPaid             QuoteStatus = "paid"
	QuoteStatusBookingConfirmed QuoteStatus = "booking_confirmed"
	QuoteStatusExpired          QuoteStatus = "expired"
	QuoteStatusCancelled        QuoteStatus = "cancelled"
)

// QuoteRequest is a pre-sale price request. Guests may submit quotes, so the
// owning user is nullable.
type QuoteRequest struct {
	gorm.Model
	ReferenceNumber  string           `json:"referenceNumber" gorm:"column:reference_number;type:varchar(50);uniqueIndex;not null"`
	ServiceType      ServiceType      `json:"serviceType" gorm:"not null"`
	Status           QuoteStatus      `json:"status" gorm:"not null;default:'submitted'"`
	Urgency          UrgencyLevel     `json:"urgency" gorm:"not null;default:'standard'"`
	ContactName      string           `json:"contactName" gorm:"not null"`
	ContactEmail     string           `json:"contactEmail" gorm:"not null"`
	ContactPhone     string           `json:"contactPhone" gorm:"not null"`
	Destination      string           `json:"destination"`
	TravelDate       *time.Time       `json:"travelDate"`
	QuotedAmount     *decimal.Decimal `json:"quotedAmount" gorm:"type:decimal(12,2)"`
	Currency         string           `json:"currency" gorm:"type:varchar(3);not null;default:'GHS'"`
	PaymentReference string           `json:"paymentReference" gorm:"type:varchar(100);index"`
	AdminNotes       string           `json:"adminNotes" gorm:"type:text"`
	Details          datatypes.JSON   `json:"details"`
	UserID           *uint            `json:"userId"`
	User             *User            `json:"user,omitempty"`

	StatusHistory []QuoteStatusHistory `json:"statusHistory,omitempty" gorm:"foreignKey:QuoteRequestID;constraint:OnDelete:CASCADE"`
}

func (QuoteRequest) TableName() string {
	return "quote_requests"
}

// QuoteStatusHistory mirrors BookingStatusHistory for the quote lifecycle.
type QuoteStatusHistory struct {
	gorm.Model
	QuoteRequestID uint        `json:"quoteRequestId" gorm:"not null;index"`
	FromStatus     QuoteStatus `json:"fromStatus" gorm:"not null"`
	ToStatus       QuoteStatus `json:"toStatus" gorm:"not null"`
	Notes          string      `json:"notes" gorm:"type:text"`
	ChangedBy      string      `json:"changedBy" gorm:"not null;default:'System'"`
}

func (QuoteStatusHistory) TableName() string {
	return "quote_status_histories"
}

func (s QuoteStatus) IsTerminal() bool {
	return s == QuoteStatusBookingConfirmed || s == QuoteStatusExpired || s == QuoteStatusCancelled
}
