package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ServiceType string

const (
	ServiceTypeFlight          ServiceType = "flight"
	ServiceTypeHotel           ServiceType = "hotel"
	ServiceTypeTour            ServiceType = "tour"
	ServiceTypeVisa            ServiceType = "visa"
	ServiceTypeCompletePackage ServiceType = "complete_package"
)

type UrgencyLevel string

const (
	UrgencyStandard  UrgencyLevel = "standard"
	UrgencyUrgent    UrgencyLevel = "urgent"
	UrgencyEmergency UrgencyLevel = "emergency"
)

type BookingStatus string

const (
	BookingStatusSubmitted      BookingStatus = "submitted"
	BookingStatusUnderReview    BookingStatus = "under_review"
	BookingStatusQuoteProvided  BookingStatus = "quote_provided"
	BookingStatusPaymentPending BookingStatus = "payment_pending"
	BookingStatusProcessing     BookingStatus = "processing"
	BookingStatusConfirmed      BookingStatus = "confirmed"
	BookingStatusCompleted      BookingStatus = "completed"
	BookingStatusCancelled      BookingStatus = "cancelled"
)

// BookingRequest is a post-commitment fulfilment request. It is never
// hard-deleted; terminal statuses (completed/cancelled) end its lifecycle.
type BookingRequest struct {
	gorm.Model
	ReferenceNumber  string           `json:"referenceNumber" gorm:"column:reference_number;type:varchar(50);uniqueIndex;not null"`
	ServiceType      ServiceType      `json:"serviceType" gorm:"not null"`
	Status           BookingStatus    `json:"status" gorm:"not null;default:'submitted'"`
	Urgency          UrgencyLevel     `json:"urgency" gorm:"not null;default:'standard'"`
	ContactName      string           `json:"contactName" gorm:"not null"`
	ContactEmail     string           `json:"contactEmail" gorm:"not null"`
	ContactPhone     string           `json:"contactPhone" gorm:"not null"`
	Destination      string           `json:"destination"`
	TravelDate       *time.Time       `json:"travelDate"`
	QuotedAmount     *decimal.Decimal `json:"quotedAmount" gorm:"type:decimal(12,2)"`
	FinalAmount      *decimal.Decimal `json:"finalAmount" gorm:"type:decimal(12,2)"`
	Currency         string           `json:"currency" gorm:"type:varchar(3);not null;default:'GHS'"`
	PaymentReference string           `json:"paymentReference" gorm:"type:varchar(100);index"`
	AdminNotes       string           `json:"adminNotes" gorm:"type:text"`
	Details          datatypes.JSON   `json:"details"`
	UserID           *uint            `json:"userId"`
	User             *User            `json:"user,omitempty"`

	StatusHistory []BookingStatusHistory `json:"statusHistory,omitempty" gorm:"foreignKey:BookingRequestID;constraint:OnDelete:CASCADE"`
}

func (BookingRequest) TableName() string {
	return "booking_requests"
}

// BookingStatusHistory is the append-only ledger for booking status changes.
// Every status write on a BookingRequest inserts exactly one row here inside
// the same transaction.
type BookingStatusHistory struct {
	gorm.Model
	BookingRequestID uint          `json:"bookingRequestId" gorm:"not null;index"`
	FromStatus       BookingStatus `json:"fromStatus" gorm:"not null"`
	ToStatus         BookingStatus `json:"toStatus" gorm:"not null"`
	Notes            string        `json:"notes" gorm:"type:text"`
	ChangedBy        string        `json:"changedBy" gorm:"not null;default:'System'"`
}

func (BookingStatusHistory) TableName() string {
	return "booking_status_histories"
}

func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}
