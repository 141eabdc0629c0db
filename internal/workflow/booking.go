package workflow

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adomtravels/adomtravels-backend/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const SystemActor = "System"

// BookingWorkflow owns every status mutation of booking requests. A status
// write and its ledger row always land in one transaction; there is no other
// code path that touches the status column.
type BookingWorkflow struct {
	db *gorm.DB
}

func NewBookingWorkflow(db *gorm.DB) *BookingWorkflow {
	return &BookingWorkflow{db: db}
}

type SubmitBookingInput struct {
	ServiceType  models.ServiceType
	Urgency      models.UrgencyLevel
	ContactName  string
	ContactEmail string
	ContactPhone string
	Destination  string
	TravelDate   *time.Time
	Currency     string
	Details      datatypes.JSON
	UserID       *uint
}

// Submit creates the booking in submitted status and writes the initial
// self-transition ledger row.
func (w *BookingWorkflow) Submit(in SubmitBookingInput) (*models.BookingRequest, error) {
	if err := validateContact(in.ContactName, in.ContactEmail, in.ContactPhone); err != nil {
		return nil, err
	}

	reference, err := BookingReference(in.ServiceType)
	if err != nil {
		return nil, err
	}

	booking := models.BookingRequest{
		ReferenceNumber: reference,
		ServiceType:     in.ServiceType,
		Status:          models.BookingStatusSubmitted,
		Urgency:         in.Urgency,
		ContactName:     in.ContactName,
		ContactEmail:    in.ContactEmail,
		ContactPhone:    in.ContactPhone,
		Destination:     in.Destination,
		TravelDate:      in.TravelDate,
		Currency:        in.Currency,
		Details:         in.Details,
		UserID:          in.UserID,
	}
	if booking.Urgency == "" {
		booking.Urgency = models.UrgencyStandard
	}
	if booking.Currency == "" {
		booking.Currency = "GHS"
	}

	err = w.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}
		history := models.BookingStatusHistory{
			BookingRequestID: booking.ID,
			FromStatus:       models.BookingStatusSubmitted,
			ToStatus:         models.BookingStatusSubmitted,
			Notes:            "request submitted",
			ChangedBy:        SystemActor,
		}
		return tx.Create(&history).Error
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// Transition moves the booking to a new status and appends the matching
// ledger row atomically. The guarded update (WHERE status = current) makes
// concurrent transitions on the same booking lose cleanly instead of
// producing a gap in the ledger.
func (w *BookingWorkflow) Transition(id uint, to models.BookingStatus, actor, notes string) error {
	if actor == "" {
		actor = SystemActor
	}
	return w.db.Transaction(func(tx *gorm.DB) error {
		var booking models.BookingRequest
		if err := tx.First(&booking, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: booking %d", ErrNotFound, id)
			}
			return err
		}
		if !BookingMachine.Can(booking.Status, to) {
			return fmt.Errorf("%w: booking %s cannot move from %s to %s",
				ErrInvalidTransition, booking.ReferenceNumber, booking.Status, to)
		}

		result := tx.Model(&models.BookingRequest{}).
			Where("id = ? AND status = ?", booking.ID, booking.Status).
			Update("status", to)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: booking %d", ErrConcurrentUpdate, id)
		}

		history := models.BookingStatusHistory{
			BookingRequestID: booking.ID,
			FromStatus:       booking.Status,
			ToStatus:         to,
			Notes:            notes,
			ChangedBy:        actor,
		}
		return tx.Create(&history).Error
	})
}

type BookingPricingUpdate struct {
	QuotedAmount *decimal.Decimal
	FinalAmount  *decimal.Decimal
	Currency     string
	Reason       string
	Notes        string
}

// UpdatePricing changes pricing fields without moving the status. The change
// is still ledgered: a same-status row whose notes carry the old and new
// amounts and the reason. When extra notes are supplied the one row carries
// both concerns.
func (w *BookingWorkflow) UpdatePricing(id uint, in BookingPricingUpdate, actor string) error {
	if in.QuotedAmount == nil && in.FinalAmount == nil {
		return fmt.Errorf("%w: pricing update requires an amount", ErrValidation)
	}
	if actor == "" {
		actor = SystemActor
	}
	return w.db.Transaction(func(tx *gorm.DB) error {
		var booking models.BookingRequest
		if err := tx.First(&booking, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: booking %d", ErrNotFound, id)
			}
			return err
		}

		currency := booking.Currency
		if in.Currency != "" {
			currency = in.Currency
		}

		updates := map[string]interface{}{}
		var parts []string
		if in.QuotedAmount != nil {
			parts = append(parts, pricingNotes("quoted amount", booking.QuotedAmount, in.QuotedAmount, currency, ""))
			updates["quoted_amount"] = *in.QuotedAmount
		}
		if in.FinalAmount != nil {
			parts = append(parts, pricingNotes("final amount", booking.FinalAmount, in.FinalAmount, currency, ""))
			updates["final_amount"] = *in.FinalAmount
		}
		if in.Currency != "" {
			updates["currency"] = in.Currency
		}
		notes := strings.Join(parts, "; ")
		if in.Reason != "" {
			notes += "; reason: " + in.Reason
		}
		if in.Notes != "" {
			notes += "; " + in.Notes
			updates["admin_notes"] = appendNotes(booking.AdminNotes, noteLine(actor, in.Notes))
		}

		if err := tx.Model(&booking).Updates(updates).Error; err != nil {
			return err
		}
		history := models.BookingStatusHistory{
			BookingRequestID: booking.ID,
			FromStatus:       booking.Status,
			ToStatus:         booking.Status,
			Notes:            notes,
			ChangedBy:        actor,
		}
		return tx.Create(&history).Error
	})
}

// AppendNote folds a timestamped, attributed line into the admin notes field
// and documents the addition with a same-status ledger row.
func (w *BookingWorkflow) AppendNote(id uint, actor, note string) error {
	if strings.TrimSpace(note) == "" {
		return fmt.Errorf("%w: note is empty", ErrValidation)
	}
	if actor == "" {
		actor = SystemActor
	}
	return w.db.Transaction(func(tx *gorm.DB) error {
		var booking models.BookingRequest
		if err := tx.First(&booking, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: booking %d", ErrNotFound, id)
			}
			return err
		}
		updated := appendNotes(booking.AdminNotes, noteLine(actor, note))
		if err := tx.Model(&booking).Update("admin_notes", updated).Error; err != nil {
			return err
		}
		history := models.BookingStatusHistory{
			BookingRequestID: booking.ID,
			FromStatus:       booking.Status,
			ToStatus:         booking.Status,
			Notes:            "note added: " + note,
			ChangedBy:        actor,
		}
		return tx.Create(&history).Error
	})
}

// SetPaymentReference records the gateway transaction reference a payment
// link was initialized with, so webhook deliveries can be matched back.
func (w *BookingWorkflow) SetPaymentReference(id uint, reference string) error {
	result := w.db.Model(&models.BookingRequest{}).Where("id = ?", id).Update("payment_reference", reference)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: booking %d", ErrNotFound, id)
	}
	return nil
}

func (w *BookingWorkflow) ByID(id uint) (*models.BookingRequest, error) {
	var booking models.BookingRequest
	if err := w.db.First(&booking, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: booking %d", ErrNotFound, id)
		}
		return nil, err
	}
	return &booking, nil
}

func (w *BookingWorkflow) ByReference(reference string) (*models.BookingRequest, error) {
	var booking models.BookingRequest
	if err := w.db.Where("reference_number = ?", reference).First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: booking %s", ErrNotFound, reference)
		}
		return nil, err
	}
	return &booking, nil
}

func (w *BookingWorkflow) ByPaymentReference(reference string) (*models.BookingRequest, error) {
	var booking models.BookingRequest
	if err := w.db.Where("payment_reference = ?", reference).First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: payment reference %s", ErrNotFound, reference)
		}
		return nil, err
	}
	return &booking, nil
}

// History returns the ledger for one booking, oldest first.
func (w *BookingWorkflow) History(id uint) ([]models.BookingStatusHistory, error) {
	var entries []models.BookingStatusHistory
	err := w.db.Where("booking_request_id = ?", id).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	return entries, err
}

func (w *BookingWorkflow) List(page, limit int) ([]models.BookingRequest, int64, error) {
	var bookings []models.BookingRequest
	offset := (page - 1) * limit
	if err := w.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&bookings).Error; err != nil {
		return nil, 0, err
	}
	var total int64
	if err := w.db.Model(&models.BookingRequest{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

func validateContact(name, email, phone string) error {
	var missing []string
	if strings.TrimSpace(name) == "" {
		missing = append(missing, "contact name")
	}
	if strings.TrimSpace(email) == "" {
		missing = append(missing, "contact email")
	}
	if strings.TrimSpace(phone) == "" {
		missing = append(missing, "contact phone")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}
