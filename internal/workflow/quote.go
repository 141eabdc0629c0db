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

// QuoteWorkflow mirrors BookingWorkflow for the pre-sale quote lifecycle.
// Quotes accept guest submissions, so no owning user is required.
type QuoteWorkflow struct {
	db *gorm.DB
}

func NewQuoteWorkflow(db *gorm.DB) *QuoteWorkflow {
	return &QuoteWorkflow{db: db}
}

type SubmitQuoteInput struct {
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

func (w *QuoteWorkflow) Submit(in SubmitQuoteInput) (*models.QuoteRequest, error) {
	if err := validateContact(in.ContactName, in.ContactEmail, in.ContactPhone); err != nil {
		return nil, err
	}

	reference, err := QuoteReference(in.ServiceType)
	if err != nil {
		return nil, err
	}

	quote := models.QuoteRequest{
		ReferenceNumber: reference,
		ServiceType:     in.ServiceType,
		Status:          models.QuoteStatusSubmitted,
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
	if quote.Urgency == "" {
		quote.Urgency = models.UrgencyStandard
	}
	if quote.Currency == "" {
		quote.Currency = "GHS"
	}

	err = w.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&quote).Error; err != nil {
			return err
		}
		history := models.QuoteStatusHistory{
			QuoteRequestID: quote.ID,
			FromStatus:     models.QuoteStatusSubmitted,
			ToStatus:       models.QuoteStatusSubmitted,
			Notes:          "request submitted",
			ChangedBy:      SystemActor,
		}
		return tx.Create(&history).Error
	})
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (w *QuoteWorkflow) Transition(id uint, to models.QuoteStatus, actor, notes string) error {
	if actor == "" {
		actor = SystemActor
	}
	return w.db.Transaction(func(tx *gorm.DB) error {
		var quote models.QuoteRequest
		if err := tx.First(&quote, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: quote %d", ErrNotFound, id)
			}
			return err
		}
		if !QuoteMachine.Can(quote.Status, to) {
			return fmt.Errorf("%w: quote %s cannot move from %s to %s",
				ErrInvalidTransition, quote.ReferenceNumber, quote.Status, to)
		}

		result := tx.Model(&models.QuoteRequest{}).
			Where("id = ? AND status = ?", quote.ID, quote.Status).
			Update("status", to)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: quote %d", ErrConcurrentUpdate, id)
		}

		history := models.QuoteStatusHistory{
			QuoteRequestID: quote.ID,
			FromStatus:     quote.Status,
			ToStatus:       to,
			Notes:          notes,
			ChangedBy:      actor,
		}
		return tx.Create(&history).Error
	})
}

type QuotePricingUpdate struct {
	QuotedAmount *decimal.Decimal
	Currency     string
	Reason       string
	Notes        string
}

func (w *QuoteWorkflow) UpdatePricing(id uint, in QuotePricingUpdate, actor string) error {
	if in.QuotedAmount == nil {
		return fmt.Errorf("%w: pricing update requires an amount", ErrValidation)
	}
	if actor == "" {
		actor = SystemActor
	}
	return w.db.Transaction(func(tx *gorm.DB) error {
		var quote models.QuoteRequest
		if err := tx.First(&quote, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: quote %d", ErrNotFound, id)
			}
			return err
		}

		currency := quote.Currency
		if in.Currency != "" {
			currency = in.Currency
		}

		notes := pricingNotes("quoted amount", quote.QuotedAmount, in.QuotedAmount, currency, in.Reason)
		updates := map[string]interface{}{"quoted_amount": *in.QuotedAmount}
		if in.Currency != "" {
			updates["currency"] = in.Currency
		}
		if in.Notes != "" {
			notes += "; " + in.Notes
			updates["admin_notes"] = appendNotes(quote.AdminNotes, noteLine(actor, in.Notes))
		}

		if err := tx.Model(&quote).Updates(updates).Error; err != nil {
			return err
		}
		history := models.QuoteStatusHistory{
			QuoteRequestID: quote.ID,
			FromStatus:     quote.Status,
			ToStatus:       quote.Status,
			Notes:          notes,
			ChangedBy:      actor,
		}
		return tx.Create(&history).Error
	})
}

func (w *QuoteWorkflow) AppendNote(id uint, actor, note string) error {
	if strings.TrimSpace(note) == "" {
		return fmt.Errorf("%w: note is empty", ErrValidation)
	}
	if actor == "" {
		actor = SystemActor
	}
	return w.db.Transaction(func(tx *gorm.DB) error {
		var quote models.QuoteRequest
		if err := tx.First(&quote, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: quote %d", ErrNotFound, id)
			}
			return err
		}
		updated := appendNotes(quote.AdminNotes, noteLine(actor, note))
		if err := tx.Model(&quote).Update("admin_notes", updated).Error; err != nil {
			return err
		}
		history := models.QuoteStatusHistory{
			QuoteRequestID: quote.ID,
			FromStatus:     quote.Status,
			ToStatus:       quote.Status,
			Notes:          "note added: " + note,
			ChangedBy:      actor,
		}
		return tx.Create(&history).Error
	})
}

func (w *QuoteWorkflow) SetPaymentReference(id uint, reference string) error {
	result := w.db.Model(&models.QuoteRequest{}).Where("id = ?", id).Update("payment_reference", reference)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: quote %d", ErrNotFound, id)
	}
	return nil
}

func (w *QuoteWorkflow) ByID(id uint) (*models.QuoteRequest, error) {
	var quote models.QuoteRequest
	if err := w.db.First(&quote, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: quote %d", ErrNotFound, id)
		}
		return nil, err
	}
	return &quote, nil
}

func (w *QuoteWorkflow) ByReference(reference string) (*models.QuoteRequest, error) {
	var quote models.QuoteRequest
	if err := w.db.Where("reference_number = ?", reference).First(&quote).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: quote %s", ErrNotFound, reference)
		}
		return nil, err
	}
	return &quote, nil
}

func (w *QuoteWorkflow) ByPaymentReference(reference string) (*models.QuoteRequest, error) {
	var quote models.QuoteRequest
	if err := w.db.Where("payment_reference = ?", reference).First(&quote).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: payment reference %s", ErrNotFound, reference)
		}
		return nil, err
	}
	return &quote, nil
}

func (w *QuoteWorkflow) History(id uint) ([]models.QuoteStatusHistory, error) {
	var entries []models.QuoteStatusHistory
	err := w.db.Where("quote_request_id = ?", id).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	return entries, err
}

func (w *QuoteWorkflow) List(page, limit int) ([]models.QuoteRequest, int64, error) {
	var quotes []models.QuoteRequest
	offset := (page - 1) * limit
	if err := w.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&quotes).Error; err != nil {
		return nil, 0, err
	}
	var total int64
	if err := w.db.Model(&models.QuoteRequest{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	return quotes, total, nil
}
