package payments

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/adomtravels/adomtravels-backend/internal/models"
	"github.com/adomtravels/adomtravels-backend/internal/notify"
	"github.com/adomtravels/adomtravels-backend/internal/workflow"
	"github.com/shopspring/decimal"
)

// PaymentActor is the ledger identity for webhook-driven transitions.
const PaymentActor = "Paystack Webhook"

type bookingStore interface {
	ByPaymentReference(reference string) (*models.BookingRequest, error)
	Transition(id uint, to models.BookingStatus, actor, notes string) error
	AppendNote(id uint, actor, note string) error
}

type quoteStore interface {
	ByPaymentReference(reference string) (*models.QuoteRequest, error)
	Transition(id uint, to models.QuoteStatus, actor, notes string) error
	AppendNote(id uint, actor, note string) error
}

type processedGuard interface {
	Seen(reference string) (bool, error)
	Claim(reference string) (bool, error)
	Release(reference string) error
}

type paymentNotifier interface {
	PaymentReceived(ctx context.Context, reference string, contact notify.Contact, amount decimal.Decimal, currency string) notify.Report
}

// CompletionHandler processes "payment completed" events at most once per
// transaction reference. Duplicate webhook deliveries, webhook/manual-verify
// races and provider redeliveries are all absorbed here.
type CompletionHandler struct {
	Bookings bookingStore
	Quotes   quoteStore
	Guard    processedGuard
	Notifier paymentNotifier
}

func NewCompletionHandler(bookings *workflow.BookingWorkflow, quotes *workflow.QuoteWorkflow, guard *Guard, notifier *notify.Notifier) *CompletionHandler {
	return &CompletionHandler{Bookings: bookings, Quotes: quotes, Guard: guard, Notifier: notifier}
}

// HandlePaymentCompleted runs one full processing pass for a completed
// payment: claim the reference, move the request out of payment-pending,
// then fan out confirmations and the ledger audit row concurrently. On
// failure the claim is released so a retry can reprocess. A payment for an
// unknown reference is logged and dropped; it is not actionable.
func (h *CompletionHandler) HandlePaymentCompleted(ctx context.Context, reference string, amount decimal.Decimal, phone string) error {
	seen, err := h.Guard.Seen(reference)
	if err != nil {
		return fmt.Errorf("idempotency check for %s: %w", reference, err)
	}
	if seen {
		log.Printf("Payment %s already processed, skipping", reference)
		return nil
	}

	booking, err := h.Bookings.ByPaymentReference(reference)
	if err == nil {
		return h.completeBooking(ctx, booking, reference, amount, phone)
	}
	if !errors.Is(err, workflow.ErrNotFound) {
		return err
	}

	quote, err := h.Quotes.ByPaymentReference(reference)
	if err == nil {
		return h.completeQuote(ctx, quote, reference, amount, phone)
	}
	if errors.Is(err, workflow.ErrNotFound) {
		log.Printf("WARNING: payment completed for unknown reference %s, ignoring", reference)
		return nil
	}
	return err
}

func (h *CompletionHandler) completeBooking(ctx context.Context, booking *models.BookingRequest, reference string, amount decimal.Decimal, phone string) (err error) {
	claimed, claimErr := h.Guard.Claim(reference)
	if claimErr != nil {
		return fmt.Errorf("claim %s: %w", reference, claimErr)
	}
	if !claimed {
		log.Printf("Payment %s claimed by a concurrent pass, skipping", reference)
		return nil
	}
	defer func() {
		if err != nil {
			h.release(reference)
		}
	}()

	if booking.Status == models.BookingStatusPaymentPending {
		note := fmt.Sprintf("payment of %s %s confirmed (transaction %s)",
			booking.Currency, amount.StringFixed(2), reference)
		if err = h.Bookings.Transition(booking.ID, models.BookingStatusProcessing, PaymentActor, note); err != nil {
			return err
		}
	} else {
		log.Printf("Payment %s received for booking %s in status %s, no transition",
			reference, booking.ReferenceNumber, booking.Status)
	}

	contact := notify.Contact{
		Name:  booking.ContactName,
		Email: booking.ContactEmail,
		Phone: contactPhone(booking.ContactPhone, phone),
	}
	audit := fmt.Sprintf("payment received: %s %s (transaction %s)",
		booking.Currency, amount.StringFixed(2), reference)

	var wg sync.WaitGroup
	var auditErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		h.Notifier.PaymentReceived(ctx, booking.ReferenceNumber, contact, amount, booking.Currency)
	}()
	go func() {
		defer wg.Done()
		auditErr = h.Bookings.AppendNote(booking.ID, PaymentActor, audit)
	}()
	wg.Wait()

	if auditErr != nil {
		err = fmt.Errorf("audit note for %s: %w", booking.ReferenceNumber, auditErr)
		return err
	}
	return nil
}

func (h *CompletionHandler) completeQuote(ctx context.Context, quote *models.QuoteRequest, reference string, amount decimal.Decimal, phone string) (err error) {
	claimed, claimErr := h.Guard.Claim(reference)
	if claimErr != nil {
		return fmt.Errorf("claim %s: %w", reference, claimErr)
	}
	if !claimed {
		log.Printf("Payment %s claimed by a concurrent pass, skipping", reference)
		return nil
	}
	defer func() {
		if err != nil {
			h.release(reference)
		}
	}()

	if quote.Status == models.QuoteStatusPaymentPending {
		note := fmt.Sprintf("payment of %s %s confirmed (transaction %s)",
			quote.Currency, amount.StringFixed(2), reference)
		if err = h.Quotes.Transition(quote.ID, models.QuoteStatusPaid, PaymentActor, note); err != nil {
			return err
		}
	} else {
		log.Printf("Payment %s received for quote %s in status %s, no transition",
			reference, quote.ReferenceNumber, quote.Status)
	}

	contact := notify.Contact{
		Name:  quote.ContactName,
		Email: quote.ContactEmail,
		Phone: contactPhone(quote.ContactPhone, phone),
	}
	audit := fmt.Sprintf("payment received: %s %s (transaction %s)",
		quote.Currency, amount.StringFixed(2), reference)

	var wg sync.WaitGroup
	var auditErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		h.Notifier.PaymentReceived(ctx, quote.ReferenceNumber, contact, amount, quote.Currency)
	}()
	go func() {
		defer wg.Done()
		auditErr = h.Quotes.AppendNote(quote.ID, PaymentActor, audit)
	}()
	wg.Wait()

	if auditErr != nil {
		err = fmt.Errorf("audit note for %s: %w", quote.ReferenceNumber, auditErr)
		return err
	}
	return nil
}

func (h *CompletionHandler) release(reference string) {
	if rerr := h.Guard.Release(reference); rerr != nil {
		log.Printf("ERROR: failed to release idempotency claim %s: %v", reference, rerr)
	}
}

func contactPhone(onFile, fromEvent string) string {
	if fromEvent != "" {
		return fromEvent
	}
	return onFile
}
