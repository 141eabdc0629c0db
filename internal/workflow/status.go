package workflow

import (
	"errors"

	"github.com/adomtravels/adomtravels-backend/internal/models"
)

var (
	// ErrValidation is returned when a submission is missing required fields.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when no entity matches the given id or reference.
	ErrNotFound = errors.New("request not found")
	// ErrInvalidTransition is returned when the target status is not reachable
	// from the current one.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrConcurrentUpdate is returned when another writer changed the status
	// between read and write. Callers may re-read and retry.
	ErrConcurrentUpdate = errors.New("concurrent status update")
)

// Machine is a table-driven status machine shared by the booking and quote
// lifecycles. Same-status moves are always permitted: pricing changes and
// note additions are recorded as no-op transitions so one ledger carries the
// whole audit trail.
type Machine[S ~string] struct {
	transitions map[S][]S
	terminal    map[S]bool
}

func NewMachine[S ~string](transitions map[S][]S, terminal ...S) *Machine[S] {
	m := &Machine[S]{
		transitions: transitions,
		terminal:    make(map[S]bool, len(terminal)),
	}
	for _, s := range terminal {
		m.terminal[s] = true
	}
	return m
}

// Can reports whether to is reachable from from in a single step.
func (m *Machine[S]) Can(from, to S) bool {
	if from == to {
		return true
	}
	if m.terminal[from] {
		return false
	}
	for _, next := range m.transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (m *Machine[S]) IsTerminal(s S) bool {
	return m.terminal[s]
}

// BookingMachine enforces the booking lifecycle. Cancellation is reachable
// from every non-terminal status.
var BookingMachine = NewMachine(map[models.BookingStatus][]models.BookingStatus{
	models.BookingStatusSubmitted:      {models.BookingStatusUnderReview, models.BookingStatusCancelled},
	models.BookingStatusUnderReview:    {models.BookingStatusQuoteProvided, models.BookingStatusCancelled},
	models.BookingStatusQuoteProvided:  {models.BookingStatusPaymentPending, models.BookingStatusCancelled},
	models.BookingStatusPaymentPending: {models.BookingStatusProcessing, models.BookingStatusCancelled},
	models.BookingStatusProcessing:     {models.BookingStatusConfirmed, models.BookingStatusCancelled},
	models.BookingStatusConfirmed:      {models.BookingStatusCompleted, models.BookingStatusCancelled},
}, models.BookingStatusCompleted, models.BookingStatusCancelled)

// QuoteMachine enforces the quote lifecycle. Quotes can expire at any point
// before payment; a paid quote can only move forward or be cancelled.
var QuoteMachine = NewMachine(map[models.QuoteStatus][]models.QuoteStatus{
	models.QuoteStatusSubmitted:      {models.QuoteStatusUnderReview, models.QuoteStatusExpired, models.QuoteStatusCancelled},
	models.QuoteStatusUnderReview:    {models.QuoteStatusQuoteProvided, models.QuoteStatusExpired, models.QuoteStatusCancelled},
	models.QuoteStatusQuoteProvided:  {models.QuoteStatusPaymentPending, models.QuoteStatusExpired, models.QuoteStatusCancelled},
	models.QuoteStatusPaymentPending: {models.QuoteStatusPaid, models.QuoteStatusExpired, models.QuoteStatusCancelled},
	models.QuoteStatusPaid:           {models.QuoteStatusBookingConfirmed, models.QuoteStatusCancelled},
}, models.QuoteStatusBookingConfirmed, models.QuoteStatusExpired, models.QuoteStatusCancelled)
