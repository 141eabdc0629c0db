package workflow

import (
	"strings"
	"testing"

	"github.com/adomtravels/adomtravels-backend/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submitTestQuote(t *testing.T, w *QuoteWorkflow) *models.QuoteRequest {
	t.Helper()
	quote, err := w.Submit(SubmitQuoteInput{
		ServiceType:  models.ServiceTypeHotel,
		ContactName:  "Kofi Boateng",
		ContactEmail: "kofi@example.com",
		ContactPhone: "+233501234567",
		Destination:  "Accra",
	})
	require.NoError(t, err)
	return quote
}

func TestSubmitQuote(t *testing.T) {
	db := newTestDB(t)
	w := NewQuoteWorkflow(db)

	quote := submitTestQuote(t, w)

	assert.Equal(t, models.QuoteStatusSubmitted, quote.Status)
	assert.True(t, strings.HasPrefix(quote.ReferenceNumber, "QHT"))
	assert.Nil(t, quote.UserID, "guest quotes have no owning user")

	entries, err := w.History(quote.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.QuoteStatusSubmitted, entries[0].FromStatus)
	assert.Equal(t, models.QuoteStatusSubmitted, entries[0].ToStatus)
}

func TestQuoteLifecycleToBookingConfirmed(t *testing.T) {
	db := newTestDB(t)
	w := NewQuoteWorkflow(db)
	quote := submitTestQuote(t, w)

	steps := []models.QuoteStatus{
		models.QuoteStatusUnderReview,
		models.QuoteStatusQuoteProvided,
		models.QuoteStatusPaymentPending,
		models.QuoteStatusPaid,
		models.QuoteStatusBookingConfirmed,
	}
	for _, next := range steps {
		require.NoError(t, w.Transition(quote.ID, next, "Admin User", ""))
	}

	got, err := w.ByID(quote.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QuoteStatusBookingConfirmed, got.Status)

	entries, err := w.History(quote.ID)
	require.NoError(t, err)
	require.Len(t, entries, len(steps)+1)
	for i := 1; i < len(entries); i++ {
		assert.Equal(t, entries[i-1].ToStatus, entries[i].FromStatus)
	}
}

func TestQuoteExpiresBeforePaymentOnly(t *testing.T) {
	db := newTestDB(t)
	w := NewQuoteWorkflow(db)

	quote := submitTestQuote(t, w)
	require.NoError(t, w.Transition(quote.ID, models.QuoteStatusExpired, "", "no response in 14 days"))

	got, err := w.ByID(quote.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QuoteStatusExpired, got.Status)

	// a paid quote can no longer expire
	paid := submitTestQuote(t, w)
	for _, next := range []models.QuoteStatus{
		models.QuoteStatusUnderReview,
		models.QuoteStatusQuoteProvided,
		models.QuoteStatusPaymentPending,
		models.QuoteStatusPaid,
	} {
		require.NoError(t, w.Transition(paid.ID, next, "", ""))
	}
	err = w.Transition(paid.ID, models.QuoteStatusExpired, "", "")
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestQuoteUpdatePricingRecordsChange(t *testing.T) {
	db := newTestDB(t)
	w := NewQuoteWorkflow(db)
	quote := submitTestQuote(t, w)
	require.NoError(t, w.Transition(quote.ID, models.QuoteStatusUnderReview, "", ""))

	amount := decimal.NewFromFloat(3450.50)
	require.NoError(t, w.UpdatePricing(quote.ID, QuotePricingUpdate{
		QuotedAmount: &amount,
		Reason:       "peak season rates",
	}, "Admin User"))

	got, err := w.ByID(quote.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QuoteStatusUnderReview, got.Status)
	require.NotNil(t, got.QuotedAmount)
	assert.True(t, got.QuotedAmount.Equal(amount))

	entries, err := w.History(quote.ID)
	require.NoError(t, err)
	last := entries[len(entries)-1]
	assert.Equal(t, last.FromStatus, last.ToStatus)
	assert.Contains(t, last.Notes, "unset")
	assert.Contains(t, last.Notes, "3450.50")
	assert.Contains(t, last.Notes, "peak season rates")
}

func TestQuoteSetPaymentReference(t *testing.T) {
	db := newTestDB(t)
	w := NewQuoteWorkflow(db)
	quote := submitTestQuote(t, w)

	require.NoError(t, w.SetPaymentReference(quote.ID, "tx-abc-123"))
	got, err := w.ByPaymentReference("tx-abc-123")
	require.NoError(t, err)
	assert.Equal(t, quote.ID, got.ID)

	_, err = w.ByPaymentReference("tx-missing")
	require.ErrorIs(t, err, ErrNotFound)

	err = w.SetPaymentReference(9999, "tx-other")
	require.ErrorIs(t, err, ErrNotFound)
}
