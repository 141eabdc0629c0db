package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/adomtravels/adomtravels-backend/internal/models"
	"github.com/adomtravels/adomtravels-backend/internal/notify"
	"github.com/adomtravels/adomtravels-backend/internal/workflow"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBookings struct {
	mu          sync.Mutex
	booking     *models.BookingRequest
	transitions int
	notes       []string
	failNote    bool
}

func (f *fakeBookings) ByPaymentReference(reference string) (*models.BookingRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.booking == nil || f.booking.PaymentReference != reference {
		return nil, fmt.Errorf("%w: payment reference %s", workflow.ErrNotFound, reference)
	}
	copied := *f.booking
	return &copied, nil
}

func (f *fakeBookings) Transition(id uint, to models.BookingStatus, actor, notes string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transitions++
	f.booking.Status = to
	return nil
}

func (f *fakeBookings) AppendNote(id uint, actor, note string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNote {
		return errors.New("database unavailable")
	}
	f.notes = append(f.notes, note)
	return nil
}

type fakeQuotes struct {
	mu          sync.Mutex
	quote       *models.QuoteRequest
	transitions int
	notes       []string
}

func (f *fakeQuotes) ByPaymentReference(reference string) (*models.QuoteRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.quote == nil || f.quote.PaymentReference != reference {
		return nil, fmt.Errorf("%w: payment reference %s", workflow.ErrNotFound, reference)
	}
	copied := *f.quote
	return &copied, nil
}

func (f *fakeQuotes) Transition(id uint, to models.QuoteStatus, actor, notes string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transitions++
	f.quote.Status = to
	return nil
}

func (f *fakeQuotes) AppendNote(id uint, actor, note string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notes = append(f.notes, note)
	return nil
}

type fakeNotifier struct {
	calls atomic.Int32
}

func (f *fakeNotifier) PaymentReceived(ctx context.Context, reference string, contact notify.Contact, amount decimal.Decimal, currency string) notify.Report {
	f.calls.Add(1)
	return notify.Report{}
}

func pendingBooking(reference string) *models.BookingRequest {
	b := &models.BookingRequest{
		ReferenceNumber:  "FL202501150930120001000001",
		ServiceType:      models.ServiceTypeFlight,
		Status:           models.BookingStatusPaymentPending,
		ContactName:      "Ama Mensah",
		ContactEmail:     "ama@example.com",
		ContactPhone:     "+233241234567",
		Currency:         "GHS",
		PaymentReference: reference,
	}
	b.ID = 1
	return b
}

func newTestHandler(bookings *fakeBookings, quotes *fakeQuotes, guard *Guard, notifier *fakeNotifier) *CompletionHandler {
	return &CompletionHandler{Bookings: bookings, Quotes: quotes, Guard: guard, Notifier: notifier}
}

func TestHandlePaymentCompletedBooking(t *testing.T) {
	bookings := &fakeBookings{booking: pendingBooking("tx-1")}
	quotes := &fakeQuotes{}
	guard := NewGuard(newTestDB(t))
	notifier := &fakeNotifier{}
	h := newTestHandler(bookings, quotes, guard, notifier)

	err := h.HandlePaymentCompleted(context.Background(), "tx-1", decimal.NewFromInt(1200), "")
	require.NoError(t, err)

	assert.Equal(t, 1, bookings.transitions)
	assert.Equal(t, models.BookingStatusProcessing, bookings.booking.Status)
	require.Len(t, bookings.notes, 1)
	assert.Contains(t, bookings.notes[0], "GHS 1200.00")
	assert.Contains(t, bookings.notes[0], "tx-1")
	assert.Equal(t, int32(1), notifier.calls.Load())

	seen, err := guard.Seen("tx-1")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestHandlePaymentCompletedQuote(t *testing.T) {
	quote := &models.QuoteRequest{
		ReferenceNumber:  "QHT202501150930120001000001",
		ServiceType:      models.ServiceTypeHotel,
		Status:           models.QuoteStatusPaymentPending,
		ContactName:      "Kofi Boateng",
		ContactEmail:     "kofi@example.com",
		ContactPhone:     "+233501234567",
		Currency:         "GHS",
		PaymentReference: "tx-q1",
	}
	quote.ID = 7
	bookings := &fakeBookings{}
	quotes := &fakeQuotes{quote: quote}
	guard := NewGuard(newTestDB(t))
	notifier := &fakeNotifier{}
	h := newTestHandler(bookings, quotes, guard, notifier)

	err := h.HandlePaymentCompleted(context.Background(), "tx-q1", decimal.NewFromFloat(3450.50), "+233501234567")
	require.NoError(t, err)

	assert.Equal(t, 1, quotes.transitions)
	assert.Equal(t, models.QuoteStatusPaid, quotes.quote.Status)
	require.Len(t, quotes.notes, 1)
	assert.Contains(t, quotes.notes[0], "3450.50")
	assert.Equal(t, int32(1), notifier.calls.Load())
}

func TestDuplicateDeliveryProcessesOnce(t *testing.T) {
	bookings := &fakeBookings{booking: pendingBooking("tx-1")}
	guard := NewGuard(newTestDB(t))
	notifier := &fakeNotifier{}
	h := newTestHandler(bookings, &fakeQuotes{}, guard, notifier)

	require.NoError(t, h.HandlePaymentCompleted(context.Background(), "tx-1", decimal.NewFromInt(1200), ""))
	require.NoError(t, h.HandlePaymentCompleted(context.Background(), "tx-1", decimal.NewFromInt(1200), ""))
	require.NoError(t, h.HandlePaymentCompleted(context.Background(), "tx-1", decimal.NewFromInt(1200), ""))

	assert.Equal(t, 1, bookings.transitions, "duplicates must not transition again")
	assert.Len(t, bookings.notes, 1, "duplicates must not write another audit row")
	assert.Equal(t, int32(1), notifier.calls.Load(), "duplicates must not notify again")
}

func TestConcurrentDeliveriesProcessOnce(t *testing.T) {
	bookings := &fakeBookings{booking: pendingBooking("tx-1")}
	guard := NewGuard(newTestDB(t))
	notifier := &fakeNotifier{}
	h := newTestHandler(bookings, &fakeQuotes{}, guard, notifier)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := h.HandlePaymentCompleted(context.Background(), "tx-1", decimal.NewFromInt(1200), "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, bookings.transitions)
	assert.Len(t, bookings.notes, 1)
	assert.Equal(t, int32(1), notifier.calls.Load())
}

func TestFailedPassReleasesClaimForRetry(t *testing.T) {
	bookings := &fakeBookings{booking: pendingBooking("tx-1"), failNote: true}
	guard := NewGuard(newTestDB(t))
	notifier := &fakeNotifier{}
	h := newTestHandler(bookings, &fakeQuotes{}, guard, notifier)

	err := h.HandlePaymentCompleted(context.Background(), "tx-1", decimal.NewFromInt(1200), "")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "audit note"))

	seen, err := guard.Seen("tx-1")
	require.NoError(t, err)
	assert.False(t, seen, "a failed pass must release its claim")

	// the retry reprocesses and succeeds
	bookings.failNote = false
	require.NoError(t, h.HandlePaymentCompleted(context.Background(), "tx-1", decimal.NewFromInt(1200), ""))

	assert.Equal(t, 1, bookings.transitions, "status already moved on the first pass")
	assert.Len(t, bookings.notes, 1)
	seen, err = guard.Seen("tx-1")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestUnknownReferenceIsIgnored(t *testing.T) {
	bookings := &fakeBookings{}
	quotes := &fakeQuotes{}
	guard := NewGuard(newTestDB(t))
	notifier := &fakeNotifier{}
	h := newTestHandler(bookings, quotes, guard, notifier)

	err := h.HandlePaymentCompleted(context.Background(), "tx-ghost", decimal.NewFromInt(100), "")
	require.NoError(t, err, "unknown references are dropped, not retried")

	assert.Zero(t, bookings.transitions)
	assert.Zero(t, notifier.calls.Load())
	seen, err := guard.Seen("tx-ghost")
	require.NoError(t, err)
	assert.False(t, seen, "unknown references must not be claimed")
}

func TestAlreadyMovedStatusStillNotifies(t *testing.T) {
	booking := pendingBooking("tx-1")
	booking.Status = models.BookingStatusProcessing
	bookings := &fakeBookings{booking: booking}
	guard := NewGuard(newTestDB(t))
	notifier := &fakeNotifier{}
	h := newTestHandler(bookings, &fakeQuotes{}, guard, notifier)

	require.NoError(t, h.HandlePaymentCompleted(context.Background(), "tx-1", decimal.NewFromInt(1200), ""))

	assert.Zero(t, bookings.transitions, "no transition when the booking already left payment_pending")
	assert.Len(t, bookings.notes, 1)
	assert.Equal(t, int32(1), notifier.calls.Load())
}
