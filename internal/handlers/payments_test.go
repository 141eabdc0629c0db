package handlers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adomtravels/adomtravels-backend/internal/models"
	"github.com/adomtravels/adomtravels-backend/internal/notify"
	"github.com/adomtravels/adomtravels-backend/internal/payments"
	"github.com/adomtravels/adomtravels-backend/internal/workflow"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecretKey = "sk_test_secret"

type noopNotifier struct{}

func (noopNotifier) PaymentReceived(ctx context.Context, reference string, contact notify.Contact, amount decimal.Decimal, currency string) notify.Report {
	return notify.Report{}
}

type webhookFixture struct {
	db       *gorm.DB
	bookings *workflow.BookingWorkflow
	quotes   *workflow.QuoteWorkflow
	router   *gin.Engine
}

func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&models.BookingRequest{},
		&models.BookingStatusHistory{},
		&models.QuoteRequest{},
		&models.QuoteStatusHistory{},
		&models.ProcessedPayment{},
	))

	bookings := workflow.NewBookingWorkflow(db)
	quotes := workflow.NewQuoteWorkflow(db)
	completion := &payments.CompletionHandler{
		Bookings: bookings,
		Quotes:   quotes,
		Guard:    payments.NewGuard(db),
		Notifier: noopNotifier{},
	}
	gateway := &payments.PaystackClient{SecretKey: testSecretKey}

	router := gin.New()
	router.POST("/api/payments/webhook/paystack", PaystackWebhook(completion, gateway))

	return &webhookFixture{db: db, bookings: bookings, quotes: quotes, router: router}
}

func (f *webhookFixture) pendingBooking(t *testing.T, txRef string) *models.BookingRequest {
	t.Helper()
	booking, err := f.bookings.Submit(workflow.SubmitBookingInput{
		ServiceType:  models.ServiceTypeFlight,
		ContactName:  "Ama Mensah",
		ContactEmail: "ama@example.com",
		ContactPhone: "+233241234567",
		Destination:  "Dubai",
	})
	require.NoError(t, err)
	for _, next := range []models.BookingStatus{
		models.BookingStatusUnderReview,
		models.BookingStatusQuoteProvided,
		models.BookingStatusPaymentPending,
	} {
		require.NoError(t, f.bookings.Transition(booking.ID, next, "", ""))
	}
	require.NoError(t, f.bookings.SetPaymentReference(booking.ID, txRef))
	return booking
}

func (f *webhookFixture) post(t *testing.T, body, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/payments/webhook/paystack", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("x-paystack-signature", signature)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func sign(body string) string {
	mac := hmac.New(sha512.New, []byte(testSecretKey))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func chargeSuccessBody(reference string, amount int64) string {
	return fmt.Sprintf(`{"event":"charge.success","data":{"reference":%q,"status":"success","amount":%d,"currency":"GHS"}}`,
		reference, amount)
}

func TestWebhookRejectsInvalidSignature(t *testing.T) {
	f := newWebhookFixture(t)
	booking := f.pendingBooking(t, "tx-1")

	body := chargeSuccessBody("tx-1", 120000)
	w := f.post(t, body, "deadbeef")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.post(t, body, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	got, err := f.bookings.ByID(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPaymentPending, got.Status, "unsigned events must not be processed")
}

func TestWebhookProcessesChargeSuccess(t *testing.T) {
	f := newWebhookFixture(t)
	booking := f.pendingBooking(t, "tx-1")

	body := chargeSuccessBody("tx-1", 120000)
	w := f.post(t, body, sign(body))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"received"}`, w.Body.String())

	got, err := f.bookings.ByID(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusProcessing, got.Status)

	entries, err := f.bookings.History(booking.ID)
	require.NoError(t, err)
	last := entries[len(entries)-1]
	assert.Equal(t, payments.PaymentActor, last.ChangedBy)
	assert.Contains(t, got.AdminNotes, "GHS 1200.00")
}

func TestWebhookAbsorbsDuplicateDelivery(t *testing.T) {
	f := newWebhookFixture(t)
	booking := f.pendingBooking(t, "tx-1")

	body := chargeSuccessBody("tx-1", 120000)
	for i := 0; i < 3; i++ {
		w := f.post(t, body, sign(body))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	got, err := f.bookings.ByID(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusProcessing, got.Status)

	entries, err := f.bookings.History(booking.ID)
	require.NoError(t, err)
	moved := 0
	for _, e := range entries {
		if e.FromStatus == models.BookingStatusPaymentPending && e.ToStatus == models.BookingStatusProcessing {
			moved++
		}
	}
	assert.Equal(t, 1, moved, "redelivered events must not transition again")
}

func TestWebhookAcknowledgesUnknownEvent(t *testing.T) {
	f := newWebhookFixture(t)
	booking := f.pendingBooking(t, "tx-1")

	body := `{"event":"subscription.create","data":{"reference":"tx-1"}}`
	w := f.post(t, body, sign(body))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"received"}`, w.Body.String())

	got, err := f.bookings.ByID(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPaymentPending, got.Status, "unknown events are no-ops")
}

func TestWebhookAcknowledgesUnknownReference(t *testing.T) {
	f := newWebhookFixture(t)

	body := chargeSuccessBody("tx-ghost", 5000)
	w := f.post(t, body, sign(body))
	assert.Equal(t, http.StatusOK, w.Code, "unknown references are dropped, provider still gets its ack")
}

func TestWebhookAcknowledgesMalformedPayload(t *testing.T) {
	f := newWebhookFixture(t)

	body := `{"event": "charge.success", "data": `
	w := f.post(t, body, sign(body))
	assert.Equal(t, http.StatusOK, w.Code)
}
