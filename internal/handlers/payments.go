package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"

	"github.com/adomtravels/adomtravels-backend/internal/models"
	"github.com/adomtravels/adomtravels-backend/internal/payments"
	"github.com/adomtravels/adomtravels-backend/internal/workflow"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InitializePayment creates a Paystack payment link for a priced booking or
// quote and records the transaction reference on the entity. A booking in
// quote_provided moves to payment_pending once its link exists.
func InitializePayment(bookings *workflow.BookingWorkflow, quotes *workflow.QuoteWorkflow, gateway *payments.PaystackClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Kind      string `json:"kind" binding:"required,oneof=booking quote"`
			Reference string `json:"reference" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		txRef := uuid.NewString()

		switch input.Kind {
		case "booking":
			booking, err := bookings.ByReference(input.Reference)
			if err != nil {
				c.JSON(httpStatus(err), gin.H{"error": err.Error()})
				return
			}
			amount := booking.QuotedAmount
			if booking.FinalAmount != nil {
				amount = booking.FinalAmount
			}
			if amount == nil {
				c.JSON(400, gin.H{"error": "Booking has not been priced yet"})
				return
			}
			if booking.Status != models.BookingStatusQuoteProvided && booking.Status != models.BookingStatusPaymentPending {
				c.JSON(400, gin.H{"error": "Booking is not awaiting payment"})
				return
			}

			link, err := gateway.InitializeTransaction(c.Request.Context(), booking.ContactEmail, *amount, booking.Currency, txRef)
			if err != nil {
				c.JSON(502, gin.H{"error": "Failed to create payment link"})
				return
			}
			if err := bookings.SetPaymentReference(booking.ID, txRef); err != nil {
				c.JSON(httpStatus(err), gin.H{"error": err.Error()})
				return
			}
			if booking.Status == models.BookingStatusQuoteProvided {
				if err := bookings.Transition(booking.ID, models.BookingStatusPaymentPending, workflow.SystemActor, "payment link issued"); err != nil {
					c.JSON(httpStatus(err), gin.H{"error": err.Error()})
					return
				}
			}
			c.JSON(200, gin.H{"paymentLink": link, "reference": txRef})

		case "quote":
			quote, err := quotes.ByReference(input.Reference)
			if err != nil {
				c.JSON(httpStatus(err), gin.H{"error": err.Error()})
				return
			}
			if quote.QuotedAmount == nil {
				c.JSON(400, gin.H{"error": "Quote has not been priced yet"})
				return
			}
			if quote.Status != models.QuoteStatusQuoteProvided && quote.Status != models.QuoteStatusPaymentPending {
				c.JSON(400, gin.H{"error": "Quote is not awaiting payment"})
				return
			}

			link, err := gateway.InitializeTransaction(c.Request.Context(), quote.ContactEmail, *quote.QuotedAmount, quote.Currency, txRef)
			if err != nil {
				c.JSON(502, gin.H{"error": "Failed to create payment link"})
				return
			}
			if err := quotes.SetPaymentReference(quote.ID, txRef); err != nil {
				c.JSON(httpStatus(err), gin.H{"error": err.Error()})
				return
			}
			if quote.Status == models.QuoteStatusQuoteProvided {
				if err := quotes.Transition(quote.ID, models.QuoteStatusPaymentPending, workflow.SystemActor, "payment link issued"); err != nil {
					c.JSON(httpStatus(err), gin.H{"error": err.Error()})
					return
				}
			}
			c.JSON(200, gin.H{"paymentLink": link, "reference": txRef})
		}
	}
}

// PaystackWebhook receives payment events. It always acknowledges with 200
// once the signature checks out; internal processing failures are logged, not
// surfaced, so the provider does not hammer an already-failing path with
// retries.
func PaystackWebhook(handler *payments.CompletionHandler, gateway *payments.PaystackClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(400, gin.H{"error": "Unreadable body"})
			return
		}

		if !gateway.ValidSignature(body, c.GetHeader("x-paystack-signature")) {
			c.JSON(401, gin.H{"error": "Invalid signature"})
			return
		}

		var event payments.WebhookEvent
		if err := json.Unmarshal(body, &event); err != nil {
			log.Printf("Paystack webhook: malformed payload: %v", err)
			c.JSON(200, gin.H{"status": "received"})
			return
		}

		switch event.Event {
		case "charge.success":
			if err := handler.HandlePaymentCompleted(c.Request.Context(), event.Data.Reference, event.AmountValue(), ""); err != nil {
				log.Printf("ERROR: processing payment %s failed: %v", event.Data.Reference, err)
			}
		default:
			log.Printf("Paystack webhook: ignoring event type %s", event.Event)
		}

		c.JSON(200, gin.H{"status": "received"})
	}
}

// VerifyPayment re-checks a transaction with Paystack on demand. This is the
// manual path into the same idempotent completion handler the webhook uses;
// racing with a webhook delivery is safe.
func VerifyPayment(handler *payments.CompletionHandler, gateway *payments.PaystackClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		reference := c.Param("reference")

		verification, err := gateway.VerifyTransaction(c.Request.Context(), reference)
		if err != nil {
			c.JSON(502, gin.H{"error": "Verification failed"})
			return
		}

		if verification.Status == "success" {
			if err := handler.HandlePaymentCompleted(c.Request.Context(), verification.Reference, verification.Amount, ""); err != nil {
				if !errors.Is(err, workflow.ErrNotFound) {
					log.Printf("ERROR: processing payment %s failed: %v", verification.Reference, err)
				}
			}
		}

		c.JSON(200, gin.H{
			"reference": verification.Reference,
			"status":    verification.Status,
			"amount":    verification.Amount,
			"currency":  verification.Currency,
		})
	}
}
