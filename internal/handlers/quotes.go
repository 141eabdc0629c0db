package handlers

import (
	"context"

	"github.com/adomtravels/adomtravels-backend/internal/models"
	"github.com/adomtravels/adomtravels-backend/internal/notify"
	"github.com/adomtravels/adomtravels-backend/internal/payments"
	"github.com/adomtravels/adomtravels-backend/internal/services"
	"github.com/adomtravels/adomtravels-backend/internal/workflow"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// CreateQuote handles a quote submission. Quotes are open to guests, so no
// authentication is required.
func CreateQuote(wf *workflow.QuoteWorkflow, notifier *notify.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			ServiceType  models.ServiceType  `json:"serviceType" binding:"required"`
			Urgency      models.UrgencyLevel `json:"urgency"`
			ContactName  string              `json:"contactName"`
			ContactEmail string              `json:"contactEmail"`
			ContactPhone string              `json:"contactPhone"`
			Destination  string              `json:"destination"`
			TravelDate   string              `json:"travelDate"`
			Currency     string              `json:"currency"`
			Details      datatypes.JSON      `json:"details"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		travelDate, err := parseTravelDate(input.TravelDate)
		if err != nil {
			c.JSON(400, gin.H{"error": "Travel date must be YYYY-MM-DD"})
			return
		}

		var userID *uint
		if id := c.GetUint("userId"); id != 0 {
			userID = &id
		}

		quote, err := wf.Submit(workflow.SubmitQuoteInput{
			ServiceType:  input.ServiceType,
			Urgency:      input.Urgency,
			ContactName:  input.ContactName,
			ContactEmail: input.ContactEmail,
			ContactPhone: input.ContactPhone,
			Destination:  input.Destination,
			TravelDate:   travelDate,
			Currency:     input.Currency,
			Details:      input.Details,
			UserID:       userID,
		})
		if err != nil {
			c.JSON(httpStatus(err), gin.H{"error": err.Error()})
			return
		}

		contact := notify.Contact{Name: quote.ContactName, Email: quote.ContactEmail, Phone: quote.ContactPhone}
		go notifier.RequestSubmitted(context.Background(), "quote", quote.ReferenceNumber, contact)

		c.JSON(201, quote)
	}
}

// TrackQuote is the public status endpoint keyed by reference number
func TrackQuote(wf *workflow.QuoteWorkflow) gin.HandlerFunc {
	return func(c *gin.Context) {
		reference := c.Param("reference")

		if status, err := services.GetCachedRequestStatus(c.Request.Context(), reference); err == nil {
			c.JSON(200, gin.H{"referenceNumber": reference, "status": status})
			return
		}

		quote, err := wf.ByReference(reference)
		if err != nil {
			c.JSON(httpStatus(err), gin.H{"error": err.Error()})
			return
		}

		_ = services.CacheRequestStatus(c.Request.Context(), reference, string(quote.Status))
		c.JSON(200, gin.H{"referenceNumber": quote.ReferenceNumber, "status": quote.Status})
	}
}

// ListQuotes returns a paginated admin view of all quotes
func ListQuotes(wf *workflow.QuoteWorkflow) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := pageParams(c)

		quotes, total, err := wf.List(page, limit)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch quotes"})
			return
		}

		c.JSON(200, gin.H{
			"quotes": quotes,
			"pagination": gin.H{
				"page":       page,
				"limit":      limit,
				"total":      total,
				"totalPages": (total + int64(limit) - 1) / int64(limit),
			},
		})
	}
}

// GetQuoteHistory returns the status ledger for one quote
func GetQuoteHistory(wf *workflow.QuoteWorkflow) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}

		if _, err := wf.ByID(id); err != nil {
			c.JSON(httpStatus(err), gin.H{"error": err.Error()})
			return
		}

		history, err := wf.History(id)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch history"})
			return
		}

		c.JSON(200, gin.H{"history": history})
	}
}

// UpdateQuoteStatus moves a quote to a new status
func UpdateQuoteStatus(wf *workflow.QuoteWorkflow, notifier *notify.Notifier, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}

		var input struct {
			Status models.QuoteStatus `json:"status" binding:"required"`
			Notes  string             `json:"notes"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		actor := c.GetString("username")
		if err := wf.Transition(id, input.Status, actor, input.Notes); err != nil {
			c.JSON(httpStatus(err), gin.H{"error": err.Error()})
			return
		}

		quote, err := wf.ByID(id)
		if err != nil {
			c.JSON(httpStatus(err), gin.H{"error": err.Error()})
			return
		}

		publishStatusChange(hub, "quote", quote.ReferenceNumber, string(quote.Status), actor)
		contact := notify.Contact{Name: quote.ContactName, Email: quote.ContactEmail, Phone: quote.ContactPhone}
		go notifier.StatusChanged(context.Background(), quote.ReferenceNumber, contact, string(quote.Status))

		c.JSON(200, quote)
	}
}

// UpdateQuotePricing updates the quoted amount without moving the status
func UpdateQuotePricing(wf *workflow.QuoteWorkflow) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}

		var input struct {
			QuotedAmount *decimal.Decimal `json:"quotedAmount"`
			Currency     string           `json:"currency"`
			Reason       string           `json:"reason"`
			Notes        string           `json:"notes"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		err := wf.UpdatePricing(id, workflow.QuotePricingUpdate{
			QuotedAmount: input.QuotedAmount,
			Currency:     input.Currency,
			Reason:       input.Reason,
			Notes:        input.Notes,
		}, c.GetString("username"))
		if err != nil {
			c.JSON(httpStatus(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(200, gin.H{"message": "Pricing updated"})
	}
}

// AddQuoteNote appends an attributed note to a quote
func AddQuoteNote(wf *workflow.QuoteWorkflow) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}

		var input struct {
			Note string `json:"note" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if err := wf.AppendNote(id, c.GetString("username"), input.Note); err != nil {
			c.JSON(httpStatus(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(200, gin.H{"message": "Note added"})
	}
}

// ProvideQuote is the composite admin action: set the price, move the quote
// to quote_provided, create a Paystack payment link and send it to the
// customer in one step.
func ProvideQuote(wf *workflow.QuoteWorkflow, gateway *payments.PaystackClient, notifier *notify.Notifier, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}

		var input struct {
			Amount   *decimal.Decimal `json:"amount" binding:"required"`
			Currency string           `json:"currency"`
			Reason   string           `json:"reason"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		actor := c.GetString("username")
		err := wf.UpdatePricing(id, workflow.QuotePricingUpdate{
			QuotedAmount: input.Amount,
			Currency:     input.Currency,
			Reason:       input.Reason,
		}, actor)
		if err != nil {
			c.JSON(httpStatus(err), gin.H{"error": err.Error()})
			return
		}

		if err := wf.Transition(id, models.QuoteStatusQuoteProvided, actor, "quote provided"); err != nil {
			c.JSON(httpStatus(err), gin.H{"error": err.Error()})
			return
		}

		quote, err := wf.ByID(id)
		if err != nil {
			c.JSON(httpStatus(err), gin.H{"error": err.Error()})
			return
		}

		txRef := uuid.NewString()
		paymentLink, err := gateway.InitializeTransaction(c.Request.Context(), quote.ContactEmail, *input.Amount, quote.Currency, txRef)
		if err != nil {
			c.JSON(502, gin.H{"error": "Failed to create payment link"})
			return
		}
		if err := wf.SetPaymentReference(id, txRef); err != nil {
			c.JSON(httpStatus(err), gin.H{"error": err.Error()})
			return
		}

		publishStatusChange(hub, "quote", quote.ReferenceNumber, string(quote.Status), actor)
		contact := notify.Contact{Name: quote.ContactName, Email: quote.ContactEmail, Phone: quote.ContactPhone}
		go notifier.QuoteProvided(context.Background(), quote.ReferenceNumber, contact, *input.Amount, quote.Currency, paymentLink)

		c.JSON(200, gin.H{
			"quote":       quote,
			"paymentLink": paymentLink,
			"reference":   txRef,
		})
	}
}
