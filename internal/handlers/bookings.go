package handlers

import (
	"context"

	"github.com/adomtravels/adomtravels-backend/internal/models"
	"github.com/adomtravels/adomtravels-backend/internal/notify"
	"github.com/adomtravels/adomtravels-backend/internal/services"
	"github.com/adomtravels/adomtravels-backend/internal/workflow"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// CreateBooking handles the submission of a new booking request
func CreateBooking(wf *workflow.BookingWorkflow, notifier *notify.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

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

		booking, err := wf.Submit(workflow.SubmitBookingInput{
			ServiceType:  input.ServiceType,
			Urgency:      input.Urgency,
			ContactName:  input.ContactName,
			ContactEmail: input.ContactEmail,
			ContactPhone: input.ContactPhone,
			Destination:  input.Destination,
			TravelDate:   travelDate,
			Currency:     input.Currency,
			Details:      input.Details,
			UserID:       &userID,
		})
		if err != nil {
			c.JSON(httpStatus(err), gin.H{"error": err.Error()})
			return
		}

		// Acknowledgements go out in the background; the submission response
		// never waits on SMS or email providers.
		contact := notify.Contact{Name: booking.ContactName, Email: booking.ContactEmail, Phone: booking.ContactPhone}
		go notifier.RequestSubmitted(context.Background(), "booking", booking.ReferenceNumber, contact)

		c.JSON(201, booking)
	}
}

// GetBooking returns one booking to its owner or an admin
func GetBooking(wf *workflow.BookingWorkflow) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}

		booking, err := wf.ByID(id)
		if err != nil {
			c.JSON(httpStatus(err), gin.H{"error": err.Error()})
			return
		}

		userID := c.GetUint("userId")
		if c.GetString("userType") != "admin" && (booking.UserID == nil || *booking.UserID != userID) {
			c.JSON(403, gin.H{"error": "Unauthorized"})
			return
		}

		c.JSON(200, booking)
	}
}

// TrackBooking is the public status endpoint keyed by reference number,
// answered from the Redis cache when possible
func TrackBooking(wf *workflow.BookingWorkflow) gin.HandlerFunc {
	return func(c *gin.Context) {
		reference := c.Param("reference")

		if status, err := services.GetCachedRequestStatus(c.Request.Context(), reference); err == nil {
			c.JSON(200, gin.H{"referenceNumber": reference, "status": status})
			return
		}

		booking, err := wf.ByReference(reference)
		if err != nil {
			c.JSON(httpStatus(err), gin.H{"error": err.Error()})
			return
		}

		_ = services.CacheRequestStatus(c.Request.Context(), reference, string(booking.Status))
		c.JSON(200, gin.H{"referenceNumber": booking.ReferenceNumber, "status": booking.Status})
	}
}

// ListBookings returns a paginated admin view of all bookings
func ListBookings(wf *workflow.BookingWorkflow) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := pageParams(c)

		bookings, total, err := wf.List(page, limit)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch bookings"})
			return
		}

		c.JSON(200, gin.H{
			"bookings": bookings,
			"pagination": gin.H{
				"page":       page,
				"limit":      limit,
				"total":      total,
				"totalPages": (total + int64(limit) - 1) / int64(limit),
			},
		})
	}
}

// GetBookingHistory returns the status ledger for one booking
func GetBookingHistory(wf *workflow.BookingWorkflow) gin.HandlerFunc {
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

// UpdateBookingStatus moves a booking to a new status
func UpdateBookingStatus(wf *workflow.BookingWorkflow, notifier *notify.Notifier, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}

		var input struct {
			Status models.BookingStatus `json:"status" binding:"required"`
			Notes  string               `json:"notes"`
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

		booking, err := wf.ByID(id)
		if err != nil {
			c.JSON(httpStatus(err), gin.H{"error": err.Error()})
			return
		}

		publishStatusChange(hub, "booking", booking.ReferenceNumber, string(booking.Status), actor)
		contact := notify.Contact{Name: booking.ContactName, Email: booking.ContactEmail, Phone: booking.ContactPhone}
		go notifier.StatusChanged(context.Background(), booking.ReferenceNumber, contact, string(booking.Status))

		c.JSON(200, booking)
	}
}

// UpdateBookingPricing updates quoted/final amounts without moving the status
func UpdateBookingPricing(wf *workflow.BookingWorkflow) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}

		var input struct {
			QuotedAmount *decimal.Decimal `json:"quotedAmount"`
			FinalAmount  *decimal.Decimal `json:"finalAmount"`
			Currency     string           `json:"currency"`
			Reason       string           `json:"reason"`
			Notes        string           `json:"notes"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		err := wf.UpdatePricing(id, workflow.BookingPricingUpdate{
			QuotedAmount: input.QuotedAmount,
			FinalAmount:  input.FinalAmount,
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

// AddBookingNote appends an attributed note to a booking
func AddBookingNote(wf *workflow.BookingWorkflow) gin.HandlerFunc {
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
