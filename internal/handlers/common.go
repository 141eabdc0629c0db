package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/adomtravels/adomtravels-backend/internal/services"
	"github.com/adomtravels/adomtravels-backend/internal/workflow"
	"github.com/gin-gonic/gin"
)

// httpStatus maps workflow errors onto response codes.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, workflow.ErrValidation):
		return 400
	case errors.Is(err, workflow.ErrNotFound):
		return 404
	case errors.Is(err, workflow.ErrInvalidTransition):
		return 400
	case errors.Is(err, workflow.ErrConcurrentUpdate):
		return 409
	default:
		return 500
	}
}

// publishStatusChange pushes a transition to the status cache and the admin
// dashboards. All best-effort: a cache or pub/sub outage never fails the
// workflow that triggered it.
func publishStatusChange(hub *services.Hub, kind, reference, status, actor string) {
	ctx := context.Background()
	if err := services.CacheRequestStatus(ctx, reference, status); err != nil {
		log.Printf("Failed to cache status for %s: %v", reference, err)
	}
	update := services.StatusUpdate{Kind: kind, Reference: reference, Status: status, ChangedBy: actor}
	if err := services.PublishStatusUpdate(ctx, update); err != nil {
		log.Printf("Failed to publish status update for %s: %v", reference, err)
		if data, merr := json.Marshal(update); merr == nil {
			hub.Broadcast(data)
		}
	}
}

func parseTravelDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return uint(id), true
}

func pageParams(c *gin.Context) (page, limit int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}
