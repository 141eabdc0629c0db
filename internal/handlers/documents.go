package handlers

import (
	"github.com/adomtravels/adomtravels-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// UploadDocument stores a travel document (passport scan, visa supporting
// papers) and returns its URL for attachment to a request's details.
func UploadDocument() gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := c.FormFile("document")
		if err != nil {
			c.JSON(400, gin.H{"error": "Document file is required"})
			return
		}

		// 10MB cap, matching the reverse proxy limit
		if file.Size > 10<<20 {
			c.JSON(400, gin.H{"error": "Document must be under 10MB"})
			return
		}

		url, err := services.UploadDocument(file, "documents")
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to store document"})
			return
		}

		c.JSON(201, gin.H{"url": url})
	}
}
