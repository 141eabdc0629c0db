package payments

import (
	"github.com/adomtravels/adomtravels-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Guard is the durable idempotency guard for payment completions. Claiming a
// reference is an insert against a unique index, so exactly one of any number
// of racing claimers wins, across restarts and across instances.
type Guard struct {
	db *gorm.DB
}

func NewGuard(db *gorm.DB) *Guard {
	return &Guard{db: db}
}

// Seen reports whether the reference has already been claimed.
func (g *Guard) Seen(reference string) (bool, error) {
	var count int64
	err := g.db.Model(&models.ProcessedPayment{}).
		Where("reference = ?", reference).
		Count(&count).Error
	return count > 0, err
}

// Claim atomically records the reference as being processed. Returns false
// when another processing pass already holds it.
func (g *Guard) Claim(reference string) (bool, error) {
	record := models.ProcessedPayment{Reference: reference}
	result := g.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "reference"}},
		DoNothing: true,
	}).Create(&record)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Release removes a claim after a failed processing pass so a later retry is
// reprocessed from scratch.
func (g *Guard) Release(reference string) error {
	return g.db.Where("reference = ?", reference).
		Delete(&models.ProcessedPayment{}).Error
}
