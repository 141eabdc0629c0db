package workflow

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync/atomic"
	"time"

	"github.com/adomtravels/adomtravels-backend/internal/models"
)

// Reference numbers are <prefix><UTC timestamp><4 random digits><6 sequence
// digits>, at most 27 characters. The column allows 50; an earlier shorter
// limit truncated references in production, so the generator and the schema
// are both kept well inside it. The random digits keep references hard to
// guess across processes, the process-local sequence guarantees uniqueness
// for bursts generated within one timestamp tick.

var bookingPrefixes = map[models.ServiceType]string{
	models.ServiceTypeFlight:          "FL",
	models.ServiceTypeHotel:           "HT",
	models.ServiceTypeTour:            "TR",
	models.ServiceTypeVisa:            "VS",
	models.ServiceTypeCompletePackage: "CP",
}

var refSeq atomic.Uint64

// BookingReference generates a reference number for a booking request.
func BookingReference(serviceType models.ServiceType) (string, error) {
	prefix, ok := bookingPrefixes[serviceType]
	if !ok {
		return "", fmt.Errorf("%w: unknown service type %q", ErrValidation, serviceType)
	}
	return newReference(prefix), nil
}

// QuoteReference generates a reference number for a quote request. Quote
// prefixes are the booking prefixes with a leading Q.
func QuoteReference(serviceType models.ServiceType) (string, error) {
	prefix, ok := bookingPrefixes[serviceType]
	if !ok {
		return "", fmt.Errorf("%w: unknown service type %q", ErrValidation, serviceType)
	}
	return newReference("Q" + prefix), nil
}

func newReference(prefix string) string {
	seq := refSeq.Add(1) % 1000000
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	var random int64
	if err == nil {
		random = n.Int64()
	}
	return fmt.Sprintf("%s%s%04d%06d", prefix, time.Now().UTC().Format("20060102150405"), random, seq)
}
