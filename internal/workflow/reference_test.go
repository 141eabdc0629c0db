package workflow

import (
	"strings"
	"testing"

	"github.com/adomtravels/adomtravels-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingReferencePrefixes(t *testing.T) {
	cases := map[models.ServiceType]string{
		models.ServiceTypeFlight:          "FL",
		models.ServiceTypeHotel:           "HT",
		models.ServiceTypeTour:            "TR",
		models.ServiceTypeVisa:            "VS",
		models.ServiceTypeCompletePackage: "CP",
	}
	for serviceType, prefix := range cases {
		ref, err := BookingReference(serviceType)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(ref, prefix), "reference %s should start with %s", ref, prefix)
		assert.LessOrEqual(t, len(ref), 50)
	}
}

func TestQuoteReferencePrefixes(t *testing.T) {
	ref, err := QuoteReference(models.ServiceTypeHotel)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "QHT"), "reference %s should start with QHT", ref)
	assert.LessOrEqual(t, len(ref), 50)
}

func TestReferenceUnknownServiceType(t *testing.T) {
	_, err := BookingReference(models.ServiceType("horseback"))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = QuoteReference(models.ServiceType(""))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestReferenceUniquenessUnderBurst(t *testing.T) {
	// 10k references for the same service type inside one timestamp tick
	// must not collide; the sequence component guarantees it.
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		ref, err := BookingReference(models.ServiceTypeFlight)
		require.NoError(t, err)
		_, dup := seen[ref]
		require.False(t, dup, "duplicate reference %s", ref)
		seen[ref] = struct{}{}
	}
}
