package domain_test

import (
	"testing"
	"time"

	"github.com/DanielPopoola/tourvista-payments/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaxTypeFor(t *testing.T) {
	now := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		birthdate time.Time
		want      domain.PaxType
	}{
		{"twelfth birthday today", time.Date(2014, 6, 15, 0, 0, 0, 0, time.UTC), domain.PaxAdult},
		{"twelfth birthday tomorrow", time.Date(2014, 6, 16, 0, 0, 0, 0, time.UTC), domain.PaxChild},
		{"first birthday today", time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), domain.PaxChild},
		{"eleven months", time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC), domain.PaxInfant},
		{"grown up", time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), domain.PaxAdult},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.PaxTypeFor(tt.birthdate, now))
		})
	}
}

func TestNewPassenger_Validation(t *testing.T) {
	now := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	born := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := domain.NewPassenger(1, "  ", born, decimal.NewFromInt(1), now)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeMissingRequiredField))

	_, err = domain.NewPassenger(1, "Asha", now.AddDate(0, 0, 1), decimal.NewFromInt(1), now)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = domain.NewPassenger(1, "Asha", born, decimal.NewFromInt(-1), now)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeInvalidAmount))

	p, err := domain.NewPassenger(1, " Asha ", born, decimal.RequireFromString("99.50"), now)
	require.NoError(t, err)
	assert.Equal(t, "Asha", p.Name)
	assert.Equal(t, domain.PaxAdult, p.Type)
}
