package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/sevadesk/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAmount(t *testing.T) {
	r := NewResolver(catalog.Default())

	tests := []struct {
		name      string
		category  catalog.Category
		frequency Frequency
		want      string
	}{
		{"abhishekam single", 1, FrequencySingle, "16"},
		{"abhishekam weekly", 1, FrequencyWeekly, "112"},
		{"abhishekam monthly", 1, FrequencyMonthly, "480"},
		{"annadanam weekly", 7, FrequencyWeekly, "7812"},
		{"rudrabhishekam single", 8, FrequencySingle, "2000"},
		{"empty frequency", 2, "", "11"},
		{"unrecognized frequency", 19, "YEARLY", "35"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ResolveAmount(tt.category, tt.frequency)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestResolveAmountUnknownCategory(t *testing.T) {
	r := NewResolver(catalog.Default())

	_, err := r.ResolveAmount(42, FrequencySingle)
	assert.ErrorIs(t, err, catalog.ErrUnknownCategory)
}

func TestResolveValidity(t *testing.T) {
	now := time.Date(2024, time.January, 31, 10, 30, 0, 0, time.UTC)

	assert.Equal(t, now.Add(24*time.Hour), ResolveValidity(FrequencySingle, now))
	assert.Equal(t, now.Add(24*time.Hour), ResolveValidity("", now))
	assert.Equal(t, now.Add(7*24*time.Hour), ResolveValidity(FrequencyWeekly, now))
	assert.Equal(t, now.Add(30*24*time.Hour), ResolveValidity(FrequencyMonthly, now))
}

func TestParseFrequency(t *testing.T) {
	f, ok := ParseFrequency("")
	assert.True(t, ok)
	assert.Equal(t, FrequencySingle, f)

	f, ok = ParseFrequency(" weekly ")
	assert.True(t, ok)
	assert.Equal(t, FrequencyWeekly, f)

	_, ok = ParseFrequency("DAILY")
	assert.False(t, ok)
}
