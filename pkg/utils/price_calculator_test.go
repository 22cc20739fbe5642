package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rate(v float64) *float64 { return &v }

func interval(hours float64) (time.Time, time.Time) {
	start := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	return start, start.Add(time.Duration(hours * float64(time.Hour)))
}

func TestCalculateRentalCost_DailyRate(t *testing.T) {
	rates := RateTable{PerDay: rate(2000)}

	start, end := interval(3 * 24)
	res, err := CalculateRentalCost(rates, start, end)
	require.NoError(t, err)
	assert.Equal(t, 6000.0, res.TotalCost)
	assert.Equal(t, "daily", res.PricingType)
	assert.Equal(t, 3.0, res.Units)

	// 30 hours bills two full days
	start, end = interval(30)
	res, err = CalculateRentalCost(rates, start, end)
	require.NoError(t, err)
	assert.Equal(t, 4000.0, res.TotalCost)
	assert.Equal(t, 2.0, res.Units)
}

func TestCalculateRentalCost_HourlyRate(t *testing.T) {
	rates := RateTable{PerHour: rate(150)}

	start, end := interval(4)
	res, err := CalculateRentalCost(rates, start, end)
	require.NoError(t, err)
	assert.Equal(t, 600.0, res.TotalCost)
	assert.Equal(t, "hourly", res.PricingType)

	// Fractional hours round up to the next full hour
	start, end = interval(2.5)
	res, err = CalculateRentalCost(rates, start, end)
	require.NoError(t, err)
	assert.Equal(t, 450.0, res.TotalCost)
}

func TestCalculateRentalCost_WeeklyRate(t *testing.T) {
	rates := RateTable{PerWeek: rate(10000), PerDay: rate(2000)}

	// Exactly one week
	start, end := interval(7 * 24)
	res, err := CalculateRentalCost(rates, start, end)
	require.NoError(t, err)
	assert.Equal(t, 10000.0, res.TotalCost)
	assert.Equal(t, "weekly", res.PricingType)

	// Ten days bill two weeks at the weekly rate
	start, end = interval(10 * 24)
	res, err = CalculateRentalCost(rates, start, end)
	require.NoError(t, err)
	assert.Equal(t, 20000.0, res.TotalCost)
	assert.Equal(t, 2.0, res.Units)

	// Below a week the daily rate applies
	start, end = interval(2 * 24)
	res, err = CalculateRentalCost(rates, start, end)
	require.NoError(t, err)
	assert.Equal(t, "daily", res.PricingType)
	assert.Equal(t, 4000.0, res.TotalCost)
}

func TestCalculateRentalCost_ProportionalFallback(t *testing.T) {
	// Short rental against a table with no hourly rate: the daily rate is
	// billed pro rata, rounded up to the currency's 2 decimal places.
	rates := RateTable{PerDay: rate(2000)}
	start, end := interval(6)
	res, err := CalculateRentalCost(rates, start, end)
	require.NoError(t, err)
	assert.Equal(t, "daily", res.PricingType)
	assert.Equal(t, 500.0, res.TotalCost) // 6/24 * 2000

	// Only a weekly rate set: pro rata against the week
	rates = RateTable{PerWeek: rate(8400)}
	start, end = interval(30)
	res, err = CalculateRentalCost(rates, start, end)
	require.NoError(t, err)
	assert.Equal(t, "weekly", res.PricingType)
	assert.Equal(t, 1500.0, res.TotalCost) // 30/168 * 8400

	// Rounding goes up, never down
	rates = RateTable{PerDay: rate(1000)}
	start, end = interval(1)
	res, err = CalculateRentalCost(rates, start, end)
	require.NoError(t, err)
	assert.Equal(t, 41.67, res.TotalCost) // 1/24 * 1000 = 41.666...
}

func TestCalculateRentalCost_NoApplicableRate(t *testing.T) {
	start, end := interval(24)
	_, err := CalculateRentalCost(RateTable{}, start, end)
	assert.ErrorIs(t, err, ErrNoApplicableRate)
}

func TestCalculateRentalCost_InvalidInterval(t *testing.T) {
	start, _ := interval(1)
	_, err := CalculateRentalCost(RateTable{PerHour: rate(100)}, start, start)
	assert.Error(t, err)

	_, err = CalculateRentalCost(RateTable{PerHour: rate(100)}, start, start.Add(-time.Hour))
	assert.Error(t, err)
}

func TestCalculateRentalCost_MonotonicInDuration(t *testing.T) {
	tables := map[string]RateTable{
		"hourly only": {PerHour: rate(120)},
		"daily only":  {PerDay: rate(2000)},
		"weekly only": {PerWeek: rate(9000)},
	}

	for name, rates := range tables {
		prev := 0.0
		for hours := 1.0; hours <= 400; hours += 3.5 {
			start, end := interval(hours)
			res, err := CalculateRentalCost(rates, start, end)
			require.NoError(t, err, name)
			assert.GreaterOrEqual(t, res.TotalCost, prev,
				"%s: cost decreased at %v hours", name, hours)
			prev = res.TotalCost
		}
	}
}

func TestCalculateRentalCost_Deterministic(t *testing.T) {
	rates := RateTable{PerHour: rate(99.99), PerDay: rate(1750), PerWeek: rate(9999)}
	start, end := interval(77)

	first, err := CalculateRentalCost(rates, start, end)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := CalculateRentalCost(rates, start, end)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
