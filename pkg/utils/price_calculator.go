package utils

import (
	"errors"
	"math"
	"time"
)

// ErrNoApplicableRate is returned when the rate table has no entry at all.
var ErrNoApplicableRate = errors.New("no applicable rate")

const (
	HoursPerDay  = 24.0
	HoursPerWeek = 7 * 24.0
)

// RateTable holds the optional per-unit prices attached to an equipment.
// A nil entry means the owner did not offer that granularity.
type RateTable struct {
	PerHour *float64 `json:"perHour,omitempty"`
	PerDay  *float64 `json:"perDay,omitempty"`
	PerWeek *float64 `json:"perWeek,omitempty"`
}

// RentalCostResult contains the calculated cost and its breakdown
type RentalCostResult struct {
	TotalCost     float64 `json:"totalCost"`
	DurationHours float64 `json:"durationHours"`
	PricingType   string  `json:"pricingType"` // hourly, daily or weekly
	Units         float64 `json:"units"`       // billed hours, days or weeks
	Rate          float64 `json:"rate"`        // rate applied per unit
}

// CalculateRentalCost derives the total charge for the interval [start, end)
// from the equipment's rate table. The coarsest rate whose period fits the
// duration wins, with billed units rounded up; when the natural rate for the
// duration is missing, the next coarser rate that is set is applied
// proportionally. The result is deterministic for a given table and interval.
func CalculateRentalCost(rates RateTable, start, end time.Time) (RentalCostResult, error) {
	duration := end.Sub(start).Hours()
	if duration <= 0 {
		return RentalCostResult{}, errors.New("end time must be after start time")
	}

	res := RentalCostResult{DurationHours: duration}

	switch {
	case duration >= HoursPerWeek && rates.PerWeek != nil:
		res.PricingType = "weekly"
		res.Rate = *rates.PerWeek
		res.Units = math.Ceil(duration / HoursPerWeek)
		res.TotalCost = res.Units * res.Rate

	case duration >= HoursPerDay && rates.PerDay != nil:
		res.PricingType = "daily"
		res.Rate = *rates.PerDay
		res.Units = math.Ceil(duration / HoursPerDay)
		res.TotalCost = res.Units * res.Rate

	case rates.PerHour != nil:
		res.PricingType = "hourly"
		res.Rate = *rates.PerHour
		res.Units = math.Ceil(duration)
		res.TotalCost = res.Units * res.Rate

	// No hourly rate: bill the next coarser rate pro rata.
	case rates.PerDay != nil:
		res.PricingType = "daily"
		res.Rate = *rates.PerDay
		res.Units = duration / HoursPerDay
		res.TotalCost = roundUpCurrency(res.Units * res.Rate)

	case rates.PerWeek != nil:
		res.PricingType = "weekly"
		res.Rate = *rates.PerWeek
		res.Units = duration / HoursPerWeek
		res.TotalCost = roundUpCurrency(res.Units * res.Rate)

	default:
		return RentalCostResult{}, ErrNoApplicableRate
	}

	res.TotalCost = math.Round(res.TotalCost*100) / 100
	return res, nil
}

// roundUpCurrency rounds up to 2 decimal places of currency.
func roundUpCurrency(v float64) float64 {
	return math.Ceil(v*100) / 100
}
