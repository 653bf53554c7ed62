// README: Pricing schedule, fare breakdown and revenue split definitions.
package pricing

import (
	"errors"
	"fmt"

	"waslhaa/internal/types"
)

// ErrConfiguration marks a missing or invalid pricing setting.
var ErrConfiguration = errors.New("pricing configuration error")

// ConfigurationError names the offending setting.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("pricing configuration error: %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

func configErr(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Schedule is a zone's fare table. Amounts are in major currency units.
type Schedule struct {
	BasePrice        float64
	PricePerKm       float64
	MinPrice         float64
	MaxPrice         float64
	SameVillagePrice float64
	Multipliers      map[types.VehicleType]float64
	// MultiplyFlatFare applies the vehicle multiplier to the same-village fare as well.
	MultiplyFlatFare bool
}

// Validate checks bounds and that every known vehicle type has a positive multiplier.
func (s Schedule) Validate() error {
	if s.BasePrice < 0 {
		return configErr("base_price", "must be >= 0, got %v", s.BasePrice)
	}
	if s.PricePerKm < 0 {
		return configErr("price_per_km", "must be >= 0, got %v", s.PricePerKm)
	}
	if s.MinPrice < 0 {
		return configErr("min_price", "must be >= 0, got %v", s.MinPrice)
	}
	if s.MinPrice > s.MaxPrice {
		return configErr("min_price", "%v exceeds max_price %v", s.MinPrice, s.MaxPrice)
	}
	if s.SameVillagePrice < 0 {
		return configErr("same_village_price", "must be >= 0, got %v", s.SameVillagePrice)
	}
	for _, v := range types.VehicleTypes {
		m, ok := s.Multipliers[v]
		if !ok {
			return configErr("multipliers", "missing entry for %s", v)
		}
		if m <= 0 {
			return configErr("multipliers", "%s multiplier must be > 0, got %v", v, m)
		}
	}
	for v := range s.Multipliers {
		if !v.Valid() {
			return configErr("multipliers", "unknown vehicle type %q", v)
		}
	}
	return nil
}

// Config holds the platform-wide settings of the engine.
type Config struct {
	CommissionRate float64
	Currency       string
}

func (c Config) Validate() error {
	if c.CommissionRate < 0 || c.CommissionRate > 1 {
		return configErr("platform_commission_rate", "must be within [0,1], got %v", c.CommissionRate)
	}
	if c.Currency == "" {
		return configErr("currency", "is required")
	}
	return nil
}

// Breakdown explains how a price was reached.
type Breakdown struct {
	DistanceKm   float64
	FlatFare     bool
	Candidate    float64 // before the multiplier
	Multiplier   float64
	Multiplied   float64 // after the multiplier, before clamping
	ClampedToMin bool
	ClampedToMax bool
}

// Split divides a price between platform, zone operator and driver.
type Split struct {
	Commission  types.Money
	OperatorCut types.Money
	DriverCut   types.Money
}

// Total is always equal to the price the split was computed from.
func (s Split) Total() types.Money {
	return s.Commission.Add(s.OperatorCut).Add(s.DriverCut)
}

// QuoteRequest carries everything the engine needs for one trip.
type QuoteRequest struct {
	DistanceKm        float64
	Schedule          Schedule
	OperatorShareRate float64
	Vehicle           types.VehicleType
	SameVillage       bool
	// Platform overrides the engine config when set.
	Platform          *Config
}

type Quote struct {
	Price     types.Money
	Breakdown Breakdown
	Split     Split
}
