// README: Zone and village catalog definitions.
package zone

import (
	"errors"
	"fmt"

	"waslhaa/internal/modules/pricing"
	"waslhaa/internal/types"
)

var ErrNotFound = errors.New("zone not found")

// Village is static reference data used for same-village fares.
type Village struct {
	ID       string
	Name     string
	Center   types.Point
	RadiusKm float64
}

// Zone is a service area owned by one operator with one pricing schedule.
type Zone struct {
	ID                string
	Name              string
	OperatorID        string
	OperatorShareRate float64
	Center            types.Point
	Pricing           pricing.Schedule
	// Platform is the catalog-wide config this zone was loaded with.
	Platform          pricing.Config
}

// Catalog is the complete, externally configured pricing catalog.
type Catalog struct {
	Pricing       pricing.Config
	DefaultZoneID string
	Zones         []Zone
	Villages      []Village
}

// Validate checks referential integrity and every zone's schedule.
func (c Catalog) Validate() error {
	if err := c.Pricing.Validate(); err != nil {
		return err
	}
	if len(c.Zones) == 0 {
		return &pricing.ConfigurationError{Field: "zones", Reason: "at least one zone is required"}
	}
	seen := make(map[string]struct{}, len(c.Zones))
	for _, z := range c.Zones {
		if z.ID == "" {
			return &pricing.ConfigurationError{Field: "zones", Reason: "zone id is required"}
		}
		if _, dup := seen[z.ID]; dup {
			return &pricing.ConfigurationError{Field: "zones", Reason: fmt.Sprintf("duplicate zone id %q", z.ID)}
		}
		seen[z.ID] = struct{}{}
		if z.OperatorShareRate < 0 || c.Pricing.CommissionRate+z.OperatorShareRate > 1 {
			return &pricing.ConfigurationError{
				Field:  "zones." + z.ID + ".operator_share_rate",
				Reason: fmt.Sprintf("%v with commission %v is outside [0,1]", z.OperatorShareRate, c.Pricing.CommissionRate),
			}
		}
		if err := z.Pricing.Validate(); err != nil {
			return fmt.Errorf("zone %s: %w", z.ID, err)
		}
	}
	if _, ok := seen[c.DefaultZoneID]; !ok {
		return &pricing.ConfigurationError{Field: "default_zone", Reason: fmt.Sprintf("unknown zone %q", c.DefaultZoneID)}
	}
	villages := make(map[string]struct{}, len(c.Villages))
	for _, v := range c.Villages {
		if v.ID == "" {
			return &pricing.ConfigurationError{Field: "villages", Reason: "village id is required"}
		}
		if _, dup := villages[v.ID]; dup {
			return &pricing.ConfigurationError{Field: "villages", Reason: fmt.Sprintf("duplicate village id %q", v.ID)}
		}
		villages[v.ID] = struct{}{}
		if v.RadiusKm <= 0 {
			return &pricing.ConfigurationError{Field: "villages." + v.ID + ".radius_km", Reason: "must be > 0"}
		}
	}
	return nil
}
