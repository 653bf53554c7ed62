// README: Registry serves catalog lookups and is swapped atomically on reload.
package zone

import (
	"fmt"
	"sync/atomic"

	"waslhaa/internal/geo"
	"waslhaa/internal/types"
)

type Registry struct {
	catalog atomic.Pointer[Catalog]
}

func NewRegistry(c Catalog) (*Registry, error) {
	r := &Registry{}
	if err := r.Replace(c); err != nil {
		return nil, err
	}
	return r, nil
}

// Replace installs a new catalog. An invalid catalog leaves the current one in place.
func (r *Registry) Replace(c Catalog) error {
	if err := c.Validate(); err != nil {
		return err
	}
	zones := make([]Zone, len(c.Zones))
	for i, z := range c.Zones {
		z.Platform = c.Pricing
		zones[i] = z
	}
	c.Zones = zones
	r.catalog.Store(&c)
	return nil
}

func (r *Registry) Snapshot() Catalog {
	return *r.catalog.Load()
}

func (r *Registry) Zone(id string) (Zone, error) {
	for _, z := range r.catalog.Load().Zones {
		if z.ID == id {
			return z, nil
		}
	}
	return Zone{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (r *Registry) DefaultZone() Zone {
	c := r.catalog.Load()
	for _, z := range c.Zones {
		if z.ID == c.DefaultZoneID {
			return z
		}
	}
	// Validate guarantees the default zone exists.
	return c.Zones[0]
}

// VillageFor returns the nearest village whose radius covers p.
func (r *Registry) VillageFor(p types.Point) (Village, bool) {
	var (
		best  Village
		bestD float64
		found bool
	)
	for _, v := range r.catalog.Load().Villages {
		d := geo.DistanceKm(p, v.Center)
		if d > v.RadiusKm {
			continue
		}
		if !found || d < bestD {
			best, bestD, found = v, d, true
		}
	}
	return best, found
}

// SameVillage reports whether both points fall inside the same village.
func (r *Registry) SameVillage(a, b types.Point) bool {
	va, ok := r.VillageFor(a)
	if !ok {
		return false
	}
	vb, ok := r.VillageFor(b)
	return ok && va.ID == vb.ID
}
