// README: Zone resolution for pickup points.
package zone

import "waslhaa/internal/types"

// Resolver finds the zone serving a point.
type Resolver interface {
	FindZoneForPoint(p types.Point) (Zone, error)
}

// SingleZoneResolver resolves every point to the catalog's default zone.
// A geofencing resolver can replace it without touching callers.
type SingleZoneResolver struct {
	Registry *Registry
}

func NewSingleZoneResolver(r *Registry) *SingleZoneResolver {
	return &SingleZoneResolver{Registry: r}
}

func (s *SingleZoneResolver) FindZoneForPoint(p types.Point) (Zone, error) {
	if err := p.Validate(); err != nil {
		return Zone{}, err
	}
	return s.Registry.DefaultZone(), nil
}
