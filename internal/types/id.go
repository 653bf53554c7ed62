// README: Identifier and coordinate value objects.
package types

import "fmt"

type ID string

// Point is an immutable WGS84 coordinate.
type Point struct {
	Lat float64
	Lng float64
}

// Validate rejects coordinates outside the WGS84 range.
func (p Point) Validate() error {
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("latitude %f out of range", p.Lat)
	}
	if p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("longitude %f out of range", p.Lng)
	}
	return nil
}
