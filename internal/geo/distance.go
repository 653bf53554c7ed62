// Package geo contains pure geographic computation helpers.
package geo

import (
	"math"

	"waslhaa/internal/types"
)

// EarthRadiusKm must not change: stored order prices were computed with it.
const EarthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between a and b in kilometres,
// rounded to one decimal place (half away from zero).
func DistanceKm(a, b types.Point) float64 {
	return RoundKm(haversineKm(a.Lat, a.Lng, b.Lat, b.Lng))
}

// RoundKm rounds a distance to the 0.1 km display granularity.
func RoundKm(km float64) float64 {
	return math.Round(km*10) / 10
}

func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)

	rLat1 := degreesToRadians(lat1)
	rLat2 := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
