// Package geo provides the spatial math the analysis needs: great-circle
// distance and circle area, plus coordinate sanity checks.
package geo

import (
	"math"

	"github.com/ikjoobang/xivix-best-map/internal/model"
)

const earthRadiusM = 6371000.0

// HaversineMeters returns the great-circle distance between two WGS84
// points in meters.
func HaversineMeters(a, b model.Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusM * math.Asin(math.Sqrt(h))
}

// CircleAreaKm2 returns the area in km² of a circle with the given radius
// in meters.
func CircleAreaKm2(radiusMeters int) float64 {
	rKm := float64(radiusMeters) / 1000
	return math.Pi * rKm * rKm
}

// ValidCoordinate reports whether the point is a plausible WGS84 position.
func ValidCoordinate(c model.Coordinate) bool {
	return c.Lon >= -180 && c.Lon <= 180 && c.Lat >= -90 && c.Lat <= 90
}
