// Package geo implements the great-circle geometry behind the geofence check.
//
// Coordinates are signed decimal degrees. Stored locations follow the
// geospatial-index convention of longitude-first pairs; the Point struct keeps
// the fields named so callers cannot transpose them silently.
package geo

import "math"

// earthRadiusM is the mean Earth radius of the spherical approximation, in
// meters.
const earthRadiusM = 6371000.0

// Point is a geographic coordinate in signed decimal degrees.
type Point struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Coordinates returns the point as a [longitude, latitude] pair, the ordering
// used by the wire and storage formats.
func (p Point) Coordinates() [2]float64 {
	return [2]float64{p.Lon, p.Lat}
}

// Distance returns the great-circle distance between a and b in meters, via
// the haversine formula on a spherical Earth. Symmetric in its arguments and
// precise to well under a meter at campus-scale separations.
func Distance(a, b Point) float64 {
	latA := radians(a.Lat)
	latB := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(latA)*math.Cos(latB)*sinLon*sinLon

	return 2 * earthRadiusM * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// WithinRadius reports whether p lies within radiusM meters of center.
// Depends only on great-circle separation, never on bearing.
func WithinRadius(center, p Point, radiusM float64) bool {
	return Distance(center, p) <= radiusM
}

func radians(deg float64) float64 {
	return deg * (math.Pi / 180)
}
