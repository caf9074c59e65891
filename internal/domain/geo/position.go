package geo

import (
	"errors"
	"math"

	"github.com/paulmach/orb"
)

// KmPerDegree is the equirectangular approximation used for short simulated hops.
const KmPerDegree = 111.0

var (
	ErrInvalidLatitude  = errors.New("latitude must be between -90 and 90")
	ErrInvalidLongitude = errors.New("longitude must be between -180 and 180")
)

// Position is a WGS84 latitude/longitude pair.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewPosition validates the coordinate ranges.
func NewPosition(latitude, longitude float64) (Position, error) {
	p := Position{Latitude: latitude, Longitude: longitude}
	if err := p.Validate(); err != nil {
		return Position{}, err
	}
	return p, nil
}

func (p Position) Validate() error {
	if math.IsNaN(p.Latitude) || p.Latitude < -90 || p.Latitude > 90 {
		return ErrInvalidLatitude
	}
	if math.IsNaN(p.Longitude) || p.Longitude < -180 || p.Longitude > 180 {
		return ErrInvalidLongitude
	}
	return nil
}

// Point returns the orb representation (x = longitude, y = latitude).
func (p Position) Point() orb.Point {
	return orb.Point{p.Longitude, p.Latitude}
}

// Offset moves the position by distanceKm along headingDeg (0 = north, 90 = east).
// The longitude step is not scaled by cos(latitude); over a few metres per tick
// inside a city-sized box the error is irrelevant.
func (p Position) Offset(distanceKm, headingDeg float64) Position {
	rad := headingDeg * math.Pi / 180
	return Position{
		Latitude:  p.Latitude + distanceKm*math.Cos(rad)/KmPerDegree,
		Longitude: p.Longitude + distanceKm*math.Sin(rad)/KmPerDegree,
	}
}
