package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

var ErrInvalidBoundingBox = errors.New("invalid bounding box")

// BoundingBox is a closed latitude/longitude rectangle backed by orb.Bound.
type BoundingBox struct {
	bound orb.Bound
}

// NewBoundingBox validates and builds a box. Min must not exceed max on either axis.
func NewBoundingBox(latMin, latMax, lngMin, lngMax float64) (BoundingBox, error) {
	if err := (Position{Latitude: latMin, Longitude: lngMin}).Validate(); err != nil {
		return BoundingBox{}, fmt.Errorf("%w: %v", ErrInvalidBoundingBox, err)
	}
	if err := (Position{Latitude: latMax, Longitude: lngMax}).Validate(); err != nil {
		return BoundingBox{}, fmt.Errorf("%w: %v", ErrInvalidBoundingBox, err)
	}
	if latMin > latMax || lngMin > lngMax {
		return BoundingBox{}, fmt.Errorf("%w: min exceeds max", ErrInvalidBoundingBox)
	}
	return BoundingBox{bound: orb.Bound{
		Min: orb.Point{lngMin, latMin},
		Max: orb.Point{lngMax, latMax},
	}}, nil
}

// MustBoundingBox is NewBoundingBox for static tables; it panics on invalid input.
func MustBoundingBox(latMin, latMax, lngMin, lngMax float64) BoundingBox {
	b, err := NewBoundingBox(latMin, latMax, lngMin, lngMax)
	if err != nil {
		panic(err)
	}
	return b
}

func (b BoundingBox) LatMin() float64 { return b.bound.Bottom() }
func (b BoundingBox) LatMax() float64 { return b.bound.Top() }
func (b BoundingBox) LngMin() float64 { return b.bound.Left() }
func (b BoundingBox) LngMax() float64 { return b.bound.Right() }

// Contains reports whether p lies inside the box, edges included.
func (b BoundingBox) Contains(p Position) bool {
	return b.bound.Contains(p.Point())
}

// Clamp saturates p at the box edges. Values are never wrapped or reflected.
func (b BoundingBox) Clamp(p Position) Position {
	return Position{
		Latitude:  math.Max(b.LatMin(), math.Min(b.LatMax(), p.Latitude)),
		Longitude: math.Max(b.LngMin(), math.Min(b.LngMax(), p.Longitude)),
	}
}

// Interpolate maps fractions u (latitude) and v (longitude) in [0, 1] onto the box.
// Fractions outside that range are clamped.
func (b BoundingBox) Interpolate(u, v float64) Position {
	return b.Clamp(Position{
		Latitude:  b.LatMin() + u*(b.LatMax()-b.LatMin()),
		Longitude: b.LngMin() + v*(b.LngMax()-b.LngMin()),
	})
}

// Center returns the midpoint of the box.
func (b BoundingBox) Center() Position {
	c := b.bound.Center()
	return Position{Latitude: c[1], Longitude: c[0]}
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("lat[%g,%g] lng[%g,%g]", b.LatMin(), b.LatMax(), b.LngMin(), b.LngMax())
}
