package models

import (
	"errors"
	"fmt"
)

// ErrInvalidCoordinates is returned for coordinates outside WGS84 bounds.
var ErrInvalidCoordinates = errors.New("invalid coordinates")

// Coordinate is a WGS84 point.
type Coordinate struct {
	Lat float64
	Lng float64
}

// Validate checks latitude is within [-90,90] and longitude within [-180,180].
func (c Coordinate) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90, got %f", ErrInvalidCoordinates, c.Lat)
	}
	if c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180, got %f", ErrInvalidCoordinates, c.Lng)
	}
	return nil
}
