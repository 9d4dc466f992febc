package models

import "time"

// ParkingZone is a parking location with its capacity and the occupancy
// last computed from user reports.
// Field order is optimized for memory alignment.
type ParkingZone struct {
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	GooglePlacesID   *string    `json:"google_places_id"`
	LastReportAt     *time.Time `json:"last_report_at,omitempty"`
	ID               string     `json:"id"`
	Latitude         float64    `json:"latitude"`
	Longitude        float64    `json:"longitude"`
	ConfidenceScore  float64    `json:"confidence_score"`
	TotalCapacity    int        `json:"total_capacity"`
	CurrentOccupancy int        `json:"current_occupancy"`
	AvailableSpots   int        `json:"available_spots"`
	IsActive         bool       `json:"is_active"`
}

// ZoneWithDistance is a nearby search result.
type ZoneWithDistance struct {
	GooglePlacesID   *string `json:"google_places_id"`
	ID               string  `json:"id"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	ConfidenceScore  float64 `json:"confidence_score"`
	DistanceKm       float64 `json:"distance_km"`
	TotalCapacity    int     `json:"total_capacity"`
	CurrentOccupancy int     `json:"current_occupancy"`
	IsActive         bool    `json:"is_active"`
}

// NewZone is the data needed to create a zone.
type NewZone struct {
	GooglePlacesID *string
	Latitude       float64
	Longitude      float64
	TotalCapacity  int
}

// ZoneUpdate holds the fields of a partial zone update. Nil fields are
// left unchanged. ClearGooglePlacesID sets the place id to NULL.
type ZoneUpdate struct {
	GooglePlacesID      *string
	Latitude            *float64
	Longitude           *float64
	TotalCapacity       *int
	CurrentOccupancy    *int
	IsActive            *bool
	ClearGooglePlacesID bool
}

// IsEmpty reports whether no field is set.
func (u ZoneUpdate) IsEmpty() bool {
	return u.GooglePlacesID == nil &&
		!u.ClearGooglePlacesID &&
		u.Latitude == nil &&
		u.Longitude == nil &&
		u.TotalCapacity == nil &&
		u.CurrentOccupancy == nil &&
		u.IsActive == nil
}
