package models

import "time"

// UserReport is one occupancy observation of a zone. Reports are only ever
// created by the database aggregation function.
type UserReport struct {
	Timestamp     time.Time `json:"timestamp"`
	UserLatitude  *float64  `json:"user_latitude"`
	UserLongitude *float64  `json:"user_longitude"`
	ID            string    `json:"id"`
	SpotID        string    `json:"spot_id"`
	UserID        string    `json:"user_id"`
	ReportedCount int       `json:"reported_count"`
}

// NewReport is the input to report aggregation.
type NewReport struct {
	UserLatitude  *float64
	UserLongitude *float64
	SpotID        string
	UserID        string
	ReportedCount int
}

// ZoneReport is a report listed for a zone, with its reporter.
type ZoneReport struct {
	UserReport
	Email       string `json:"email"`
	IsAnonymous bool   `json:"is_anonymous"`
}

// ReportWithZone is a report in the caller's history with a snapshot of
// its zone.
type ReportWithZone struct {
	UserReport
	SpotLatitude     float64 `json:"spot_latitude"`
	SpotLongitude    float64 `json:"spot_longitude"`
	TotalCapacity    int     `json:"total_capacity"`
	CurrentOccupancy int     `json:"current_occupancy"`
}

// ReportImage is a photo attached to a report.
type ReportImage struct {
	UploadedAt time.Time `json:"uploaded_at"`
	ID         string    `json:"id"`
	ReportID   string    `json:"report_id"`
	ImageURL   string    `json:"image_url"`
	FilePath   string    `json:"-"`
}
