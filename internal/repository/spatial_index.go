package repository

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/motopark/api/internal/database"
	"github.com/stwalsh4118/motopark/api/internal/models"
)

// SpatialIndex finds zones near a point. Ranking and the distance metric
// belong to the implementation.
type SpatialIndex interface {
	// Nearby returns at most limit zones within radiusKm of (lat, lng),
	// closest first. An empty result is not an error.
	Nearby(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]models.ZoneWithDistance, error)
}

// pgSpatialIndex delegates to the get_nearby_parking_zones database
// function, which is provisioned outside this service.
type pgSpatialIndex struct {
	db *database.Database
}

// NewSpatialIndex creates a SpatialIndex backed by the database.
func NewSpatialIndex(db *database.Database) SpatialIndex {
	return &pgSpatialIndex{db: db}
}

func (s *pgSpatialIndex) Nearby(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]models.ZoneWithDistance, error) {
	query := `
		SELECT id, google_places_id, latitude, longitude, total_capacity,
			current_occupancy, confidence_score, is_active, distance_km
		FROM get_nearby_parking_zones($1, $2, $3, $4)`

	rows, err := s.db.Pool.Query(ctx, query, lat, lng, radiusKm, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query nearby zones (lat=%f, lng=%f, radius=%f): %w", lat, lng, radiusKm, err)
	}
	defer rows.Close()

	zones := make([]models.ZoneWithDistance, 0, limit)
	for rows.Next() {
		var z models.ZoneWithDistance
		if err := rows.Scan(
			&z.ID,
			&z.GooglePlacesID,
			&z.Latitude,
			&z.Longitude,
			&z.TotalCapacity,
			&z.CurrentOccupancy,
			&z.ConfidenceScore,
			&z.IsActive,
			&z.DistanceKm,
		); err != nil {
			return nil, fmt.Errorf("failed to scan nearby zone: %w", err)
		}
		zones = append(zones, z)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating nearby zones: %w", err)
	}

	return zones, nil
}
