package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/motopark/api/internal/database"
	"github.com/stwalsh4118/motopark/api/internal/models"
)

// ZoneRepository defines the data access operations for parking zones.
type ZoneRepository interface {
	// FindByID returns the zone with its availability, or nil, nil when it
	// does not exist.
	FindByID(ctx context.Context, id string) (*models.ParkingZone, error)

	// Create inserts a zone and returns it with availability.
	Create(ctx context.Context, zone models.NewZone) (*models.ParkingZone, error)

	// Update applies the non-nil fields of update. It returns nil, nil when
	// the zone does not exist.
	Update(ctx context.Context, id string, update models.ZoneUpdate) (*models.ParkingZone, error)
}

type zoneRepository struct {
	db *database.Database
}

// NewZoneRepository creates a new instance of ZoneRepository.
func NewZoneRepository(db *database.Database) ZoneRepository {
	return &zoneRepository{db: db}
}

const zoneColumns = `id, google_places_id, latitude, longitude, total_capacity, current_occupancy,
	available_spots, confidence_score, is_active, created_at, updated_at, last_report_at`

func scanZone(row pgx.Row) (*models.ParkingZone, error) {
	var z models.ParkingZone
	err := row.Scan(
		&z.ID,
		&z.GooglePlacesID,
		&z.Latitude,
		&z.Longitude,
		&z.TotalCapacity,
		&z.CurrentOccupancy,
		&z.AvailableSpots,
		&z.ConfidenceScore,
		&z.IsActive,
		&z.CreatedAt,
		&z.UpdatedAt,
		&z.LastReportAt,
	)
	if err != nil {
		return nil, err
	}
	return &z, nil
}

func (r *zoneRepository) FindByID(ctx context.Context, id string) (*models.ParkingZone, error) {
	query := `SELECT ` + zoneColumns + ` FROM parking_zone_availability WHERE id = $1`

	zone, err := scanZone(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query zone %s: %w", id, err)
	}
	return zone, nil
}

func (r *zoneRepository) Create(ctx context.Context, zone models.NewZone) (*models.ParkingZone, error) {
	query := `
		INSERT INTO parking_zones (google_places_id, latitude, longitude, total_capacity)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	var id string
	err := r.db.Pool.QueryRow(ctx, query,
		zone.GooglePlacesID,
		zone.Latitude,
		zone.Longitude,
		zone.TotalCapacity,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create zone: %w", err)
	}

	created, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("zone %s missing after insert", id)
	}
	return created, nil
}

func (r *zoneRepository) Update(ctx context.Context, id string, update models.ZoneUpdate) (*models.ParkingZone, error) {
	query, args, ok := buildZoneUpdateQuery(id, update)
	if !ok {
		return nil, fmt.Errorf("no fields to update for zone %s", id)
	}

	var updatedID string
	if err := r.db.Pool.QueryRow(ctx, query, args...).Scan(&updatedID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update zone %s: %w", id, err)
	}

	return r.FindByID(ctx, updatedID)
}

// buildZoneUpdateQuery builds an UPDATE touching only the set fields of
// update. ok is false when no field is set.
func buildZoneUpdateQuery(id string, update models.ZoneUpdate) (query string, args []interface{}, ok bool) {
	var sets []string

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	switch {
	case update.ClearGooglePlacesID:
		add("google_places_id", nil)
	case update.GooglePlacesID != nil:
		add("google_places_id", *update.GooglePlacesID)
	}
	if update.Latitude != nil {
		add("latitude", *update.Latitude)
	}
	if update.Longitude != nil {
		add("longitude", *update.Longitude)
	}
	if update.TotalCapacity != nil {
		add("total_capacity", *update.TotalCapacity)
	}
	if update.CurrentOccupancy != nil {
		add("current_occupancy", *update.CurrentOccupancy)
	}
	if update.IsActive != nil {
		add("is_active", *update.IsActive)
	}

	if len(sets) == 0 {
		return "", nil, false
	}

	args = append(args, id)
	query = fmt.Sprintf(
		"UPDATE parking_zones SET %s, updated_at = NOW() WHERE id = $%d RETURNING id",
		strings.Join(sets, ", "),
		len(args),
	)
	return query, args, true
}
