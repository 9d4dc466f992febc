package services

import (
	"context"
	"fmt"

	apierrors "github.com/stwalsh4118/motopark/api/internal/errors"
	"github.com/stwalsh4118/motopark/api/internal/logger"
	"github.com/stwalsh4118/motopark/api/internal/models"
	"github.com/stwalsh4118/motopark/api/internal/repository"
)

// Nearby search bounds
const (
	DefaultRadiusKm = 5.0
	MaxRadiusKm     = 100.0
	DefaultLimit    = 50
	MaxLimit        = 200
)

// Service-level errors
var (
	ErrZoneNotFound  = apierrors.New(apierrors.KindNotFound, "Parking zone not found")
	ErrNoZoneChanges = apierrors.New(apierrors.KindBadRequest, "No fields to update")
)

// NearbyQuery is a nearby search. Nil radius and limit take defaults.
type NearbyQuery struct {
	Lat      float64
	Lng      float64
	RadiusKm *float64
	Limit    *int
}

// ParkingService defines zone lookup and administration.
type ParkingService interface {
	// Nearby validates the query, applies defaults and delegates to the
	// spatial index.
	Nearby(ctx context.Context, q NearbyQuery) ([]models.ZoneWithDistance, error)

	// GetZone returns the zone or ErrZoneNotFound.
	GetZone(ctx context.Context, id string) (*models.ParkingZone, error)

	CreateZone(ctx context.Context, zone models.NewZone) (*models.ParkingZone, error)

	// UpdateZone applies a partial update; ErrNoZoneChanges when empty.
	UpdateZone(ctx context.Context, id string, update models.ZoneUpdate) (*models.ParkingZone, error)
}

type parkingService struct {
	zones   repository.ZoneRepository
	spatial repository.SpatialIndex
	log     *logger.Logger
}

// NewParkingService creates a new instance of ParkingService.
func NewParkingService(zones repository.ZoneRepository, spatial repository.SpatialIndex, log *logger.Logger) ParkingService {
	return &parkingService{
		zones:   zones,
		spatial: spatial,
		log:     log,
	}
}

func badRequest(err error) *apierrors.Error {
	return apierrors.Wrap(apierrors.KindBadRequest, err.Error(), err)
}

func (s *parkingService) Nearby(ctx context.Context, q NearbyQuery) ([]models.ZoneWithDistance, error) {
	if err := (models.Coordinate{Lat: q.Lat, Lng: q.Lng}).Validate(); err != nil {
		return nil, badRequest(err)
	}

	radius := DefaultRadiusKm
	if q.RadiusKm != nil {
		radius = *q.RadiusKm
	}
	if radius <= 0 || radius > MaxRadiusKm {
		return nil, apierrors.New(apierrors.KindBadRequest,
			fmt.Sprintf("radius must be greater than 0 and at most %g km", MaxRadiusKm))
	}

	limit := DefaultLimit
	if q.Limit != nil {
		limit = *q.Limit
	}
	if limit < 1 || limit > MaxLimit {
		return nil, apierrors.New(apierrors.KindBadRequest,
			fmt.Sprintf("limit must be between 1 and %d", MaxLimit))
	}

	zones, err := s.spatial.Nearby(ctx, q.Lat, q.Lng, radius, limit)
	if err != nil {
		s.log.Error("Nearby zone search failed", err, map[string]interface{}{
			"lat":    q.Lat,
			"lng":    q.Lng,
			"radius": radius,
		})
		return nil, err
	}

	s.log.Debug("Nearby zone search", map[string]interface{}{
		"lat":     q.Lat,
		"lng":     q.Lng,
		"radius":  radius,
		"limit":   limit,
		"results": len(zones),
	})
	return zones, nil
}

func (s *parkingService) GetZone(ctx context.Context, id string) (*models.ParkingZone, error) {
	zone, err := s.zones.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if zone == nil {
		return nil, ErrZoneNotFound
	}
	return zone, nil
}

func (s *parkingService) CreateZone(ctx context.Context, zone models.NewZone) (*models.ParkingZone, error) {
	if err := (models.Coordinate{Lat: zone.Latitude, Lng: zone.Longitude}).Validate(); err != nil {
		return nil, badRequest(err)
	}
	if zone.GooglePlacesID != nil && *zone.GooglePlacesID == "" {
		zone.GooglePlacesID = nil
	}

	created, err := s.zones.Create(ctx, zone)
	if err != nil {
		return nil, err
	}

	s.log.Info("Parking zone created", map[string]interface{}{"zone_id": created.ID})
	return created, nil
}

func (s *parkingService) UpdateZone(ctx context.Context, id string, update models.ZoneUpdate) (*models.ParkingZone, error) {
	if update.GooglePlacesID != nil && *update.GooglePlacesID == "" {
		update.GooglePlacesID = nil
		update.ClearGooglePlacesID = true
	}
	if update.IsEmpty() {
		return nil, ErrNoZoneChanges
	}

	updated, err := s.zones.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrZoneNotFound
	}

	s.log.Info("Parking zone updated", map[string]interface{}{"zone_id": id})
	return updated, nil
}
