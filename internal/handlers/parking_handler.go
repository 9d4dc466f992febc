package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/motopark/api/internal/middleware"
	"github.com/stwalsh4118/motopark/api/internal/models"
	"github.com/stwalsh4118/motopark/api/internal/services"
)

// ParkingHandler handles parking zone requests.
type ParkingHandler struct {
	service services.ParkingService
}

// NewParkingHandler creates a new ParkingHandler instance.
func NewParkingHandler(service services.ParkingService) *ParkingHandler {
	return &ParkingHandler{
		service: service,
	}
}

// NearbyRequest represents the query parameters for the nearby endpoint.
// Radius is in kilometres.
type NearbyRequest struct {
	Lat    *float64 `form:"lat" binding:"omitnil,latitude"`
	Lng    *float64 `form:"lng" binding:"omitnil,longitude"`
	Radius *float64 `form:"radius" binding:"omitnil,gt=0,lte=100"`
	Limit  *int     `form:"limit" binding:"omitnil,min=1,max=200"`
}

// maxPlacesIDLength bounds googlePlacesId.
const maxPlacesIDLength = 255

// CreateZoneRequest is the body of POST /api/parking.
type CreateZoneRequest struct {
	GooglePlacesID *string  `json:"googlePlacesId" binding:"omitnil,max=255"`
	Latitude       *float64 `json:"latitude" binding:"required,latitude"`
	Longitude      *float64 `json:"longitude" binding:"required,longitude"`
	TotalCapacity  *int     `json:"totalCapacity" binding:"required,min=1"`
}

// UpdateZoneRequest is the body of PUT /api/parking/:id. Absent fields are
// left unchanged. A null or empty googlePlacesId clears it.
type UpdateZoneRequest struct {
	GooglePlacesID   NullableString `json:"googlePlacesId"`
	Latitude         *float64       `json:"latitude" binding:"omitnil,latitude"`
	Longitude        *float64       `json:"longitude" binding:"omitnil,longitude"`
	TotalCapacity    *int           `json:"totalCapacity" binding:"omitnil,min=1"`
	CurrentOccupancy *int           `json:"currentOccupancy" binding:"omitnil,min=0"`
	IsActive         *bool          `json:"isActive"`
}

// NullableString is a JSON string field that tells an explicit null apart
// from an absent key.
type NullableString struct {
	Value *string
	Set   bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	return json.Unmarshal(data, &n.Value)
}

// NearbyResponse represents the response for the nearby endpoint.
type NearbyResponse struct {
	Zones []models.ZoneWithDistance `json:"zones"`
	Count int                       `json:"count"`
}

// ZoneResponse wraps a single zone.
type ZoneResponse struct {
	Zone    *models.ParkingZone `json:"zone"`
	Message string              `json:"message,omitempty"`
}

// Nearby handles GET /api/parking/nearby.
func (h *ParkingHandler) Nearby(c *gin.Context) {
	var req NearbyRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		fail(c, err)
		return
	}
	// The form binder turns "lat=" into a pointer to zero.
	if req.Lat == nil || req.Lng == nil || c.Query("lat") == "" || c.Query("lng") == "" {
		fail(c, badRequest("Latitude and longitude are required"))
		return
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Debug("Processing nearby request", map[string]interface{}{
			"lat": *req.Lat,
			"lng": *req.Lng,
		})
	}

	zones, err := h.service.Nearby(c.Request.Context(), services.NearbyQuery{
		Lat:      *req.Lat,
		Lng:      *req.Lng,
		RadiusKm: req.Radius,
		Limit:    req.Limit,
	})
	if err != nil {
		fail(c, err)
		return
	}

	if zones == nil {
		zones = []models.ZoneWithDistance{}
	}
	c.JSON(http.StatusOK, NearbyResponse{Zones: zones, Count: len(zones)})
}

// Get handles GET /api/parking/:id.
func (h *ParkingHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if !validID(id) {
		fail(c, services.ErrZoneNotFound)
		return
	}

	zone, err := h.service.GetZone(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, ZoneResponse{Zone: zone})
}

// Create handles POST /api/parking.
func (h *ParkingHandler) Create(c *gin.Context) {
	var req CreateZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}

	zone, err := h.service.CreateZone(c.Request.Context(), models.NewZone{
		GooglePlacesID: req.GooglePlacesID,
		Latitude:       *req.Latitude,
		Longitude:      *req.Longitude,
		TotalCapacity:  *req.TotalCapacity,
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, ZoneResponse{Message: "Parking zone created", Zone: zone})
}

// Update handles PUT /api/parking/:id.
func (h *ParkingHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if !validID(id) {
		fail(c, services.ErrZoneNotFound)
		return
	}

	var req UpdateZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}

	update := models.ZoneUpdate{
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		TotalCapacity:    req.TotalCapacity,
		CurrentOccupancy: req.CurrentOccupancy,
		IsActive:         req.IsActive,
	}
	if req.GooglePlacesID.Set {
		places := req.GooglePlacesID.Value
		switch {
		case places == nil || *places == "":
			update.ClearGooglePlacesID = true
		case len(*places) > maxPlacesIDLength:
			fail(c, badRequest(fmt.Sprintf("googlePlacesId must be at most %d characters", maxPlacesIDLength)))
			return
		default:
			update.GooglePlacesID = places
		}
	}

	zone, err := h.service.UpdateZone(c.Request.Context(), id, update)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, ZoneResponse{Message: "Parking zone updated", Zone: zone})
}
