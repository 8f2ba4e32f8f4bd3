package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	geoapp "github.com/stockroute/backend/internal/application/geo"
)

// GeoManager manages cities and sectors
type GeoManager interface {
	CreateCity(ctx context.Context, req geoapp.CreateCityRequest) (*geoapp.CityResponse, error)
	ListCities(ctx context.Context) ([]geoapp.CityResponse, error)
	DeleteCity(ctx context.Context, id uuid.UUID) error
	CreateSector(ctx context.Context, req geoapp.CreateSectorRequest) (*geoapp.SectorResponse, error)
	ListSectorsByCity(ctx context.Context, cityID uuid.UUID) ([]geoapp.SectorResponse, error)
	DeleteSector(ctx context.Context, id uuid.UUID) error
}

// GeoHandler handles city and sector requests
type GeoHandler struct {
	BaseHandler
	geoService GeoManager
}

// NewGeoHandler creates a new geo handler
func NewGeoHandler(geoService GeoManager) *GeoHandler {
	return &GeoHandler{geoService: geoService}
}

// CreateCity handles POST /cities
func (h *GeoHandler) CreateCity(c *gin.Context) {
	var req geoapp.CreateCityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	city, err := h.geoService.CreateCity(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, city)
}

// ListCities handles GET /cities
func (h *GeoHandler) ListCities(c *gin.Context) {
	cities, err := h.geoService.ListCities(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cities)
}

// DeleteCity handles DELETE /cities/:id. Its sectors go with it.
func (h *GeoHandler) DeleteCity(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.geoService.DeleteCity(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// CreateSector handles POST /sectors
func (h *GeoHandler) CreateSector(c *gin.Context) {
	var req geoapp.CreateSectorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	sector, err := h.geoService.CreateSector(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sector)
}

// ListSectors handles GET /sectors/:cityId/sectors
func (h *GeoHandler) ListSectors(c *gin.Context) {
	cityID, ok := h.pathID(c, "cityId")
	if !ok {
		return
	}
	sectors, err := h.geoService.ListSectorsByCity(c.Request.Context(), cityID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sectors)
}

// DeleteSector handles DELETE /sectors/:id
func (h *GeoHandler) DeleteSector(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.geoService.DeleteSector(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
