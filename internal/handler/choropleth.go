package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"casemap-api/internal/choropleth"
	"casemap-api/internal/models"
	"casemap-api/internal/observability"
	"casemap-api/internal/service"

	"github.com/gin-gonic/gin"
)

// ChoroplethHandler serves the joined choropleth as GeoJSON along with the
// join coverage report.
type ChoroplethHandler struct {
	service ChoroplethService
	metrics *observability.Metrics
}

// Service interface for dependency injection
type ChoroplethService interface {
	BuildMap(ctx context.Context, min, max *float64) (*service.MapData, error)
	Coverage(ctx context.Context) (models.CoverageReport, error)
}

// NewChoroplethHandler creates a new choropleth handler
func NewChoroplethHandler(svc ChoroplethService, metrics *observability.Metrics) *ChoroplethHandler {
	return &ChoroplethHandler{service: svc, metrics: metrics}
}

// GeoJSON handles GET /api/choropleth requests. Optional min and max query
// parameters override the configured color range.
func (h *ChoroplethHandler) GeoJSON(c *gin.Context) {
	min, max, ok := parseRange(c)
	if !ok {
		return
	}

	start := time.Now()
	data, err := h.service.BuildMap(c.Request.Context(), min, max)
	if err != nil {
		// An override can still invert the effective range against the
		// configured default; that is client input, not a server fault.
		if errors.Is(err, choropleth.ErrInvalidRange) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid color range"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	h.metrics.ChoroplethBuildDuration.Observe(time.Since(start).Seconds())
	h.metrics.ObserveJoin(data.Coverage)
	c.JSON(http.StatusOK, data.Collection)
}

// Coverage handles GET /api/coverage requests
func (h *ChoroplethHandler) Coverage(c *gin.Context) {
	report, err := h.service.Coverage(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// parseRange extracts optional min/max overrides, writing an error response
// and returning ok=false on malformed input.
func parseRange(c *gin.Context) (min, max *float64, ok bool) {
	if s := c.Query("min"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid min format"})
			return nil, nil, false
		}
		min = &v
	}
	if s := c.Query("max"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid max format"})
			return nil, nil, false
		}
		max = &v
	}
	if min != nil && max != nil && *max <= *min {
		c.JSON(http.StatusBadRequest, gin.H{"error": "max must be greater than min"})
		return nil, nil, false
	}
	return min, max, true
}
