package handler

import (
	"net/http"
	"time"

	"casemap-api/internal/choropleth"
	"casemap-api/internal/observability"

	"github.com/gin-gonic/gin"
)

// MapHandler serves the interactive choropleth page.
type MapHandler struct {
	service  ChoroplethService
	renderer *choropleth.Renderer
	metrics  *observability.Metrics
}

// NewMapHandler creates a new map page handler
func NewMapHandler(svc ChoroplethService, renderer *choropleth.Renderer, metrics *observability.Metrics) *MapHandler {
	return &MapHandler{service: svc, renderer: renderer, metrics: metrics}
}

// Page handles GET /map requests
func (h *MapHandler) Page(c *gin.Context) {
	start := time.Now()
	data, err := h.service.BuildMap(c.Request.Context(), nil, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	h.metrics.ChoroplethBuildDuration.Observe(time.Since(start).Seconds())

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := h.renderer.Render(c.Writer, data.Collection, data.Title, data.Scale); err != nil {
		// Headers are already written; nothing useful left to send.
		_ = c.Error(err)
		return
	}

	h.metrics.MapsRendered.Inc()
	h.metrics.ObserveJoin(data.Coverage)
}
