package handler

import (
	"context"
	"errors"
	"net/http"

	"casemap-api/internal/models"
	"casemap-api/internal/repository"

	"github.com/gin-gonic/gin"
)

// TownHandler handles town case-count requests
type TownHandler struct {
	service TownService
}

// Service interface for dependency injection
type TownService interface {
	ListTowns(ctx context.Context) ([]models.Town, error)
	GetTown(ctx context.Context, name string) (*models.Town, error)
}

// NewTownHandler creates a new town handler
func NewTownHandler(svc TownService) *TownHandler {
	return &TownHandler{service: svc}
}

// List handles GET /api/towns requests
func (h *TownHandler) List(c *gin.Context) {
	towns, err := h.service.ListTowns(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if towns == nil {
		towns = []models.Town{}
	}
	c.JSON(http.StatusOK, towns)
}

// Get handles GET /api/towns/:name requests
func (h *TownHandler) Get(c *gin.Context) {
	name := c.Param("name")

	town, err := h.service.GetTown(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, repository.ErrTownNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "town not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, town)
}
