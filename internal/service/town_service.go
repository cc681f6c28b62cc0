package service

import (
	"context"
	"fmt"

	"casemap-api/internal/models"
)

// TownService contains the core business logic for town case-count lookups
type TownService struct {
	store TownStore
}

// TownStore interface for dependency injection
type TownStore interface {
	ListTowns(ctx context.Context) ([]models.Town, error)
	GetTownByName(ctx context.Context, name string) (*models.Town, error)
}

// NewTownService creates a new town service
func NewTownService(store TownStore) *TownService {
	return &TownService{store: store}
}

// ListTowns returns every town with a reported case count
func (s *TownService) ListTowns(ctx context.Context) ([]models.Town, error) {
	towns, err := s.store.ListTowns(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list towns: %w", err)
	}
	return towns, nil
}

// GetTown looks up a single town by its name
func (s *TownService) GetTown(ctx context.Context, name string) (*models.Town, error) {
	if name == "" {
		return nil, fmt.Errorf("service: town name cannot be empty")
	}

	town, err := s.store.GetTownByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get town: %w", err)
	}

	return town, nil
}
