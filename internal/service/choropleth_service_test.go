package service

import (
	"context"
	"testing"

	"casemap-api/internal/choropleth"
	"casemap-api/internal/geojson"
	"casemap-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockMapStore is a mock implementation of the MapStore interface
type MockMapStore struct {
	mock.Mock
}

// FeatureCollection implements MapStore.
func (m *MockMapStore) FeatureCollection(ctx context.Context) (*geojson.FeatureCollection, error) {
	args := m.Called(ctx)
	fc, _ := args.Get(0).(*geojson.FeatureCollection)
	return fc, args.Error(1)
}

// ListTowns implements MapStore.
func (m *MockMapStore) ListTowns(ctx context.Context) ([]models.Town, error) {
	args := m.Called(ctx)
	towns, _ := args.Get(0).([]models.Town)
	return towns, args.Error(1)
}

func testCollection(ids ...string) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Type: "FeatureCollection"}
	for _, id := range ids {
		fc.Features = append(fc.Features, &geojson.Feature{
			Type:       "Feature",
			ID:         id,
			Properties: map[string]interface{}{"name": id},
			Geometry:   geojson.Geometry{Type: "Polygon"},
		})
	}
	return fc
}

func defaultScale(t *testing.T) choropleth.Scale {
	t.Helper()
	scale, err := choropleth.NewScale(0, 150)
	require.NoError(t, err)
	return scale
}

func TestChoroplethService_BuildMap(t *testing.T) {
	floatPtr := func(v float64) *float64 { return &v }

	tests := []struct {
		name            string
		min, max        *float64
		mockFC          *geojson.FeatureCollection
		mockFCError     error
		mockTowns       []models.Town
		mockTownsError  error
		expectedScale   choropleth.Scale
		expectedMatched int
		expectError     bool
	}{
		{
			name:            "default range",
			mockFC:          testCollection("Irvine", "Orange"),
			mockTowns:       []models.Town{{Name: "Irvine", ConfirmedCases: 10}, {Name: "Orange", ConfirmedCases: 20}},
			expectedScale:   choropleth.Scale{Min: 0, Max: 150},
			expectedMatched: 2,
		},
		{
			name:            "range override",
			min:             floatPtr(10),
			max:             floatPtr(50),
			mockFC:          testCollection("Irvine"),
			mockTowns:       []models.Town{{Name: "Irvine", ConfirmedCases: 10}},
			expectedScale:   choropleth.Scale{Min: 10, Max: 50},
			expectedMatched: 1,
		},
		{
			name:        "invalid override",
			min:         floatPtr(100),
			max:         floatPtr(50),
			expectError: true,
		},
		{
			name:        "store geometry error",
			mockFCError: assert.AnError,
			expectError: true,
		},
		{
			name:           "store towns error",
			mockFC:         testCollection("Irvine"),
			mockTownsError: assert.AnError,
			expectError:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockStore := new(MockMapStore)
			service := NewChoroplethService(mockStore, "Test Map", defaultScale(t))

			if tt.mockFC != nil || tt.mockFCError != nil {
				mockStore.On("FeatureCollection", mock.Anything).Return(tt.mockFC, tt.mockFCError)
			}
			if tt.mockTowns != nil || tt.mockTownsError != nil {
				mockStore.On("ListTowns", mock.Anything).Return(tt.mockTowns, tt.mockTownsError)
			}

			data, err := service.BuildMap(context.Background(), tt.min, tt.max)

			if tt.expectError {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "Test Map", data.Title)
			assert.Equal(t, tt.expectedScale, data.Scale)
			assert.Equal(t, tt.expectedMatched, data.Coverage.MatchedCount)

			for _, f := range data.Collection.Features {
				assert.Contains(t, f.Properties, choropleth.PropertyFill)
			}

			mockStore.AssertExpectations(t)
		})
	}
}

func TestChoroplethService_BuildMap_InvertedOverride(t *testing.T) {
	mockStore := new(MockMapStore)
	service := NewChoroplethService(mockStore, "Test Map", defaultScale(t))

	// A lone max override at the configured min collapses the range; the
	// error must stay identifiable so handlers can blame the client.
	max := 0.0
	_, err := service.BuildMap(context.Background(), nil, &max)

	require.Error(t, err)
	assert.ErrorIs(t, err, choropleth.ErrInvalidRange)
	mockStore.AssertNotCalled(t, "FeatureCollection", mock.Anything)
}

func TestChoroplethService_Ready(t *testing.T) {
	tests := []struct {
		name        string
		mockTowns   []models.Town
		mockError   error
		expectError string
	}{
		{
			name:      "ready with data",
			mockTowns: []models.Town{{Name: "Irvine", ConfirmedCases: 10}},
		},
		{
			name:        "store unreachable",
			mockError:   assert.AnError,
			expectError: "store not reachable",
		},
		{
			name:        "empty store",
			mockTowns:   []models.Town{},
			expectError: "no case data loaded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockStore := new(MockMapStore)
			service := NewChoroplethService(mockStore, "Test Map", defaultScale(t))
			mockStore.On("ListTowns", mock.Anything).Return(tt.mockTowns, tt.mockError)

			err := service.Ready(context.Background())

			if tt.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
			} else {
				assert.NoError(t, err)
			}

			mockStore.AssertExpectations(t)
		})
	}
}

func TestChoroplethService_Coverage(t *testing.T) {
	mockStore := new(MockMapStore)
	service := NewChoroplethService(mockStore, "Test Map", defaultScale(t))

	mockStore.On("FeatureCollection", mock.Anything).Return(testCollection("Irvine", "Orange"), nil)
	mockStore.On("ListTowns", mock.Anything).Return([]models.Town{
		{Name: "Irvine", ConfirmedCases: 10},
		{Name: "Stanton", ConfirmedCases: 4},
	}, nil)

	report, err := service.Coverage(context.Background())

	require.NoError(t, err)
	assert.Equal(t, models.CoverageReport{
		MatchedCount:         1,
		TownsWithoutGeometry: []string{"Stanton"},
		FeaturesWithoutCases: []string{"Orange"},
	}, report)
	mockStore.AssertExpectations(t)
}
