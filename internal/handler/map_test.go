package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"casemap-api/internal/choropleth"
	"casemap-api/internal/observability"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMapHandler_Page(t *testing.T) {
	gin.SetMode(gin.TestMode)

	renderer, err := choropleth.NewRenderer()
	require.NoError(t, err)

	t.Run("renders the page", func(t *testing.T) {
		mockSvc := new(MockChoroplethService)
		handler := NewMapHandler(mockSvc, renderer, observability.NewMetricsForTesting())
		mockSvc.On("BuildMap", mock.Anything, mock.Anything, mock.Anything).Return(sampleMapData(t), nil)

		req := httptest.NewRequest(http.MethodGet, "/map", nil)
		w := httptest.NewRecorder()

		c, _ := gin.CreateTestContext(w)
		c.Request = req

		handler.Page(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, w.Body.String(), "<title>Test Map</title>")
		assert.Contains(t, w.Body.String(), "Irvine")
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc := new(MockChoroplethService)
		handler := NewMapHandler(mockSvc, renderer, observability.NewMetricsForTesting())
		mockSvc.On("BuildMap", mock.Anything, mock.Anything, mock.Anything).Return(nil, assert.AnError)

		req := httptest.NewRequest(http.MethodGet, "/map", nil)
		w := httptest.NewRecorder()

		c, _ := gin.CreateTestContext(w)
		c.Request = req

		handler.Page(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "internal server error")
		mockSvc.AssertExpectations(t)
	})
}
