package main

import (
	"context"
	"net/http"

	"casemap-api/internal/choropleth"
	"casemap-api/internal/config"
	"casemap-api/internal/handler"
	"casemap-api/internal/observability"
	"casemap-api/internal/repository"
	"casemap-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	scale, err := choropleth.NewScale(cfg.ColorRangeMin, cfg.ColorRangeMax)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid color range")
	}

	// Storage backend: PostGIS rows loaded by the importer, or the two input
	// files read directly.
	var store interface {
		service.TownStore
		service.MapStore
	}
	switch cfg.Storage {
	case config.StoragePostgres:
		conn, err := pgxpool.New(context.Background(), cfg.DBSource)
		if err != nil {
			log.Fatal().Err(err).Msg("cannot connect to db")
		}
		defer conn.Close()
		store = repository.NewPostgresStore(conn)
		logger.Info().Msg("serving from postgres")
	default:
		memStore, err := repository.NewMemoryStore(cfg.GeoJSONFile, cfg.CasesFile)
		if err != nil {
			log.Fatal().Err(err).Msg("cannot load input files")
		}
		store = memStore
		logger.Info().
			Str("geojson", cfg.GeoJSONFile).
			Str("cases", cfg.CasesFile).
			Msg("serving from input files")
	}

	renderer, err := choropleth.NewRenderer()
	if err != nil {
		log.Fatal().Err(err).Msg("cannot build renderer")
	}

	// Initialize layers
	townService := service.NewTownService(store)
	choroplethService := service.NewChoroplethService(store, cfg.MapTitle, scale)

	// Log join quality once at startup so mismatched names are visible
	// without hitting the coverage endpoint.
	if report, err := choroplethService.Coverage(context.Background()); err != nil {
		logger.Warn().Err(err).Msg("coverage check failed")
	} else {
		metrics.ObserveJoin(report)
		if !report.Clean() {
			logger.Warn().
				Int("matched", report.MatchedCount).
				Strs("towns_without_geometry", report.TownsWithoutGeometry).
				Strs("features_without_cases", report.FeaturesWithoutCases).
				Msg("case table and boundaries do not fully match")
		}
	}

	townHandler := handler.NewTownHandler(townService)
	choroplethHandler := handler.NewChoroplethHandler(choroplethService, metrics)
	mapHandler := handler.NewMapHandler(choroplethService, renderer, metrics)

	r := gin.Default()
	r.Use(metrics.RequestDuration())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := choroplethService.Ready(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/map", mapHandler.Page)
	r.GET("/api/choropleth", choroplethHandler.GeoJSON)
	r.GET("/api/coverage", choroplethHandler.Coverage)
	r.GET("/api/towns", townHandler.List)
	r.GET("/api/towns/:name", townHandler.Get)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Run(cfg.ServerAddress)
}
