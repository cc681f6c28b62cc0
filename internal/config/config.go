package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Storage backends the API can serve from.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds all service settings, read from configs/app.env with
// environment variable overrides.
type Config struct {
	DBSource      string  `mapstructure:"DB_SOURCE"`
	ServerAddress string  `mapstructure:"SERVER_ADDRESS"`
	Storage       string  `mapstructure:"STORAGE"`
	CasesFile     string  `mapstructure:"CASES_FILE"`
	GeoJSONFile   string  `mapstructure:"GEOJSON_FILE"`
	MapTitle      string  `mapstructure:"MAP_TITLE"`
	ColorRangeMin float64 `mapstructure:"COLOR_RANGE_MIN"`
	ColorRangeMax float64 `mapstructure:"COLOR_RANGE_MAX"`
	LogLevel      string  `mapstructure:"LOG_LEVEL"`
	LogFormat     string  `mapstructure:"LOG_FORMAT"`
}

// LoadConfig reads configuration from an app.env file in the given directory,
// letting environment variables override file values.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")

	viper.SetDefault("SERVER_ADDRESS", ":8080")
	viper.SetDefault("STORAGE", StorageMemory)
	viper.SetDefault("CASES_FILE", "cases.xlsx")
	viper.SetDefault("GEOJSON_FILE", "towns.geojson")
	viper.SetDefault("MAP_TITLE", "Confirmed COVID-19 Cases in Orange County (By City)")
	viper.SetDefault("COLOR_RANGE_MIN", 0)
	viper.SetDefault("COLOR_RANGE_MAX", 150)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")

	viper.AutomaticEnv()

	if err = viper.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env cover everything.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: failed to read config file: %w", err)
		}
	}

	if err = viper.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("config: failed to unmarshal config: %w", err)
	}

	if err = config.validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

func (c Config) validate() error {
	switch c.Storage {
	case StoragePostgres:
		if c.DBSource == "" {
			return errors.New("config: DB_SOURCE is required when STORAGE is postgres")
		}
	case StorageMemory:
		if c.CasesFile == "" || c.GeoJSONFile == "" {
			return errors.New("config: CASES_FILE and GEOJSON_FILE are required when STORAGE is memory")
		}
	default:
		return fmt.Errorf("config: unknown STORAGE backend %q", c.Storage)
	}

	if c.ColorRangeMax <= c.ColorRangeMin {
		return fmt.Errorf("config: COLOR_RANGE_MAX (%v) must exceed COLOR_RANGE_MIN (%v)", c.ColorRangeMax, c.ColorRangeMin)
	}

	return nil
}
