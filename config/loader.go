package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the global application configuration
var Config = Default()

// Birmingham, as used by the city's open data feed.
var defaultBBox = []float64{-2.1691, 52.3088, -1.5930, 52.6801}

// Default returns the built-in configuration
func Default() AppConfig {
	var cfg AppConfig
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills every zero value with its default
func (c *AppConfig) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 16182
	}
	if c.Overpass.BaseURL == "" {
		c.Overpass.BaseURL = "http://www.overpass-api.de/api/xapi"
	}
	if len(c.Overpass.BBox) == 0 {
		c.Overpass.BBox = append([]float64(nil), defaultBBox...)
	}
	if c.Overpass.TimeoutMS == 0 {
		c.Overpass.TimeoutMS = 60000
	}
	if c.Flow.FeedURL == "" {
		c.Flow.FeedURL = "http://butc.opendata.onl/UTMC%20Flow.xml"
	}
	if c.Flow.Timezone == "" {
		c.Flow.Timezone = "Europe/London"
	}
	if c.Flow.MaxAgeHours == 0 {
		c.Flow.MaxAgeHours = 24
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = "."
	}
	if c.Cache.LookupTTLSeconds == 0 {
		c.Cache.LookupTTLSeconds = 3600
	}
	if c.Cache.SnapshotTTLSeconds == 0 {
		c.Cache.SnapshotTTLSeconds = 300
	}
}

// Validate checks the configuration against its struct tags
func (c AppConfig) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return err
	}
	bb := c.Overpass.BBox
	if bb[0] >= bb[2] || bb[1] >= bb[3] {
		return fmt.Errorf("overpass bbox %v: min corner must be south-west of max corner", bb)
	}
	if bb[1] < -90 || bb[3] > 90 {
		return fmt.Errorf("overpass bbox %v: latitude out of range", bb)
	}
	return nil
}

// Location loads the flow feed's time zone
func (c FlowConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// LoadAppConfig loads and validates the application configuration from config.yml
func LoadAppConfig() error {
	paths := []string{"config.yml", "./config/config.yml"}
	var err error
	for _, p := range paths {
		if _, statErr := os.Stat(p); statErr != nil {
			err = statErr
			continue
		}
		return LoadAppConfigFrom(p)
	}
	return err
}

// LoadAppConfigFrom loads and validates the configuration at path into Config
func LoadAppConfigFrom(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	cfg, err := Parse(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	Config = cfg
	return nil
}

// Parse decodes YAML, applies defaults and validates the result
func Parse(data []byte) (AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return AppConfig{}, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}
