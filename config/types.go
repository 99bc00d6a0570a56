package config

import "time"

// ServerConfig contains server configuration
type ServerConfig struct {
	Port int `yaml:"port" validate:"gt=0,lte=65535"`
}

// OverpassConfig contains the road graph source configuration
type OverpassConfig struct {
	BaseURL   string    `yaml:"baseURL" validate:"required,url"`
	BBox      []float64 `yaml:"bbox" validate:"len=4,dive,gte=-180,lte=180"` // minLon minLat maxLon maxLat
	TimeoutMS int       `yaml:"timeoutMS" validate:"gte=0"`
}

// FlowConfig contains the live flow feed configuration
type FlowConfig struct {
	FeedURL     string `yaml:"feedURL" validate:"required"` // URL or local file path
	Timezone    string `yaml:"timezone" validate:"required,timezone"`
	MaxAgeHours int    `yaml:"maxAgeHours" validate:"gt=0"`
}

// CacheConfig contains on-disk cache configuration
type CacheConfig struct {
	Dir                string `yaml:"dir"`
	Disabled           bool   `yaml:"disabled"`
	LookupTTLSeconds   int    `yaml:"lookupTTLSeconds" validate:"gte=0"`
	SnapshotTTLSeconds int    `yaml:"snapshotTTLSeconds" validate:"gte=0"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Overpass OverpassConfig `yaml:"overpass"`
	Flow     FlowConfig     `yaml:"flow"`
	Cache    CacheConfig    `yaml:"cache"`
}

// Timeout returns the HTTP timeout for graph and feed requests.
func (c OverpassConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// MaxAge returns how old a flow reading may be.
func (c FlowConfig) MaxAge() time.Duration {
	return time.Duration(c.MaxAgeHours) * time.Hour
}

// LookupTTL returns the freshness window of the channel lookup cache.
func (c CacheConfig) LookupTTL() time.Duration {
	if c.Disabled {
		return 0
	}
	return time.Duration(c.LookupTTLSeconds) * time.Second
}

// SnapshotTTL returns the freshness window of the snapshot cache.
func (c CacheConfig) SnapshotTTL() time.Duration {
	if c.Disabled {
		return 0
	}
	return time.Duration(c.SnapshotTTLSeconds) * time.Second
}
