// Package config defines the pipeline configuration model and its loadable
// backends (YAML files and SQLite databases).
package config

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Configuration management
	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Site     SiteData     `json:"site"`
	Pipeline PipelineData `json:"pipeline"`
	Storage  StorageData  `json:"storage,omitempty"`
	REST     *RESTData    `json:"rest,omitempty"`
}

// SiteData holds the fixed geometry and atmosphere of the observation domain
type SiteData struct {
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	Elevation       float64 `json:"elevation"`
	Turbidity       float64 `json:"turbidity,omitempty"`
	TZOffsetMinutes int     `json:"tz_offset_minutes"`
}

// PipelineData holds the integration pipeline options. LookbackDays is a
// pointer because zero is meaningful (a current-day-only floor window) and
// must be distinguishable from an unset field.
type PipelineData struct {
	SnapshotDir     string `json:"snapshot_dir"`
	Pattern         string `json:"pattern,omitempty"`
	ArtifactDB      string `json:"artifact_db,omitempty"`
	IntervalMinutes int    `json:"interval_minutes,omitempty"`
	LookbackDays    *int   `json:"lookback_days,omitempty"`
	Retain          bool   `json:"retain,omitempty"`
}

// StorageData holds the configuration for daily-total publishing backends
type StorageData struct {
	TimescaleDB *TimescaleDBData `json:"timescaledb,omitempty"`
}

// TimescaleDBData configures the TimescaleDB publisher
type TimescaleDBData struct {
	ConnectionString string `json:"connection_string"`
}

// RESTData configures the optional read API
type RESTData struct {
	ListenAddr string `json:"listen_addr"`
}

// applyDefaults fills unset optional fields
func (c *ConfigData) applyDefaults() {
	if c.Site.Turbidity == 0 {
		c.Site.Turbidity = 2.0
	}
	if c.Pipeline.IntervalMinutes == 0 {
		c.Pipeline.IntervalMinutes = 20
	}
	if c.Pipeline.LookbackDays == nil {
		lookback := 14
		c.Pipeline.LookbackDays = &lookback
	}
	if c.Pipeline.ArtifactDB == "" {
		c.Pipeline.ArtifactDB = "artifacts.db"
	}
}
