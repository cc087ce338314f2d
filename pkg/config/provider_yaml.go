package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from a YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	// Load into a temporary struct with YAML tags
	var yamlConfig struct {
		Site struct {
			Latitude        float64 `yaml:"latitude"`
			Longitude       float64 `yaml:"longitude"`
			Elevation       float64 `yaml:"elevation"`
			Turbidity       float64 `yaml:"turbidity"`
			TZOffsetMinutes int     `yaml:"tz_offset_minutes"`
		} `yaml:"site"`
		Pipeline struct {
			SnapshotDir     string `yaml:"snapshot_dir"`
			Pattern         string `yaml:"pattern"`
			ArtifactDB      string `yaml:"artifact_db"`
			IntervalMinutes int    `yaml:"interval_minutes"`
			LookbackDays    *int   `yaml:"lookback_days"`
			Retain          bool   `yaml:"retain"`
		} `yaml:"pipeline"`
		Storage struct {
			TimescaleDB *struct {
				ConnectionString string `yaml:"connection_string"`
			} `yaml:"timescaledb"`
		} `yaml:"storage"`
		REST *struct {
			ListenAddr string `yaml:"listen_addr"`
		} `yaml:"rest"`
	}

	if err := yaml.Unmarshal(cfgFile, &yamlConfig); err != nil {
		return nil, err
	}

	// Convert to the internal format
	config := &ConfigData{
		Site: SiteData{
			Latitude:        yamlConfig.Site.Latitude,
			Longitude:       yamlConfig.Site.Longitude,
			Elevation:       yamlConfig.Site.Elevation,
			Turbidity:       yamlConfig.Site.Turbidity,
			TZOffsetMinutes: yamlConfig.Site.TZOffsetMinutes,
		},
		Pipeline: PipelineData{
			SnapshotDir:     yamlConfig.Pipeline.SnapshotDir,
			Pattern:         yamlConfig.Pipeline.Pattern,
			ArtifactDB:      yamlConfig.Pipeline.ArtifactDB,
			IntervalMinutes: yamlConfig.Pipeline.IntervalMinutes,
			LookbackDays:    yamlConfig.Pipeline.LookbackDays,
			Retain:          yamlConfig.Pipeline.Retain,
		},
	}

	if yamlConfig.Storage.TimescaleDB != nil {
		config.Storage.TimescaleDB = &TimescaleDBData{
			ConnectionString: yamlConfig.Storage.TimescaleDB.ConnectionString,
		}
	}
	if yamlConfig.REST != nil {
		config.REST = &RESTData{
			ListenAddr: yamlConfig.REST.ListenAddr,
		}
	}

	config.applyDefaults()
	return config, nil
}

// IsReadOnly returns true; YAML configurations are not editable at runtime
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML providers
func (y *YAMLProvider) Close() error {
	return nil
}
