package config

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads the complete configuration from the SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := &ConfigData{}

	err := s.db.QueryRow(`
		SELECT latitude, longitude, elevation, turbidity, tz_offset_minutes
		FROM site
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default')`,
	).Scan(
		&config.Site.Latitude,
		&config.Site.Longitude,
		&config.Site.Elevation,
		&config.Site.Turbidity,
		&config.Site.TZOffsetMinutes,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load site config: %w", err)
	}

	var lookback sql.NullInt64
	err = s.db.QueryRow(`
		SELECT snapshot_dir, pattern, artifact_db, interval_minutes, lookback_days, retain
		FROM pipeline
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default')`,
	).Scan(
		&config.Pipeline.SnapshotDir,
		&config.Pipeline.Pattern,
		&config.Pipeline.ArtifactDB,
		&config.Pipeline.IntervalMinutes,
		&lookback,
		&config.Pipeline.Retain,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load pipeline config: %w", err)
	}
	if lookback.Valid {
		days := int(lookback.Int64)
		config.Pipeline.LookbackDays = &days
	}

	var connStr sql.NullString
	err = s.db.QueryRow(`
		SELECT connection_string FROM storage_timescaledb
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default')`,
	).Scan(&connStr)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}
	if connStr.Valid && connStr.String != "" {
		config.Storage.TimescaleDB = &TimescaleDBData{ConnectionString: connStr.String}
	}

	var listenAddr sql.NullString
	err = s.db.QueryRow(`
		SELECT listen_addr FROM rest
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default')`,
	).Scan(&listenAddr)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to load REST config: %w", err)
	}
	if listenAddr.Valid && listenAddr.String != "" {
		config.REST = &RESTData{ListenAddr: listenAddr.String}
	}

	config.applyDefaults()
	return config, nil
}

// IsReadOnly returns false; SQLite configurations support runtime editing
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	return s.db.Close()
}
