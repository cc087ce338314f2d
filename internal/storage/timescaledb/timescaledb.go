// Package timescaledb publishes finalized daily insolation totals to a
// TimescaleDB (or plain PostgreSQL) database.
package timescaledb

import (
	"context"
	"fmt"
	"time"

	"github.com/gridsol/insolation/internal/insolation"
	"github.com/gridsol/insolation/internal/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DailyInsolation is the published row for one finalized day.
type DailyInsolation struct {
	Day        string    `gorm:"primaryKey;column:day"`
	Rso        float64   `gorm:"column:rso"`
	RsMean     float64   `gorm:"column:rs_mean"`
	RsMin      float64   `gorm:"column:rs_min"`
	RsMax      float64   `gorm:"column:rs_max"`
	KdayMean   float64   `gorm:"column:kday_mean"`
	FinalSlot  string    `gorm:"column:final_slot"`
	RunID      string    `gorm:"column:run_id"`
	ComputedAt time.Time `gorm:"column:computed_at"`
}

// TableName customizes the table name in the DB
func (DailyInsolation) TableName() string {
	return "daily_insolation"
}

// Storage publishes daily totals over a gorm connection.
type Storage struct {
	db *gorm.DB
}

// New connects to TimescaleDB and ensures the daily_insolation table exists.
func New(ctx context.Context, connectionString string) (*Storage, error) {
	log.Info("connecting to TimescaleDB...")
	db, err := gorm.Open(postgres.Open(connectionString), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("unable to create a TimescaleDB connection: %w", err)
	}

	if err := db.WithContext(ctx).AutoMigrate(&DailyInsolation{}); err != nil {
		return nil, fmt.Errorf("could not create daily_insolation table: %w", err)
	}

	log.Info("TimescaleDB connection successful")
	return &Storage{db: db}, nil
}

// Publish upserts the finalized total for a day. Re-publishing the same day
// (a forced recompute) overwrites the previous row.
func (s *Storage) Publish(ctx context.Context, total *insolation.DailyTotal) error {
	row := DailyInsolation{
		Day:        total.Day,
		Rso:        total.Rso,
		RsMean:     total.RsMean,
		RsMin:      total.RsMin,
		RsMax:      total.RsMax,
		KdayMean:   total.KdayMean,
		FinalSlot:  total.FinalSlot,
		RunID:      total.RunID,
		ComputedAt: total.ComputedAt,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "day"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("could not publish daily total for %s: %w", total.Day, err)
	}
	return nil
}

// Close releases the underlying connection.
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
