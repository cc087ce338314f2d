// Package storage defines the publishing interface for finalized daily
// totals and its backend implementations.
package storage

import (
	"context"

	"github.com/gridsol/insolation/internal/insolation"
)

// DailyTotalSink receives each finalized daily total exactly once per day.
// Publishing is best-effort: the artifact cache remains the durable record.
type DailyTotalSink interface {
	Publish(ctx context.Context, total *insolation.DailyTotal) error
	Close() error
}
