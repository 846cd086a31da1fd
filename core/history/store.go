// Package history keeps the nightly feeds so that each simulation can
// continue from the previous day and operators can look back at past data.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/d1vyadharsh1n1/MetroX/core/model"
)

// DateLayout is the layout of DailyRecord.Date.
const DateLayout = "2006-01-02"

// ErrEmpty is returned by Latest when nothing has been saved yet.
var ErrEmpty = errors.New("no history recorded")

// Store persists daily feeds keyed by date.
type Store interface {
	// SaveDay replaces every record stored for date.
	SaveDay(ctx context.Context, date string, recs []model.DailyRecord) error
	// Day returns the records of one date ordered by train id.
	Day(ctx context.Context, date string) ([]model.DailyRecord, error)
	// Latest returns the most recent date and its records.
	Latest(ctx context.Context) (string, []model.DailyRecord, error)
	// Query returns records of trainID, or of all trains when empty, whose
	// date lies in [start,end], ordered by date then train id.
	Query(ctx context.Context, trainID string, start, end time.Time) ([]model.DailyRecord, error)
	Close() error
}

// Day truncates t to a date string.
func Day(t time.Time) string { return t.UTC().Format(DateLayout) }
