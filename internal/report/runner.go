// Package report wires the fetch, store and notify steps into the
// one-shot pipeline. Every step's failure is logged and swallowed; the
// process outcome is visible only through the log file.
package report

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mkravets/weather-report/internal/forecast"
)

// Message is the fixed body text of every report email.
const Message = "Attached weather_report.csv contains the weather forecast for the next 2 weeks."

type Fetcher interface {
	Fetch(ctx context.Context, coord forecast.Coordinate) (forecast.Table, error)
}

type Store interface {
	Save(ctx context.Context, table forecast.Table, tableName string) error
}

type Notifier interface {
	Send(ctx context.Context, message string, table forecast.Table, recipient string) error
}

type Runner struct {
	fetcher   Fetcher
	store     Store
	notifier  Notifier
	tableName string
	logger    *zap.Logger
}

func NewRunner(fetcher Fetcher, store Store, notifier Notifier, tableName string, logger *zap.Logger) *Runner {
	return &Runner{
		fetcher:   fetcher,
		store:     store,
		notifier:  notifier,
		tableName: tableName,
		logger:    logger,
	}
}

// Run executes fetch, store and notify strictly in sequence. When the
// fetch yields no table, the downstream steps are skipped: storing or
// mailing an empty placeholder would only mask the failure.
func (r *Runner) Run(ctx context.Context, coord forecast.Coordinate, recipient string) {
	log := r.logger.With(zap.String("run_id", uuid.NewString()))

	log.Info("starting weather report run",
		zap.Float64("latitude", coord.Latitude),
		zap.Float64("longitude", coord.Longitude),
		zap.String("recipient", recipient))

	table, err := r.fetcher.Fetch(ctx, coord)
	if err != nil {
		log.Error("error occurred while fetching weather data", zap.Error(err))
		log.Warn("skipping storage and notification, no forecast data for this run")
		return
	}
	log.Info("weather data fetched", zap.Int("days", len(table)))

	if err := r.store.Save(ctx, table, r.tableName); err != nil {
		log.Error("error occurred while storing data into database", zap.Error(err))
	} else {
		log.Info("data successfully stored", zap.String("table", r.tableName))
	}

	if err := r.notifier.Send(ctx, Message, table, recipient); err != nil {
		log.Error("error occurred while sending email", zap.Error(err))
	} else {
		log.Info("email sent successfully", zap.String("recipient", recipient))
	}
}
