package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mkravets/weather-report/internal/forecast"
)

type fakeFetcher struct {
	table forecast.Table
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(ctx context.Context, coord forecast.Coordinate) (forecast.Table, error) {
	f.calls++
	return f.table, f.err
}

type fakeStore struct {
	err   error
	calls int
	table forecast.Table
	name  string
}

func (s *fakeStore) Save(ctx context.Context, table forecast.Table, tableName string) error {
	s.calls++
	s.table = table
	s.name = tableName
	return s.err
}

type fakeNotifier struct {
	err       error
	calls     int
	message   string
	table     forecast.Table
	recipient string
}

func (n *fakeNotifier) Send(ctx context.Context, message string, table forecast.Table, recipient string) error {
	n.calls++
	n.message = message
	n.table = table
	n.recipient = recipient
	return n.err
}

func fixedTable() forecast.Table {
	return forecast.Table{{Date: time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)}}
}

func TestRunHappyPath(t *testing.T) {
	fetcher := &fakeFetcher{table: fixedTable()}
	store := &fakeStore{}
	notifier := &fakeNotifier{}

	r := NewRunner(fetcher, store, notifier, "weather_forecast", zap.NewNop())
	r.Run(context.Background(), forecast.Coordinate{Latitude: 40.7143, Longitude: -74.006}, "team@example.com")

	assert.Equal(t, 1, fetcher.calls)
	require.Equal(t, 1, store.calls)
	assert.Equal(t, "weather_forecast", store.name)
	assert.Equal(t, fetcher.table, store.table)

	require.Equal(t, 1, notifier.calls)
	assert.Equal(t, Message, notifier.message)
	assert.Equal(t, fetcher.table, notifier.table)
	assert.Equal(t, "team@example.com", notifier.recipient)
}

func TestRunSkipsDownstreamOnFetchFailure(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("api unreachable")}
	store := &fakeStore{}
	notifier := &fakeNotifier{}

	r := NewRunner(fetcher, store, notifier, "weather_forecast", zap.NewNop())
	r.Run(context.Background(), forecast.Coordinate{}, "team@example.com")

	assert.Equal(t, 0, store.calls, "store must not run without forecast data")
	assert.Equal(t, 0, notifier.calls, "notifier must not run without forecast data")
}

func TestRunContinuesPastStoreFailure(t *testing.T) {
	fetcher := &fakeFetcher{table: fixedTable()}
	store := &fakeStore{err: errors.New("disk full")}
	notifier := &fakeNotifier{}

	r := NewRunner(fetcher, store, notifier, "weather_forecast", zap.NewNop())
	r.Run(context.Background(), forecast.Coordinate{}, "team@example.com")

	assert.Equal(t, 1, notifier.calls, "notification still runs when storage fails")
}

func TestRunSwallowsNotifierFailure(t *testing.T) {
	fetcher := &fakeFetcher{table: fixedTable()}
	store := &fakeStore{}
	notifier := &fakeNotifier{err: errors.New("451 blocked")}

	r := NewRunner(fetcher, store, notifier, "weather_forecast", zap.NewNop())

	assert.NotPanics(t, func() {
		r.Run(context.Background(), forecast.Coordinate{}, "team@example.com")
	})
	assert.Equal(t, 1, store.calls)
}
