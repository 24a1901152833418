package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/mkravets/weather-report/internal/config"
	"github.com/mkravets/weather-report/internal/forecast"
)

// dailyVariables is the fixed set requested from the forecast API, in
// the order the response arrays are consumed.
var dailyVariables = []string{
	"weather_code",
	"temperature_2m_max",
	"temperature_2m_min",
	"sunrise",
	"precipitation_sum",
	"rain_sum",
}

// Client fetches a multi-day daily forecast from the Open-Meteo API.
type Client struct {
	http   *resty.Client
	days   int
	logger *zap.Logger
}

// New builds a client with the retry schedule from cfg. A non-nil
// transport (typically the caching one) replaces the default.
func New(cfg config.ForecastConfig, transport http.RoundTripper, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.Timeout) * time.Second).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(time.Duration(cfg.RetryWaitMS) * time.Millisecond).
		SetRetryMaxWaitTime(10 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})

	if transport != nil {
		httpClient.SetTransport(transport)
	}

	return &Client{
		http:   httpClient,
		days:   cfg.Days,
		logger: logger,
	}
}

// openMeteoDaily mirrors the daily block of the JSON response with
// timeformat=unixtime, so every column arrives as a numeric array.
type openMeteoDaily struct {
	Time             []int64   `json:"time"`
	WeatherCode      []int     `json:"weather_code"`
	Temperature2MMax []float64 `json:"temperature_2m_max"`
	Temperature2MMin []float64 `json:"temperature_2m_min"`
	Sunrise          []int64   `json:"sunrise"`
	PrecipitationSum []float64 `json:"precipitation_sum"`
	RainSum          []float64 `json:"rain_sum"`
}

type openMeteoResponse struct {
	Daily  openMeteoDaily `json:"daily"`
	Reason string         `json:"reason"`
}

// Fetch requests the daily forecast for coord over the configured
// horizon. Coordinates are forwarded as-is; the API's rejection of a
// malformed pair surfaces as an error.
func (c *Client) Fetch(ctx context.Context, coord forecast.Coordinate) (forecast.Table, error) {
	var payload openMeteoResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"latitude":      fmt.Sprintf("%v", coord.Latitude),
			"longitude":     fmt.Sprintf("%v", coord.Longitude),
			"daily":         strings.Join(dailyVariables, ","),
			"timezone":      "auto",
			"forecast_days": fmt.Sprintf("%d", c.days),
			"timeformat":    "unixtime",
		}).
		SetResult(&payload).
		SetError(&payload).
		Get("/v1/forecast")
	if err != nil {
		return nil, fmt.Errorf("requesting forecast: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("forecast request failed with status %d: %s", resp.StatusCode(), payload.Reason)
	}

	table, err := buildTable(payload.Daily)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("forecast response processed",
		zap.String("coordinate", coord.String()),
		zap.Int("days", len(table)))

	return table, nil
}

// buildTable turns the columnar daily payload into one row per day.
// The date column is taken positionally from the reported timestamps,
// so it lines up 1:1 with every value array even when local days are
// not uniformly 24 hours (DST transitions). Timestamps must still be
// strictly increasing.
func buildTable(daily openMeteoDaily) (forecast.Table, error) {
	if len(daily.Time) == 0 {
		return nil, fmt.Errorf("forecast response carries no daily timestamps")
	}

	dates := make([]time.Time, len(daily.Time))
	for i, ts := range daily.Time {
		dates[i] = time.Unix(ts, 0).UTC()
		if i > 0 && !dates[i].After(dates[i-1]) {
			return nil, fmt.Errorf("daily timestamps are not strictly increasing at position %d", i)
		}
	}

	for name, length := range map[string]int{
		"weather_code":       len(daily.WeatherCode),
		"temperature_2m_max": len(daily.Temperature2MMax),
		"temperature_2m_min": len(daily.Temperature2MMin),
		"sunrise":            len(daily.Sunrise),
		"precipitation_sum":  len(daily.PrecipitationSum),
		"rain_sum":           len(daily.RainSum),
	} {
		if length != len(dates) {
			return nil, fmt.Errorf("column %s has %d values for %d days", name, length, len(dates))
		}
	}

	table := make(forecast.Table, len(dates))
	for i, date := range dates {
		table[i] = forecast.Row{
			Date:             date,
			WeatherCode:      daily.WeatherCode[i],
			TemperatureMax:   daily.Temperature2MMax[i],
			TemperatureMin:   daily.Temperature2MMin[i],
			Sunrise:          time.Unix(daily.Sunrise[i], 0).UTC(),
			PrecipitationSum: daily.PrecipitationSum[i],
			RainSum:          daily.RainSum[i],
		}
	}
	return table, nil
}
