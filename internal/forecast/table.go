package forecast

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"
)

// Coordinate is the geographic point a forecast is requested for.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.4f,%.4f", c.Latitude, c.Longitude)
}

// Row holds the daily variables for one calendar day.
type Row struct {
	Date             time.Time
	WeatherCode      int
	TemperatureMax   float64
	TemperatureMin   float64
	Sunrise          time.Time
	PrecipitationSum float64
	RainSum          float64
}

// Table is a chronologically ordered forecast, one row per day. It is
// built once from an API response and never mutated afterwards.
type Table []Row

var csvHeader = []string{
	"date",
	"weather_code",
	"temperature_2m_max",
	"temperature_2m_min",
	"sunrise",
	"precipitation_sum",
	"rain_sum",
}

// CSV renders the table as comma-separated text with a header line,
// dates in RFC 3339 UTC.
func (t Table) CSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("writing csv header: %w", err)
	}

	for _, row := range t {
		record := []string{
			row.Date.UTC().Format(time.RFC3339),
			strconv.Itoa(row.WeatherCode),
			formatFloat(row.TemperatureMax),
			formatFloat(row.TemperatureMin),
			row.Sunrise.UTC().Format(time.RFC3339),
			formatFloat(row.PrecipitationSum),
			formatFloat(row.RainSum),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("writing csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}
	return buf.Bytes(), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
