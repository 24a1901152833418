// Package store persists a forecast table into a file-backed SQLite
// database with full-replace semantics: every save drops and recreates
// the target table, so a run never appends to older data.
package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mkravets/weather-report/internal/forecast"
)

type SQLite struct {
	path   string
	logger *zap.Logger
}

func New(path string, logger *zap.Logger) *SQLite {
	return &SQLite{path: path, logger: logger}
}

// record is the row shape written to the database. RowIndex is the
// generated positional index column; it is assigned explicitly, so
// auto-increment must stay off or gorm drops the zero-valued first
// index from the INSERT.
type record struct {
	RowIndex         int64     `gorm:"column:row_index;primaryKey;autoIncrement:false"`
	Date             time.Time `gorm:"column:date"`
	WeatherCode      int       `gorm:"column:weather_code"`
	TemperatureMax   float64   `gorm:"column:temperature_2m_max"`
	TemperatureMin   float64   `gorm:"column:temperature_2m_min"`
	Sunrise          time.Time `gorm:"column:sunrise"`
	PrecipitationSum float64   `gorm:"column:precipitation_sum"`
	RainSum          float64   `gorm:"column:rain_sum"`
}

func (record) TableName() string {
	return "weather_forecast"
}

// Save writes table into tableName, creating the database file when it
// does not exist yet and discarding any prior contents of that table.
func (s *SQLite) Save(ctx context.Context, table forecast.Table, tableName string) error {
	db, err := gorm.Open(sqlite.Open(s.path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return fmt.Errorf("opening database %s: %w", s.path, err)
	}
	defer func() {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
	}()

	db = db.WithContext(ctx)

	if db.Migrator().HasTable(tableName) {
		if err := db.Migrator().DropTable(tableName); err != nil {
			return fmt.Errorf("dropping table %s: %w", tableName, err)
		}
	}
	if err := db.Table(tableName).Migrator().CreateTable(&record{}); err != nil {
		return fmt.Errorf("creating table %s: %w", tableName, err)
	}

	records := make([]record, len(table))
	for i, row := range table {
		records[i] = record{
			RowIndex:         int64(i),
			Date:             row.Date,
			WeatherCode:      row.WeatherCode,
			TemperatureMax:   row.TemperatureMax,
			TemperatureMin:   row.TemperatureMin,
			Sunrise:          row.Sunrise,
			PrecipitationSum: row.PrecipitationSum,
			RainSum:          row.RainSum,
		}
	}

	if len(records) > 0 {
		if err := db.Table(tableName).Create(&records).Error; err != nil {
			return fmt.Errorf("inserting %d rows into %s: %w", len(records), tableName, err)
		}
	}

	s.logger.Debug("forecast rows written",
		zap.String("table", tableName),
		zap.Int("rows", len(records)))

	return nil
}
