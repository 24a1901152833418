package cmd

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mkravets/weather-report/internal/config"
	"github.com/mkravets/weather-report/internal/fetcher"
	"github.com/mkravets/weather-report/internal/forecast"
	"github.com/mkravets/weather-report/internal/httpcache"
	"github.com/mkravets/weather-report/internal/notifier"
	"github.com/mkravets/weather-report/internal/report"
	"github.com/mkravets/weather-report/internal/store"
)

var (
	recipient string
	runCmd    = &cobra.Command{
		Use:   "run",
		Short: "Fetch, store and email the 14-day forecast once",
		Long:  `Run the pipeline once: fetch the forecast for the configured coordinate, replace the forecast table in the local database and email the report. Failures are recorded in the log file; the command always exits 0.`,
		RunE:  runReport,
	}
)

func init() {
	runCmd.Flags().StringVar(&recipient, "to", "", "recipient email address (prompted for when omitted)")
}

func runReport(cmd *cobra.Command, args []string) error {
	defer func() { _ = log.Sync() }()

	cfg := config.GetConfig()

	to := strings.TrimSpace(recipient)
	if to == "" {
		fmt.Fprint(cmd.OutOrStdout(), "Enter receiver's email address: ")
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			log.Error("reading recipient address failed", zap.Error(err))
			return nil
		}
		to = strings.TrimSpace(line)
	}

	if err := validator.New().Var(to, "required,email"); err != nil {
		log.Error("invalid recipient address", zap.String("recipient", to), zap.Error(err))
		return nil
	}

	coord := forecast.Coordinate{
		Latitude:  cfg.Location.Latitude,
		Longitude: cfg.Location.Longitude,
	}

	cache := httpcache.New(cfg.Forecast.CacheDir, time.Duration(cfg.Forecast.CacheTTL)*time.Second)

	runner := report.NewRunner(
		fetcher.New(cfg.Forecast, cache, log),
		store.New(cfg.Database.Path, log),
		notifier.New(cfg.Email, log),
		cfg.Database.Table,
		log,
	)

	// Step failures are logged, never surfaced as an exit code.
	runner.Run(cmd.Context(), coord, to)

	return nil
}
