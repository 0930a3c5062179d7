// Command dashboard evaluates the sales dashboard aggregations from the
// terminal and moves the input bundle between its storage backends.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Nadifnugraha/dicowi/internal/bootstrap"
	"github.com/Nadifnugraha/dicowi/internal/domain/analytics"
	"github.com/Nadifnugraha/dicowi/internal/infrastructure/config"
	"github.com/Nadifnugraha/dicowi/internal/infrastructure/logger"
	"github.com/Nadifnugraha/dicowi/internal/interfaces/http/dto"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	verbose    bool
	asJSON     bool
	filterArgs dto.FilterRequest
	topN       int
)

var rootCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Sales dashboard over an e-commerce order bundle",
	Long: `Evaluate the dashboard panels against the configured bundle.

Filters apply to every aggregation command:
  --start/--end  inclusive shipping date range (YYYY-MM-DD)
  --month        YYYY-MM bucket
  --season       Winter, Spring, Summer or Fall
  --category     product category
  --zip          customer zip code prefix`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print JSON instead of tables")

	rootCmd.PersistentFlags().StringVar(&filterArgs.StartDate, "start", "", "first shipping date")
	rootCmd.PersistentFlags().StringVar(&filterArgs.EndDate, "end", "", "last shipping date")
	rootCmd.PersistentFlags().StringVar(&filterArgs.Month, "month", analytics.All, "month bucket")
	rootCmd.PersistentFlags().StringVar(&filterArgs.Season, "season", analytics.All, "season")
	rootCmd.PersistentFlags().StringVar(&filterArgs.Category, "category", analytics.All, "product category")
	rootCmd.PersistentFlags().StringVar(&filterArgs.ZipPrefix, "zip", "", "customer zip code prefix")
	rootCmd.PersistentFlags().IntVarP(&topN, "top", "n", 0, "number of rows (default from config)")

	rootCmd.AddCommand(
		overviewCmd,
		panelsCmd,
		panelCmd,
		rankingCmd,
		paymentsCmd,
		geoCmd,
		revenueCmd,
		importCmd,
		publishCmd,
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// loadConfig reads the configuration and builds a logger writing to stderr
// so that stdout carries only the command output
func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logCfg := logger.FromAppConfig(cfg.Log)
	logCfg.Output = "stderr"
	logCfg.Format = "console"
	if verbose {
		logCfg.Level = "debug"
	} else if logger.ParseLevel(logCfg.Level) < logger.ParseLevel("warn") {
		logCfg.Level = "warn"
	}
	log, err := logger.New(logCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}

// withDashboard loads the bundle and hands the dashboard to fn
func withDashboard(ctx context.Context, fn func(*bootstrap.Dashboard, analytics.FilterSpec) error) error {
	spec, err := filterArgs.ToSpec()
	if err != nil {
		return err
	}
	if err := spec.Validate(); err != nil {
		return err
	}

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	dash, err := bootstrap.NewDashboard(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := dash.Close(); err != nil {
			log.Warn("failed to release dashboard resources", zap.Error(err))
		}
	}()

	return fn(dash, spec)
}
