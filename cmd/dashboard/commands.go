package main

import (
	"fmt"
	"strings"

	analyticsapp "github.com/Nadifnugraha/dicowi/internal/application/analytics"
	"github.com/Nadifnugraha/dicowi/internal/bootstrap"
	"github.com/Nadifnugraha/dicowi/internal/domain/analytics"
	"github.com/Nadifnugraha/dicowi/internal/domain/commerce"
	"github.com/Nadifnugraha/dicowi/internal/infrastructure/bundle"
	"github.com/Nadifnugraha/dicowi/internal/infrastructure/persistence"
	"github.com/Nadifnugraha/dicowi/internal/infrastructure/storage"
	"github.com/Nadifnugraha/dicowi/internal/infrastructure/tableimport"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Headline numbers and price statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDashboard(cmd.Context(), func(d *bootstrap.Dashboard, spec analytics.FilterSpec) error {
			o, err := d.Service.Overview(cmd.Context(), spec)
			if err != nil {
				return err
			}
			return newRenderer(cmd.OutOrStdout(), asJSON).render("Overview", o)
		})
	},
}

var panelsCmd = &cobra.Command{
	Use:   "panels",
	Short: "List the dashboard panels",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		r := newRenderer(cmd.OutOrStdout(), asJSON)
		presets := analyticsapp.Panels()
		if asJSON {
			return r.json(presets)
		}
		rows := make([][]string, len(presets))
		for i, p := range presets {
			rows[i] = []string{p.Name, p.Title}
		}
		r.table([]string{"Panel", "Title"}, rows)
		return nil
	},
}

var panelCmd = &cobra.Command{
	Use:   "panel <name>",
	Short: "Evaluate one dashboard panel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDashboard(cmd.Context(), func(d *bootstrap.Dashboard, spec analytics.FilterSpec) error {
			res, err := d.Service.Panel(cmd.Context(), args[0], spec)
			if err != nil {
				return err
			}
			r := newRenderer(cmd.OutOrStdout(), asJSON)
			if asJSON {
				return r.json(res)
			}
			return r.render(res.Title, res.Data)
		})
	},
}

var (
	rankingMetric    string
	rankingDirection string
)

var rankingCmd = &cobra.Command{
	Use:   "ranking",
	Short: "Rank products by units sold or revenue",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		metric, err := analytics.ParseMetric(rankingMetric)
		if err != nil {
			return err
		}
		direction, err := analytics.ParseDirection(rankingDirection)
		if err != nil {
			return err
		}
		return withDashboard(cmd.Context(), func(d *bootstrap.Dashboard, spec analytics.FilterSpec) error {
			rows, err := d.Service.ProductRanking(cmd.Context(), spec, analyticsapp.RankingQuery{
				Metric:    metric,
				Direction: direction,
				N:         topN,
			})
			if err != nil {
				return err
			}
			title := fmt.Sprintf("Products by %s (%s)", metric, direction)
			return newRenderer(cmd.OutOrStdout(), asJSON).render(title, rows)
		})
	},
}

var includeUndefined bool

var paymentsCmd = &cobra.Command{
	Use:   "payments",
	Short: "Payment method distribution",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var exclude *bool
		if cmd.Flags().Changed("include-undefined") {
			v := !includeUndefined
			exclude = &v
		}
		return withDashboard(cmd.Context(), func(d *bootstrap.Dashboard, spec analytics.FilterSpec) error {
			rows, err := d.Service.PaymentDistribution(cmd.Context(), spec, exclude)
			if err != nil {
				return err
			}
			return newRenderer(cmd.OutOrStdout(), asJSON).render("Payment methods", rows)
		})
	},
}

var geoUnit string

var geoCmd = &cobra.Command{
	Use:   "geo",
	Short: "Zip code prefixes with the most activity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		unit, err := analytics.ParseGeoUnit(geoUnit)
		if err != nil {
			return err
		}
		return withDashboard(cmd.Context(), func(d *bootstrap.Dashboard, spec analytics.FilterSpec) error {
			rows, err := d.Service.GeoDistribution(cmd.Context(), spec, topN, unit)
			if err != nil {
				return err
			}
			return newRenderer(cmd.OutOrStdout(), asJSON).render("Customer geography", rows)
		})
	},
}

var granularity string

var revenueCmd = &cobra.Command{
	Use:   "revenue",
	Short: "Revenue over time",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		g, err := analytics.ParseGranularity(granularity)
		if err != nil {
			return err
		}
		return withDashboard(cmd.Context(), func(d *bootstrap.Dashboard, spec analytics.FilterSpec) error {
			rows, err := d.Service.RevenueTrend(cmd.Context(), spec, g)
			if err != nil {
				return err
			}
			return newRenderer(cmd.OutOrStdout(), asJSON).render("Revenue by "+strings.ToLower(string(g)), rows)
		})
	},
}

var importDir string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Copy a csv bundle into the configured database",
	Long: `Read the five csv tables from --dir and replace the contents of the
bundle tables in the configured database. Unparseable values are
listed in the load report.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		dir := importDir
		if dir == "" {
			dir = cfg.Bundle.Dir
		}
		tables, err := tableimport.NewCSVSource(dir, cfg.Bundle.Files(), log).Load(cmd.Context())
		if err != nil {
			return err
		}

		db, err := bundle.OpenDatabase(cfg, log)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		if err := persistence.NewTableSource(db.DB, log).Save(cmd.Context(), tables); err != nil {
			return err
		}
		return reportCopied(cmd, "database "+cfg.Database.Driver, tables.RowCounts())
	},
}

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Upload the configured bundle to object storage",
	Long: `Load the bundle from the configured source and write it as csv files
to the storage bucket, where the s3 source reads it from.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		src, err := bundle.Open(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		tables, err := src.Load(cmd.Context())
		if cerr := src.Close(); cerr != nil {
			log.Warn("closing bundle source failed", zap.Error(cerr))
		}
		if err != nil {
			return err
		}

		dst, err := storage.NewS3SourceFromConfig(cmd.Context(), &cfg.Storage,
			storage.WithLogger(log),
			storage.WithFiles(cfg.Bundle.Files()),
		)
		if err != nil {
			return err
		}
		if err := dst.Publish(cmd.Context(), tables); err != nil {
			return err
		}
		return reportCopied(cmd, "s3://"+cfg.Storage.Bucket+"/"+cfg.Storage.Prefix, tables.RowCounts())
	},
}

// reportCopied prints the row counts of a bundle written to dest
func reportCopied(cmd *cobra.Command, dest string, counts map[string]int) error {
	r := newRenderer(cmd.OutOrStdout(), asJSON)
	if asJSON {
		return r.json(counts)
	}
	r.title("Bundle written to " + dest)
	rows := make([][]string, 0, len(counts))
	for _, table := range commerce.TableNames {
		rows = append(rows, []string{table, r.int(int64(counts[table]))})
	}
	r.table([]string{"Table", "Rows"}, rows)
	return nil
}

func init() {
	rankingCmd.Flags().StringVar(&rankingMetric, "metric", string(analytics.MetricCount), "count or revenue")
	rankingCmd.Flags().StringVar(&rankingDirection, "direction", string(analytics.DirectionTop), "top or bottom")
	paymentsCmd.Flags().BoolVar(&includeUndefined, "include-undefined", false, "keep the not_defined payment type")
	geoCmd.Flags().StringVar(&geoUnit, "unit", string(analytics.GeoUnitLineItems), "line_items or customers")
	revenueCmd.Flags().StringVar(&granularity, "granularity", string(analytics.GranularityMonth), "day, month or season")
	importCmd.Flags().StringVar(&importDir, "dir", "", "directory of the csv files (default bundle.dir)")
}
