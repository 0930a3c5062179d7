package tableimport

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/Nadifnugraha/dicowi/internal/domain/commerce"
	"go.uber.org/zap"
)

// DefaultFiles are the file names of the public Olist dataset
var DefaultFiles = map[string]string{
	commerce.TableOrderItems:    "olist_order_items_dataset.csv",
	commerce.TableOrderPayments: "olist_order_payments_dataset.csv",
	commerce.TableProducts:      "olist_products_dataset.csv",
	commerce.TableOrders:        "olist_orders_dataset.csv",
	commerce.TableCustomers:     "olist_customers_dataset.csv",
}

// FileName returns the file of table in files, falling back to the Olist
// name
func FileName(files map[string]string, table string) string {
	if name := files[table]; name != "" {
		return name
	}
	return DefaultFiles[table]
}

// CSVSource loads the bundle from a directory of CSV files
type CSVSource struct {
	dir    string
	files  map[string]string
	logger *zap.Logger
}

// NewCSVSource creates a source reading files from dir. files maps table
// names to file names; missing entries use DefaultFiles.
func NewCSVSource(dir string, files map[string]string, logger *zap.Logger) *CSVSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVSource{dir: dir, files: files, logger: logger}
}

// Load implements commerce.TableSource
func (s *CSVSource) Load(ctx context.Context) (commerce.Tables, error) {
	tables, report, err := ReadTables(ctx, func(_ context.Context, table string) (io.ReadCloser, error) {
		return os.Open(filepath.Join(s.dir, FileName(s.files, table)))
	})
	if err != nil {
		return commerce.Tables{}, err
	}

	LogReport(s.logger.With(zap.String("dir", s.dir)), report)
	return tables, nil
}

// LogReport writes a load report to logger
func LogReport(logger *zap.Logger, report *Report) {
	logger.Info("table bundle loaded",
		zap.Int("order_items", report.Rows[commerce.TableOrderItems]),
		zap.Int("order_payments", report.Rows[commerce.TableOrderPayments]),
		zap.Int("products", report.Rows[commerce.TableProducts]),
		zap.Int("orders", report.Rows[commerce.TableOrders]),
		zap.Int("customers", report.Rows[commerce.TableCustomers]),
	)
	if n := report.CoercedCount(); n > 0 {
		logger.Warn("rows kept with unparseable values", zap.Int("count", n))
		for _, e := range report.Coerced {
			logger.Debug("coerced value",
				zap.String("table", e.Table),
				zap.Int("line", e.Line),
				zap.String("column", e.Column),
				zap.String("value", e.Value),
			)
		}
	}
	if n := report.SkippedCount(); n > 0 {
		logger.Warn("rows skipped while loading", zap.Int("count", n))
		for _, e := range report.Skipped {
			logger.Debug("skipped row",
				zap.String("table", e.Table),
				zap.Int("line", e.Line),
				zap.String("column", e.Column),
				zap.String("code", e.Code),
				zap.String("value", e.Value),
			)
		}
	}
}
