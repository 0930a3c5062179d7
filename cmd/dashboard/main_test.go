package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/Nadifnugraha/dicowi/internal/domain/analytics"
	"github.com/Nadifnugraha/dicowi/internal/domain/commerce"
	"github.com/Nadifnugraha/dicowi/internal/infrastructure/config"
	"github.com/Nadifnugraha/dicowi/internal/infrastructure/tableimport"
	"github.com/Nadifnugraha/dicowi/internal/interfaces/http/dto"
	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func ts(t *testing.T, raw string) sql.NullTime {
	t.Helper()
	v, err := analytics.ParseTimestamp(raw)
	require.NoError(t, err)
	return v
}

// writeBundle writes a small csv bundle and a config file pointing at it
func writeBundle(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	defaults, err := config.Load()
	require.NoError(t, err)

	tables := commerce.Tables{
		OrderItems: []commerce.OrderItem{
			{OrderID: "o1", ProductID: "p1", Price: decimal.RequireFromString("1500.00"), ShippingLimitDate: ts(t, "2017-01-10 10:00:00")},
			{OrderID: "o1", ProductID: "p2", Price: decimal.RequireFromString("20.00"), ShippingLimitDate: ts(t, "2017-01-10 10:00:00")},
			{OrderID: "o2", ProductID: "p2", Price: decimal.RequireFromString("20.00"), ShippingLimitDate: ts(t, "2017-07-02 09:30:00")},
		},
		OrderPayments: []commerce.OrderPayment{
			{OrderID: "o1", PaymentType: "credit_card", Amount: decimal.NewFromInt(1520)},
			{OrderID: "o2", PaymentType: "boleto", Amount: decimal.NewFromInt(20)},
		},
		Products:  []commerce.Product{{ProductID: "p1", Category: "informatica"}, {ProductID: "p2", Category: "bebes"}},
		Orders:    []commerce.Order{{OrderID: "o1", CustomerID: "c1"}, {OrderID: "o2", CustomerID: "c2"}},
		Customers: []commerce.Customer{{CustomerID: "c1", ZipCodePrefix: "01001"}, {CustomerID: "c2", ZipCodePrefix: "20000"}},
	}
	require.NoError(t, tableimport.WriteDir(dir, defaults.Bundle.Files(), tables))

	cfgPath := filepath.Join(dir, "config.toml")
	body := fmt.Sprintf("[bundle]\nsource = \"csv\"\ndir = %q\n\n[log]\nlevel = \"error\"\n", dir)
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o644))
	return cfgPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configPath = ""
	asJSON = false
	topN = 0
	rankingMetric = string(analytics.MetricCount)
	rankingDirection = string(analytics.DirectionTop)
	geoUnit = string(analytics.GeoUnitLineItems)
	granularity = string(analytics.GranularityMonth)
	importDir = ""
	filterArgs = dto.FilterRequest{Month: analytics.All, Season: analytics.All, Category: analytics.All}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	cfgPath := writeBundle(t)

	tests := []struct {
		name     string
		args     []string
		contains []string
	}{
		{
			name:     "overview groups digits",
			args:     []string{"overview"},
			contains: []string{"Overview", "Line items", "1,540.00", "2017-01-10 to 2017-07-02"},
		},
		{
			name:     "ranking by revenue",
			args:     []string{"ranking", "--metric", "revenue"},
			contains: []string{"Products by revenue (top)", "p1", "informatica", "1,500.00"},
		},
		{
			name:     "season filter",
			args:     []string{"ranking", "--season", "Summer"},
			contains: []string{"p2", "bebes"},
		},
		{
			name:     "payments",
			args:     []string{"payments"},
			contains: []string{"credit_card", "50.0%", "boleto"},
		},
		{
			name:     "geo",
			args:     []string{"geo", "--unit", "customers"},
			contains: []string{"01001", "20000"},
		},
		{
			name:     "revenue by month",
			args:     []string{"revenue", "--granularity", "month"},
			contains: []string{"2017-01", "2017-07"},
		},
		{
			name:     "panel",
			args:     []string{"panel", "top_orders"},
			contains: []string{"o1", "Items"},
		},
		{
			name:     "empty selection",
			args:     []string{"ranking", "--category", "brinquedos"},
			contains: []string{"No data available for the selected filters"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append(tt.args, "--config", cfgPath)...)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestCommands_JSON(t *testing.T) {
	cfgPath := writeBundle(t)

	out, err := run(t, "ranking", "--json", "--top", "1", "--config", cfgPath)
	require.NoError(t, err)

	var rows []analytics.ProductSales
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "p2", rows[0].ProductID)
	assert.Equal(t, int64(2), rows[0].Count)
}

func TestCommands_Errors(t *testing.T) {
	cfgPath := writeBundle(t)

	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown panel", args: []string{"panel", "nope"}},
		{name: "bad metric", args: []string{"ranking", "--metric", "profit"}},
		{name: "bad season", args: []string{"overview", "--season", "Monsoon"}},
		{name: "half date range", args: []string{"overview", "--start", "2017-01-01"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, append(tt.args, "--config", cfgPath)...)
			assert.Error(t, err)
		})
	}
}

func TestPanelsCommand(t *testing.T) {
	out, err := run(t, "panels")
	require.NoError(t, err)
	assert.Contains(t, out, "top_selling")
	assert.Contains(t, out, "Revenue")
}

func TestImportCommand(t *testing.T) {
	cfgPath := writeBundle(t)
	dbPath := filepath.Join(t.TempDir(), "bundle.db")

	body, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	body = append(body, []byte(fmt.Sprintf("\n[database]\ndriver = \"sqlite\"\npath = %q\n", dbPath))...)
	require.NoError(t, os.WriteFile(cfgPath, body, 0o644))

	out, err := run(t, "import", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Bundle written to database sqlite")
	assert.Contains(t, out, "order_items")

	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
}

func TestGenerateCommand(t *testing.T) {
	out := t.TempDir()

	stdout, err := run(t, "generate", "--out", out, "--orders", "40", "--products", "10", "--customers", "15", "--seed", "7")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Bundle written to "+out)

	defaults, err := config.Load()
	require.NoError(t, err)
	tables, err := tableimport.NewCSVSource(out, defaults.Bundle.Files(), nil).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, tables.Orders, 40)
	assert.Len(t, tables.Products, 10)
	assert.Len(t, tables.Customers, 15)
}
