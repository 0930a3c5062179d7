package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	analyticsapp "github.com/Nadifnugraha/dicowi/internal/application/analytics"
	"github.com/Nadifnugraha/dicowi/internal/domain/analytics"
	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	titleColor = color.New(color.FgCyan, color.Bold)
	headColor  = color.New(color.Bold)
	warnColor  = color.New(color.FgYellow)
)

// renderer writes aggregates as aligned text tables with grouped digits
type renderer struct {
	out     io.Writer
	printer *message.Printer
	asJSON  bool
}

func newRenderer(out io.Writer, asJSON bool) *renderer {
	return &renderer{
		out:     out,
		printer: message.NewPrinter(language.English),
		asJSON:  asJSON,
	}
}

func (r *renderer) int(n int64) string {
	return r.printer.Sprintf("%d", n)
}

func (r *renderer) money(d decimal.Decimal) string {
	return r.printer.Sprintf("%.2f", d.InexactFloat64())
}

func (r *renderer) float(f float64) string {
	return r.printer.Sprintf("%.2f", f)
}

func (r *renderer) title(s string) {
	titleColor.Fprintln(r.out, s)
}

func (r *renderer) table(header []string, rows [][]string) {
	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	for i, h := range header {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		headColor.Fprint(tw, h)
	}
	fmt.Fprintln(tw)
	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, cell)
		}
		fmt.Fprintln(tw)
	}
	_ = tw.Flush()
}

func (r *renderer) empty() {
	warnColor.Fprintln(r.out, "No data available for the selected filters")
}

func (r *renderer) json(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// render prints any aggregate the dashboard service returns
func (r *renderer) render(title string, v any) error {
	if r.asJSON {
		return r.json(v)
	}

	r.title(title)
	switch data := v.(type) {
	case *analyticsapp.Overview:
		r.overview(data)
	case []analytics.ProductSales:
		r.productSales(data)
	case []analytics.PaymentShare:
		r.payments(data)
	case []analytics.ZipCount:
		r.zipCounts(data)
	case []analytics.RevenuePoint:
		r.revenue(data)
	case []analytics.OrderItemCount:
		r.orders(data)
	default:
		return r.json(v)
	}
	return nil
}

func (r *renderer) overview(o *analyticsapp.Overview) {
	rows := [][]string{
		{"Line items", r.int(int64(o.Summary.LineItems))},
		{"Orders", r.int(int64(o.Summary.Orders))},
		{"Unique products", r.int(int64(o.Summary.UniqueProducts))},
		{"Total revenue", r.money(o.Summary.Revenue)},
	}
	if o.EarliestDate != "" {
		rows = append(rows, []string{"Shipping dates", o.EarliestDate + " to " + o.LatestDate})
	}
	r.table([]string{"Metric", "Value"}, rows)

	if o.Prices.Count == 0 {
		return
	}
	fmt.Fprintln(r.out)
	p := o.Prices
	r.table(
		[]string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"},
		[][]string{{
			r.int(int64(p.Count)), r.float(p.Mean), r.float(p.Std), r.float(p.Min),
			r.float(p.P25), r.float(p.Median), r.float(p.P75), r.float(p.Max),
		}},
	)
}

func (r *renderer) productSales(rows []analytics.ProductSales) {
	if len(rows) == 0 {
		r.empty()
		return
	}
	cells := make([][]string, len(rows))
	for i, p := range rows {
		cells[i] = []string{fmt.Sprint(p.Rank), p.ProductID, p.Category, r.int(p.Count), r.money(p.Revenue)}
	}
	r.table([]string{"#", "Product", "Category", "Sold", "Revenue"}, cells)
}

func (r *renderer) payments(rows []analytics.PaymentShare) {
	if len(rows) == 0 {
		r.empty()
		return
	}
	cells := make([][]string, len(rows))
	for i, p := range rows {
		cells[i] = []string{p.Method, r.int(p.Count), p.Percentage.StringFixed(1) + "%"}
	}
	r.table([]string{"Payment type", "Count", "Share"}, cells)
}

func (r *renderer) zipCounts(rows []analytics.ZipCount) {
	if len(rows) == 0 {
		r.empty()
		return
	}
	cells := make([][]string, len(rows))
	for i, z := range rows {
		cells[i] = []string{z.ZipPrefix, r.int(z.Count)}
	}
	r.table([]string{"Zip prefix", "Count"}, cells)
}

func (r *renderer) revenue(rows []analytics.RevenuePoint) {
	if len(rows) == 0 {
		r.empty()
		return
	}
	cells := make([][]string, len(rows))
	for i, p := range rows {
		cells[i] = []string{p.Bucket, r.int(p.Items), r.money(p.Revenue)}
	}
	r.table([]string{"Period", "Items", "Revenue"}, cells)
}

func (r *renderer) orders(rows []analytics.OrderItemCount) {
	if len(rows) == 0 {
		r.empty()
		return
	}
	cells := make([][]string, len(rows))
	for i, o := range rows {
		cells[i] = []string{o.OrderID, r.int(o.Items)}
	}
	r.table([]string{"Order", "Items"}, cells)
}
