package analytics

import (
	"database/sql"

	"github.com/Nadifnugraha/dicowi/internal/domain/commerce"
	"github.com/shopspring/decimal"
)

// LineItem is an order item joined with its product category, the ordering
// customer and that customer's zip prefix, plus the derived period.
type LineItem struct {
	OrderID           string          `json:"order_id"`
	ProductID         string          `json:"product_id"`
	Price             decimal.Decimal `json:"price"`
	ShippingLimitDate sql.NullTime    `json:"shipping_limit_date"`
	Category          string          `json:"product_category_name"`
	CustomerID        string          `json:"customer_id"`
	ZipPrefix         string          `json:"customer_zip_code_prefix"`
	Period            Period          `json:"period"`
}

// View is a denormalized working set. Views are values: every operation
// returns a new slice and never mutates its input.
type View []LineItem

// Len returns the number of line items
func (v View) Len() int {
	return len(v)
}

// InvalidTimestamps counts the rows that time-based operations will skip
func (v View) InvalidTimestamps() int {
	n := 0
	for i := range v {
		if !v[i].Period.Valid {
			n++
		}
	}
	return n
}

// ResolveReport counts the join misses and bucketing failures of a
// Resolve call. Misses are data, not errors.
type ResolveReport struct {
	Rows              int `json:"rows"`
	MissingProducts   int `json:"missing_products"`
	MissingOrders     int `json:"missing_orders"`
	MissingCustomers  int `json:"missing_customers"`
	NullCategories    int `json:"null_categories"`
	InvalidTimestamps int `json:"invalid_timestamps"`
}

// Resolve builds the denormalized view with left joins on product_id, then
// order_id, then customer_id. Every order item yields exactly one row; any
// lookup that misses leaves Unknown in the affected columns.
func Resolve(store *commerce.Store) (View, ResolveReport) {
	items := store.OrderItems()
	view := make(View, 0, len(items))
	report := ResolveReport{Rows: len(items)}

	for _, item := range items {
		row := LineItem{
			OrderID:           item.OrderID,
			ProductID:         item.ProductID,
			Price:             item.Price,
			ShippingLimitDate: item.ShippingLimitDate,
			Category:          Unknown,
			CustomerID:        Unknown,
			ZipPrefix:         Unknown,
		}

		if product, ok := store.Product(item.ProductID); !ok {
			report.MissingProducts++
		} else if product.Category == "" {
			report.NullCategories++
		} else {
			row.Category = product.Category
		}

		order, ok := store.Order(item.OrderID)
		if !ok {
			report.MissingOrders++
		} else {
			if order.CustomerID != "" {
				row.CustomerID = order.CustomerID
			}
			if customer, ok := store.Customer(order.CustomerID); !ok {
				report.MissingCustomers++
			} else if customer.ZipCodePrefix != "" {
				row.ZipPrefix = customer.ZipCodePrefix
			}
		}

		if period, err := PeriodOf(item.ShippingLimitDate); err == nil {
			row.Period = period
		} else {
			report.InvalidTimestamps++
		}

		view = append(view, row)
	}

	return view, report
}
