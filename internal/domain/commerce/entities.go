// Package commerce holds the source tables of the sales dataset and the
// read-only Store that hands them out.
package commerce

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// Table names of the input bundle
const (
	TableOrderItems    = "order_items"
	TableOrderPayments = "order_payments"
	TableProducts      = "products"
	TableOrders        = "orders"
	TableCustomers     = "customers"
)

// TableNames lists the bundle tables in load order
var TableNames = []string{
	TableOrderItems,
	TableOrderPayments,
	TableProducts,
	TableOrders,
	TableCustomers,
}

// OrderItem is one product line within an order
type OrderItem struct {
	OrderID           string          `json:"order_id"`
	ProductID         string          `json:"product_id"`
	Price             decimal.Decimal `json:"price"`
	ShippingLimitDate sql.NullTime    `json:"shipping_limit_date"`
}

// OrderPayment is one payment record of an order. Split payments produce
// several records for the same order.
type OrderPayment struct {
	OrderID     string          `json:"order_id"`
	PaymentType string          `json:"payment_type"`
	Amount      decimal.Decimal `json:"amount"`
}

// Product is a catalogue entry. Category is empty when the source has none.
type Product struct {
	ProductID string `json:"product_id"`
	Category  string `json:"product_category_name"`
}

// Order links an order to the customer who placed it
type Order struct {
	OrderID    string `json:"order_id"`
	CustomerID string `json:"customer_id"`
}

// Customer carries the zip code prefix as an opaque string so leading
// zeros survive.
type Customer struct {
	CustomerID    string `json:"customer_id"`
	ZipCodePrefix string `json:"customer_zip_code_prefix"`
}

// Tables is the raw input bundle keyed by table
type Tables struct {
	OrderItems    []OrderItem
	OrderPayments []OrderPayment
	Products      []Product
	Orders        []Order
	Customers     []Customer
}

// RowCounts returns the number of rows per table name
func (t Tables) RowCounts() map[string]int {
	return map[string]int{
		TableOrderItems:    len(t.OrderItems),
		TableOrderPayments: len(t.OrderPayments),
		TableProducts:      len(t.Products),
		TableOrders:        len(t.Orders),
		TableCustomers:     len(t.Customers),
	}
}
