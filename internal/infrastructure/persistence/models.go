package persistence

import (
	"database/sql"

	"github.com/Nadifnugraha/dicowi/internal/domain/commerce"
	"github.com/shopspring/decimal"
)

// Every model carries a surrogate ID so rows come back in insertion order
// and duplicate business keys can be stored as they appear in the source.

// OrderItemModel is the persistence model for an order line
type OrderItemModel struct {
	ID                uint            `gorm:"primaryKey"`
	OrderID           string          `gorm:"column:order_id;type:varchar(64);not null;index"`
	ProductID         string          `gorm:"column:product_id;type:varchar(64);not null;index"`
	Price             decimal.Decimal `gorm:"column:price;type:decimal(12,2);not null"`
	ShippingLimitDate sql.NullTime    `gorm:"column:shipping_limit_date"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return commerce.TableOrderItems
}

// ToDomain converts the model to a domain OrderItem
func (m *OrderItemModel) ToDomain() commerce.OrderItem {
	return commerce.OrderItem{
		OrderID:           m.OrderID,
		ProductID:         m.ProductID,
		Price:             m.Price,
		ShippingLimitDate: m.ShippingLimitDate,
	}
}

// OrderPaymentModel is the persistence model for a payment record
type OrderPaymentModel struct {
	ID          uint            `gorm:"primaryKey"`
	OrderID     string          `gorm:"column:order_id;type:varchar(64);not null;index"`
	PaymentType sql.NullString  `gorm:"column:payment_type;type:varchar(32)"`
	Amount      decimal.Decimal `gorm:"column:payment_value;type:decimal(12,2);not null"`
}

// TableName returns the table name for GORM
func (OrderPaymentModel) TableName() string {
	return commerce.TableOrderPayments
}

// ToDomain converts the model to a domain OrderPayment
func (m *OrderPaymentModel) ToDomain() commerce.OrderPayment {
	return commerce.OrderPayment{
		OrderID:     m.OrderID,
		PaymentType: m.PaymentType.String,
		Amount:      m.Amount,
	}
}

// ProductModel is the persistence model for a catalogue entry
type ProductModel struct {
	ID        uint           `gorm:"primaryKey"`
	ProductID string         `gorm:"column:product_id;type:varchar(64);not null;index"`
	Category  sql.NullString `gorm:"column:product_category_name;type:varchar(100)"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return commerce.TableProducts
}

// ToDomain converts the model to a domain Product
func (m *ProductModel) ToDomain() commerce.Product {
	return commerce.Product{ProductID: m.ProductID, Category: m.Category.String}
}

// OrderModel is the persistence model for an order header
type OrderModel struct {
	ID         uint           `gorm:"primaryKey"`
	OrderID    string         `gorm:"column:order_id;type:varchar(64);not null;index"`
	CustomerID sql.NullString `gorm:"column:customer_id;type:varchar(64)"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return commerce.TableOrders
}

// ToDomain converts the model to a domain Order
func (m *OrderModel) ToDomain() commerce.Order {
	return commerce.Order{OrderID: m.OrderID, CustomerID: m.CustomerID.String}
}

// CustomerModel is the persistence model for a customer
type CustomerModel struct {
	ID            uint           `gorm:"primaryKey"`
	CustomerID    string         `gorm:"column:customer_id;type:varchar(64);not null;index"`
	ZipCodePrefix sql.NullString `gorm:"column:customer_zip_code_prefix;type:varchar(16)"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return commerce.TableCustomers
}

// ToDomain converts the model to a domain Customer
func (m *CustomerModel) ToDomain() commerce.Customer {
	return commerce.Customer{CustomerID: m.CustomerID, ZipCodePrefix: m.ZipCodePrefix.String}
}

// Models lists the bundle models in load order
func Models() []any {
	return []any{
		&OrderItemModel{},
		&OrderPaymentModel{},
		&ProductModel{},
		&OrderModel{},
		&CustomerModel{},
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func modelsFromTables(t commerce.Tables) ([]OrderItemModel, []OrderPaymentModel, []ProductModel, []OrderModel, []CustomerModel) {
	items := make([]OrderItemModel, len(t.OrderItems))
	for i, it := range t.OrderItems {
		items[i] = OrderItemModel{
			OrderID:           it.OrderID,
			ProductID:         it.ProductID,
			Price:             it.Price,
			ShippingLimitDate: it.ShippingLimitDate,
		}
	}
	payments := make([]OrderPaymentModel, len(t.OrderPayments))
	for i, p := range t.OrderPayments {
		payments[i] = OrderPaymentModel{OrderID: p.OrderID, PaymentType: nullString(p.PaymentType), Amount: p.Amount}
	}
	products := make([]ProductModel, len(t.Products))
	for i, p := range t.Products {
		products[i] = ProductModel{ProductID: p.ProductID, Category: nullString(p.Category)}
	}
	orders := make([]OrderModel, len(t.Orders))
	for i, o := range t.Orders {
		orders[i] = OrderModel{OrderID: o.OrderID, CustomerID: nullString(o.CustomerID)}
	}
	customers := make([]CustomerModel, len(t.Customers))
	for i, c := range t.Customers {
		customers[i] = CustomerModel{CustomerID: c.CustomerID, ZipCodePrefix: nullString(c.ZipCodePrefix)}
	}
	return items, payments, products, orders, customers
}
