package commerce

import (
	"context"
	"slices"
	"time"
)

// TableSource loads the input bundle from wherever it is kept
type TableSource interface {
	Load(ctx context.Context) (Tables, error)
}

// Store is an immutable handle over the five input tables. It is built once
// and then shared read-only; every accessor returns a copy so callers can
// never reach the backing arrays.
type Store struct {
	items     []OrderItem
	payments  []OrderPayment
	products  []Product
	orders    []Order
	customers []Customer

	productIdx  map[string]int
	orderIdx    map[string]int
	customerIdx map[string]int
}

// NewStore copies the tables into a new Store. When an id appears more than
// once in a keyed table the first row wins.
func NewStore(t Tables) *Store {
	s := &Store{
		items:     slices.Clone(t.OrderItems),
		payments:  slices.Clone(t.OrderPayments),
		products:  slices.Clone(t.Products),
		orders:    slices.Clone(t.Orders),
		customers: slices.Clone(t.Customers),
	}

	s.productIdx = make(map[string]int, len(s.products))
	for i, p := range s.products {
		if _, ok := s.productIdx[p.ProductID]; !ok {
			s.productIdx[p.ProductID] = i
		}
	}
	s.orderIdx = make(map[string]int, len(s.orders))
	for i, o := range s.orders {
		if _, ok := s.orderIdx[o.OrderID]; !ok {
			s.orderIdx[o.OrderID] = i
		}
	}
	s.customerIdx = make(map[string]int, len(s.customers))
	for i, c := range s.customers {
		if _, ok := s.customerIdx[c.CustomerID]; !ok {
			s.customerIdx[c.CustomerID] = i
		}
	}

	return s
}

// LoadStore reads the bundle from source and wraps it in a Store
func LoadStore(ctx context.Context, source TableSource) (*Store, error) {
	tables, err := source.Load(ctx)
	if err != nil {
		return nil, err
	}
	return NewStore(tables), nil
}

// OrderItems returns a copy of the order item table
func (s *Store) OrderItems() []OrderItem {
	return slices.Clone(s.items)
}

// OrderPayments returns a copy of the payment table
func (s *Store) OrderPayments() []OrderPayment {
	return slices.Clone(s.payments)
}

// Products returns a copy of the product table
func (s *Store) Products() []Product {
	return slices.Clone(s.products)
}

// Orders returns a copy of the order table
func (s *Store) Orders() []Order {
	return slices.Clone(s.orders)
}

// Customers returns a copy of the customer table
func (s *Store) Customers() []Customer {
	return slices.Clone(s.customers)
}

// Product looks up a product by id
func (s *Store) Product(productID string) (Product, bool) {
	i, ok := s.productIdx[productID]
	if !ok {
		return Product{}, false
	}
	return s.products[i], true
}

// Order looks up an order by id
func (s *Store) Order(orderID string) (Order, bool) {
	i, ok := s.orderIdx[orderID]
	if !ok {
		return Order{}, false
	}
	return s.orders[i], true
}

// Customer looks up a customer by id
func (s *Store) Customer(customerID string) (Customer, bool) {
	i, ok := s.customerIdx[customerID]
	if !ok {
		return Customer{}, false
	}
	return s.customers[i], true
}

// UniqueProducts is the number of distinct product ids in the catalogue
func (s *Store) UniqueProducts() int {
	return len(s.productIdx)
}

// RowCounts returns the number of rows per table
func (s *Store) RowCounts() map[string]int {
	return Tables{
		OrderItems:    s.items,
		OrderPayments: s.payments,
		Products:      s.products,
		Orders:        s.orders,
		Customers:     s.customers,
	}.RowCounts()
}

// ShippingDateBounds returns the earliest and latest valid shipping limit
// date of the item table. ok is false when no item has a valid date.
func (s *Store) ShippingDateBounds() (earliest, latest time.Time, ok bool) {
	for _, item := range s.items {
		if !item.ShippingLimitDate.Valid {
			continue
		}
		ts := item.ShippingLimitDate.Time
		if !ok {
			earliest, latest, ok = ts, ts, true
			continue
		}
		if ts.Before(earliest) {
			earliest = ts
		}
		if ts.After(latest) {
			latest = ts
		}
	}
	return earliest, latest, ok
}
