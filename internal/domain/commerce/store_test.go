package commerce

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTime(s string) sql.NullTime {
	ts, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		panic(err)
	}
	return sql.NullTime{Time: ts, Valid: true}
}

func sampleTables() Tables {
	return Tables{
		OrderItems: []OrderItem{
			{OrderID: "o1", ProductID: "p1", Price: decimal.NewFromInt(10), ShippingLimitDate: validTime("2017-09-19 09:45:35")},
			{OrderID: "o1", ProductID: "p2", Price: decimal.NewFromInt(20), ShippingLimitDate: validTime("2018-05-03 11:05:13")},
			{OrderID: "o2", ProductID: "p1", Price: decimal.NewFromInt(5)},
		},
		OrderPayments: []OrderPayment{
			{OrderID: "o1", PaymentType: "credit_card", Amount: decimal.NewFromInt(30)},
		},
		Products: []Product{
			{ProductID: "p1", Category: "perfumaria"},
			{ProductID: "p2", Category: "pet_shop"},
			{ProductID: "p1", Category: "duplicate"},
		},
		Orders:    []Order{{OrderID: "o1", CustomerID: "c1"}},
		Customers: []Customer{{CustomerID: "c1", ZipCodePrefix: "01310"}},
	}
}

func TestNewStore_Lookups(t *testing.T) {
	store := NewStore(sampleTables())

	p, ok := store.Product("p1")
	require.True(t, ok)
	assert.Equal(t, "perfumaria", p.Category, "first row wins for duplicate ids")

	_, ok = store.Product("missing")
	assert.False(t, ok)

	o, ok := store.Order("o1")
	require.True(t, ok)
	assert.Equal(t, "c1", o.CustomerID)

	c, ok := store.Customer("c1")
	require.True(t, ok)
	assert.Equal(t, "01310", c.ZipCodePrefix)

	assert.Equal(t, 2, store.UniqueProducts())
	assert.Equal(t, 3, store.RowCounts()[TableOrderItems])
}

func TestStore_IsolatedFromCallers(t *testing.T) {
	tables := sampleTables()
	store := NewStore(tables)

	// mutating the input after construction must not leak in
	tables.OrderItems[0].ProductID = "changed"
	assert.Equal(t, "p1", store.OrderItems()[0].ProductID)

	// mutating a returned copy must not leak in either
	items := store.OrderItems()
	items[0].Price = decimal.NewFromInt(999)
	assert.True(t, store.OrderItems()[0].Price.Equal(decimal.NewFromInt(10)))
}

func TestStore_ShippingDateBounds(t *testing.T) {
	t.Run("ignores null dates", func(t *testing.T) {
		store := NewStore(sampleTables())

		earliest, latest, ok := store.ShippingDateBounds()
		require.True(t, ok)
		assert.Equal(t, "2017-09-19", earliest.Format("2006-01-02"))
		assert.Equal(t, "2018-05-03", latest.Format("2006-01-02"))
	})

	t.Run("no valid dates", func(t *testing.T) {
		store := NewStore(Tables{OrderItems: []OrderItem{{OrderID: "o1"}}})

		_, _, ok := store.ShippingDateBounds()
		assert.False(t, ok)
	})
}

type stubSource struct {
	tables Tables
	err    error
}

func (s stubSource) Load(context.Context) (Tables, error) {
	return s.tables, s.err
}

func TestLoadStore(t *testing.T) {
	store, err := LoadStore(context.Background(), stubSource{tables: sampleTables()})
	require.NoError(t, err)
	assert.Len(t, store.Customers(), 1)

	_, err = LoadStore(context.Background(), stubSource{err: errors.New("bucket unreachable")})
	assert.EqualError(t, err, "bucket unreachable")
}
