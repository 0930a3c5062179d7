package analytics

import (
	"database/sql"
	"time"

	"github.com/Nadifnugraha/dicowi/internal/domain/commerce"
	"github.com/shopspring/decimal"
)

func ts(s string) sql.NullTime {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		panic(err)
	}
	return sql.NullTime{Time: t, Valid: true}
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// fixtureStore builds a small dataset:
//
//	o1 (c1, zip 01310): p1 10.00 Jan-2018, p2 20.00 Jan-2018
//	o2 (c2, zip 22041): p1 15.50 Apr-2018
//	o3 (c3, zip 01310): p3 99.90 Jul-2018, p1 12.00 Oct-2018
//	o4 (no order row):  pX  5.00 null date
func fixtureStore() *commerce.Store {
	return commerce.NewStore(commerce.Tables{
		OrderItems: []commerce.OrderItem{
			{OrderID: "o1", ProductID: "p1", Price: price("10.00"), ShippingLimitDate: ts("2018-01-10 10:00:00")},
			{OrderID: "o1", ProductID: "p2", Price: price("20.00"), ShippingLimitDate: ts("2018-01-10 10:00:00")},
			{OrderID: "o2", ProductID: "p1", Price: price("15.50"), ShippingLimitDate: ts("2018-04-02 08:30:00")},
			{OrderID: "o3", ProductID: "p3", Price: price("99.90"), ShippingLimitDate: ts("2018-07-21 23:59:59")},
			{OrderID: "o3", ProductID: "p1", Price: price("12.00"), ShippingLimitDate: ts("2018-10-05 00:00:00")},
			{OrderID: "o4", ProductID: "pX", Price: price("5.00")},
		},
		OrderPayments: []commerce.OrderPayment{
			{OrderID: "o1", PaymentType: "credit_card", Amount: price("30.00")},
			{OrderID: "o2", PaymentType: "boleto", Amount: price("15.50")},
			{OrderID: "o3", PaymentType: "credit_card", Amount: price("100.00")},
			{OrderID: "o3", PaymentType: "voucher", Amount: price("11.90")},
			{OrderID: "o9", PaymentType: "debit_card", Amount: price("1.00")},
		},
		Products: []commerce.Product{
			{ProductID: "p1", Category: "perfumaria"},
			{ProductID: "p2", Category: "pet_shop"},
			{ProductID: "p3", Category: ""},
		},
		Orders: []commerce.Order{
			{OrderID: "o1", CustomerID: "c1"},
			{OrderID: "o2", CustomerID: "c2"},
			{OrderID: "o3", CustomerID: "c3"},
		},
		Customers: []commerce.Customer{
			{CustomerID: "c1", ZipCodePrefix: "01310"},
			{CustomerID: "c2", ZipCodePrefix: "22041"},
			{CustomerID: "c3", ZipCodePrefix: "01310"},
		},
	})
}

func fixtureView() View {
	view, _ := Resolve(fixtureStore())
	return view
}
