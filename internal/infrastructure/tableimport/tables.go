package tableimport

import (
	"context"
	"fmt"
	"io"

	"github.com/Nadifnugraha/dicowi/internal/domain/analytics"
	"github.com/Nadifnugraha/dicowi/internal/domain/commerce"
	"github.com/shopspring/decimal"
)

// Column names of the source files
const (
	ColOrderID           = "order_id"
	ColOrderItemID       = "order_item_id"
	ColProductID         = "product_id"
	ColPrice             = "price"
	ColShippingLimitDate = "shipping_limit_date"
	ColPaymentSequential = "payment_sequential"
	ColPaymentType       = "payment_type"
	ColPaymentValue      = "payment_value"
	ColCategory          = "product_category_name"
	ColCustomerID        = "customer_id"
	ColZipPrefix         = "customer_zip_code_prefix"
)

// Columns lists the columns read from each table
var Columns = map[string][]string{
	commerce.TableOrderItems:    {ColOrderID, ColProductID, ColPrice, ColShippingLimitDate},
	commerce.TableOrderPayments: {ColOrderID, ColPaymentType, ColPaymentValue},
	commerce.TableProducts:      {ColProductID, ColCategory},
	commerce.TableOrders:        {ColOrderID, ColCustomerID},
	commerce.TableCustomers:     {ColCustomerID, ColZipPrefix},
}

// Opener opens the raw CSV content of a table
type Opener func(ctx context.Context, table string) (io.ReadCloser, error)

// ReadTables decodes all five tables through open. Every order item row is
// kept: blank ids stay blank for the join to resolve as unknown and an
// unparseable price is read as zero and listed under Coerced. Rows of the
// other tables with a missing key or an unparseable amount are skipped and
// listed under Skipped. A null or unparseable shipping date is kept as an
// invalid timestamp.
func ReadTables(ctx context.Context, open Opener) (commerce.Tables, *Report, error) {
	var tables commerce.Tables
	report := newReport()

	for _, table := range commerce.TableNames {
		if err := ctx.Err(); err != nil {
			return commerce.Tables{}, nil, err
		}
		rc, err := open(ctx, table)
		if err != nil {
			return commerce.Tables{}, nil, fmt.Errorf("open %s: %w", table, err)
		}
		err = ReadTable(table, rc, &tables, report)
		rc.Close()
		if err != nil {
			return commerce.Tables{}, nil, err
		}
	}

	return tables, report, nil
}

// ReadTable decodes one table from r into the matching field of tables
func ReadTable(table string, r io.Reader, tables *commerce.Tables, report *Report) error {
	columns, ok := Columns[table]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}

	p, err := NewParser(r)
	if err != nil {
		return fmt.Errorf("%s: %w", table, err)
	}
	if missing := p.Missing(columns); len(missing) > 0 {
		return missingColumnsError(table, missing)
	}

	switch table {
	case commerce.TableOrderItems:
		tables.OrderItems, err = decodeAll(p, table, report, decodeOrderItem)
	case commerce.TableOrderPayments:
		tables.OrderPayments, err = decodeAll(p, table, report, decodeOrderPayment)
	case commerce.TableProducts:
		tables.Products, err = decodeAll(p, table, report, decodeProduct)
	case commerce.TableOrders:
		tables.Orders, err = decodeAll(p, table, report, decodeOrder)
	case commerce.TableCustomers:
		tables.Customers, err = decodeAll(p, table, report, decodeCustomer)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", table, err)
	}

	report.Rows[table] = p.Rows()
	return nil
}

func decodeAll[T any](p *Parser, table string, report *Report, decode func(*Row, func(RowError)) (T, *RowError)) ([]T, error) {
	out := make([]T, 0)
	coerced := func(e RowError) {
		e.Table = table
		report.coerce(e)
	}
	for {
		row, err := p.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}

		v, rowErr := decode(row, coerced)
		if rowErr != nil {
			rowErr.Table = table
			report.skip(*rowErr)
			continue
		}
		out = append(out, v)
	}
}

func required(row *Row, column string) (string, *RowError) {
	v := row.Get(column)
	if v == "" {
		return "", &RowError{Line: row.Line, Column: column, Code: CodeRequiredField, Message: "value is required"}
	}
	return v, nil
}

func amount(row *Row, column string) (decimal.Decimal, *RowError) {
	raw := row.Get(column)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, &RowError{Line: row.Line, Column: column, Code: CodeInvalidNumber, Message: "not a number", Value: raw}
	}
	return d, nil
}

func decodeOrderItem(row *Row, coerced func(RowError)) (commerce.OrderItem, *RowError) {
	price, e := amount(row, ColPrice)
	if e != nil {
		e.Message = "not a number, read as 0"
		coerced(*e)
	}
	// an unusable date only excludes the row from time based panels
	shipping, _ := analytics.ParseTimestamp(row.Get(ColShippingLimitDate))

	return commerce.OrderItem{
		OrderID:           row.Get(ColOrderID),
		ProductID:         row.Get(ColProductID),
		Price:             price,
		ShippingLimitDate: shipping,
	}, nil
}

func decodeOrderPayment(row *Row, _ func(RowError)) (commerce.OrderPayment, *RowError) {
	orderID, e := required(row, ColOrderID)
	if e != nil {
		return commerce.OrderPayment{}, e
	}
	value, e := amount(row, ColPaymentValue)
	if e != nil {
		return commerce.OrderPayment{}, e
	}
	return commerce.OrderPayment{
		OrderID:     orderID,
		PaymentType: row.Get(ColPaymentType),
		Amount:      value,
	}, nil
}

func decodeProduct(row *Row, _ func(RowError)) (commerce.Product, *RowError) {
	productID, e := required(row, ColProductID)
	if e != nil {
		return commerce.Product{}, e
	}
	return commerce.Product{ProductID: productID, Category: row.Get(ColCategory)}, nil
}

func decodeOrder(row *Row, _ func(RowError)) (commerce.Order, *RowError) {
	orderID, e := required(row, ColOrderID)
	if e != nil {
		return commerce.Order{}, e
	}
	return commerce.Order{OrderID: orderID, CustomerID: row.Get(ColCustomerID)}, nil
}

func decodeCustomer(row *Row, _ func(RowError)) (commerce.Customer, *RowError) {
	customerID, e := required(row, ColCustomerID)
	if e != nil {
		return commerce.Customer{}, e
	}
	return commerce.Customer{CustomerID: customerID, ZipCodePrefix: row.Get(ColZipPrefix)}, nil
}
