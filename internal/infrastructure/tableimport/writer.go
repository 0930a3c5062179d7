package tableimport

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Nadifnugraha/dicowi/internal/domain/commerce"
)

const timestampLayout = "2006-01-02 15:04:05"

// WriteTable encodes one table of tables as CSV with the column layout
// ReadTable expects
func WriteTable(w io.Writer, table string, tables commerce.Tables) error {
	cw := csv.NewWriter(w)

	switch table {
	case commerce.TableOrderItems:
		_ = cw.Write([]string{ColOrderID, ColOrderItemID, ColProductID, ColShippingLimitDate, ColPrice})
		seq := make(map[string]int)
		for _, it := range tables.OrderItems {
			seq[it.OrderID]++
			date := ""
			if it.ShippingLimitDate.Valid {
				date = it.ShippingLimitDate.Time.Format(timestampLayout)
			}
			_ = cw.Write([]string{it.OrderID, strconv.Itoa(seq[it.OrderID]), it.ProductID, date, it.Price.StringFixed(2)})
		}
	case commerce.TableOrderPayments:
		_ = cw.Write([]string{ColOrderID, ColPaymentSequential, ColPaymentType, ColPaymentValue})
		seq := make(map[string]int)
		for _, p := range tables.OrderPayments {
			seq[p.OrderID]++
			_ = cw.Write([]string{p.OrderID, strconv.Itoa(seq[p.OrderID]), p.PaymentType, p.Amount.StringFixed(2)})
		}
	case commerce.TableProducts:
		_ = cw.Write([]string{ColProductID, ColCategory})
		for _, p := range tables.Products {
			_ = cw.Write([]string{p.ProductID, p.Category})
		}
	case commerce.TableOrders:
		_ = cw.Write([]string{ColOrderID, ColCustomerID})
		for _, o := range tables.Orders {
			_ = cw.Write([]string{o.OrderID, o.CustomerID})
		}
	case commerce.TableCustomers:
		_ = cw.Write([]string{ColCustomerID, ColZipPrefix})
		for _, c := range tables.Customers {
			_ = cw.Write([]string{c.CustomerID, c.ZipCodePrefix})
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}

	cw.Flush()
	return cw.Error()
}

// WriteDir writes every table of tables into dir using the file names of
// files
func WriteDir(dir string, files map[string]string, tables commerce.Tables) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	for _, table := range commerce.TableNames {
		path := filepath.Join(dir, FileName(files, table))
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		err = WriteTable(f, table, tables)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}
