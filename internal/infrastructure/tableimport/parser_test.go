package tableimport

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParser(t *testing.T) {
	t.Run("reads the header", func(t *testing.T) {
		p, err := NewParser(strings.NewReader("order_id, product_id ,price\no1,p1,10"))
		require.NoError(t, err)
		assert.Equal(t, []string{"order_id", "product_id", "price"}, p.Headers())
	})

	t.Run("byte order mark is stripped", func(t *testing.T) {
		p, err := NewParser(strings.NewReader("\xEF\xBB\xBFcustomer_id,customer_zip_code_prefix\nc1,01310"))
		require.NoError(t, err)
		assert.Equal(t, "customer_id", p.Headers()[0])
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := NewParser(strings.NewReader(""))
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("custom delimiter", func(t *testing.T) {
		p, err := NewParser(strings.NewReader("a;b\n1;2"), WithDelimiter(';'))
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, p.Headers())
	})

	t.Run("latin-1 input is decoded", func(t *testing.T) {
		p, err := NewParser(strings.NewReader("product_id,product_category_name\np1,cama_mesa_banho_\xe7\n"))
		require.NoError(t, err)

		row, err := p.Next()
		require.NoError(t, err)
		assert.Equal(t, "cama_mesa_banho_ç", row.Get("product_category_name"))
	})
}

func TestParser_Next(t *testing.T) {
	input := "order_id,payment_type,payment_value\n" +
		"o1,credit_card,10.5\n" +
		",,\n" +
		"o2,boleto\n" +
		"\"o3\",\"voucher\",\"1.00\"\n"

	p, err := NewParser(strings.NewReader(input))
	require.NoError(t, err)

	var rows []*Row
	for {
		row, err := p.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		rows = append(rows, row)
	}

	require.Len(t, rows, 3, "blank rows are skipped")
	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, "10.5", rows[0].Get("payment_value"))
	assert.Equal(t, 4, rows[1].Line)
	assert.Equal(t, "", rows[1].Get("payment_value"), "short rows leave trailing columns empty")
	assert.Equal(t, "voucher", rows[2].Get("payment_type"))
	assert.Equal(t, 3, p.Rows())
}

func TestParser_Missing(t *testing.T) {
	p, err := NewParser(strings.NewReader("order_id,price\n"))
	require.NoError(t, err)

	assert.Empty(t, p.Missing([]string{"order_id"}))
	assert.Equal(t, []string{"product_id", "shipping_limit_date"},
		p.Missing([]string{"order_id", "product_id", "price", "shipping_limit_date"}))
}
