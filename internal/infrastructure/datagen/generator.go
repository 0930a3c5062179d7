// Package datagen produces synthetic order bundles for demos and tests.
package datagen

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Nadifnugraha/dicowi/internal/domain/commerce"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
)

// ErrInvalidConfig is returned for a generator configuration that cannot
// produce a bundle
var ErrInvalidConfig = errors.New("invalid generator config")

// Categories are the product categories drawn from
var Categories = []string{
	"cama_mesa_banho",
	"beleza_saude",
	"esporte_lazer",
	"informatica_acessorios",
	"moveis_decoracao",
	"utilidades_domesticas",
	"relogios_presentes",
	"telefonia",
	"automotivo",
	"brinquedos",
}

// PaymentTypes are the payment methods drawn from, most common first
var PaymentTypes = []string{"credit_card", "boleto", "voucher", "debit_card"}

// Config sizes the generated bundle. The same Seed always yields the same
// bundle.
type Config struct {
	Orders    int
	Products  int
	Customers int
	Start     time.Time
	End       time.Time
	Seed      uint64

	// fractions in [0, 1]
	NullCategoryRate float64
	UndefinedRate    float64
	OrphanItemRate   float64
}

// DefaultConfig returns a config for a bundle covering 2017 and 2018
func DefaultConfig() Config {
	return Config{
		Orders:           1000,
		Products:         200,
		Customers:        800,
		Start:            time.Date(2017, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:              time.Date(2018, time.December, 31, 23, 59, 59, 0, time.UTC),
		Seed:             1,
		NullCategoryRate: 0.02,
		UndefinedRate:    0.005,
		OrphanItemRate:   0.01,
	}
}

func (c Config) validate() error {
	switch {
	case c.Orders < 0:
		return fmt.Errorf("%w: orders must not be negative", ErrInvalidConfig)
	case c.Orders > 0 && (c.Products <= 0 || c.Customers <= 0):
		return fmt.Errorf("%w: products and customers are required when orders are generated", ErrInvalidConfig)
	case !c.End.After(c.Start):
		return fmt.Errorf("%w: end must be after start", ErrInvalidConfig)
	}
	for _, r := range []float64{c.NullCategoryRate, c.UndefinedRate, c.OrphanItemRate} {
		if r < 0 || r > 1 {
			return fmt.Errorf("%w: rates must be between 0 and 1", ErrInvalidConfig)
		}
	}
	return nil
}

// Generator builds bundles from a seeded faker
type Generator struct {
	cfg   Config
	faker *gofakeit.Faker
}

// New creates a generator for cfg
func New(cfg Config) (*Generator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Generator{cfg: cfg, faker: gofakeit.New(cfg.Seed)}, nil
}

// id returns a 32 character hex identifier in the style of the source data
func (g *Generator) id() string {
	return strings.ReplaceAll(g.faker.UUID(), "-", "")
}

func (g *Generator) chance(rate float64) bool {
	return rate > 0 && g.faker.Float64Range(0, 1) < rate
}

// Generate builds one bundle. Every order has between one and four line
// items and payments that add up to the order total; a voucher sometimes
// covers part of it.
func (g *Generator) Generate() commerce.Tables {
	var t commerce.Tables

	t.Products = make([]commerce.Product, g.cfg.Products)
	for i := range t.Products {
		category := g.faker.RandomString(Categories)
		if g.chance(g.cfg.NullCategoryRate) {
			category = ""
		}
		t.Products[i] = commerce.Product{ProductID: g.id(), Category: category}
	}

	t.Customers = make([]commerce.Customer, g.cfg.Customers)
	for i := range t.Customers {
		t.Customers[i] = commerce.Customer{CustomerID: g.id(), ZipCodePrefix: g.faker.Numerify("#####")}
	}

	t.Orders = make([]commerce.Order, g.cfg.Orders)
	for i := range t.Orders {
		order := commerce.Order{
			OrderID:    g.id(),
			CustomerID: t.Customers[g.faker.IntRange(0, len(t.Customers)-1)].CustomerID,
		}
		t.Orders[i] = order

		shipping := g.faker.DateRange(g.cfg.Start, g.cfg.End).Truncate(time.Second)
		total := decimal.Zero
		for range g.faker.IntRange(1, 4) {
			productID := t.Products[g.faker.IntRange(0, len(t.Products)-1)].ProductID
			if g.chance(g.cfg.OrphanItemRate) {
				productID = g.id()
			}
			price := decimal.NewFromFloat(g.faker.Price(5, 2000)).Round(2)
			total = total.Add(price)
			t.OrderItems = append(t.OrderItems, commerce.OrderItem{
				OrderID:           order.OrderID,
				ProductID:         productID,
				Price:             price,
				ShippingLimitDate: sql.NullTime{Time: shipping, Valid: true},
			})
		}

		t.OrderPayments = append(t.OrderPayments, g.payments(order.OrderID, total)...)
	}

	return t
}

func (g *Generator) payments(orderID string, total decimal.Decimal) []commerce.OrderPayment {
	if g.chance(g.cfg.UndefinedRate) {
		return []commerce.OrderPayment{{OrderID: orderID, PaymentType: "not_defined", Amount: decimal.Zero}}
	}

	method := g.faker.RandomString(PaymentTypes)
	if method == "voucher" || !g.chance(0.1) {
		return []commerce.OrderPayment{{OrderID: orderID, PaymentType: method, Amount: total}}
	}

	voucher := total.Mul(decimal.NewFromFloat(g.faker.Float64Range(0.1, 0.5))).Round(2)
	return []commerce.OrderPayment{
		{OrderID: orderID, PaymentType: method, Amount: total.Sub(voucher)},
		{OrderID: orderID, PaymentType: "voucher", Amount: voucher},
	}
}
