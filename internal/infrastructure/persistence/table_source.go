package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/Nadifnugraha/dicowi/internal/domain/commerce"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const insertBatchSize = 500

// TableSource reads and writes the input bundle in a relational database.
// It implements commerce.TableSource.
type TableSource struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewTableSource creates a table source over db
func NewTableSource(db *gorm.DB, logger *zap.Logger) *TableSource {
	return &TableSource{db: db, logger: logger}
}

// Load reads all five tables in insertion order
func (s *TableSource) Load(ctx context.Context) (commerce.Tables, error) {
	start := time.Now()
	var (
		t   commerce.Tables
		err error
	)

	if t.OrderItems, err = loadTable(ctx, s.db, commerce.TableOrderItems, (*OrderItemModel).ToDomain); err != nil {
		return commerce.Tables{}, err
	}
	if t.OrderPayments, err = loadTable(ctx, s.db, commerce.TableOrderPayments, (*OrderPaymentModel).ToDomain); err != nil {
		return commerce.Tables{}, err
	}
	if t.Products, err = loadTable(ctx, s.db, commerce.TableProducts, (*ProductModel).ToDomain); err != nil {
		return commerce.Tables{}, err
	}
	if t.Orders, err = loadTable(ctx, s.db, commerce.TableOrders, (*OrderModel).ToDomain); err != nil {
		return commerce.Tables{}, err
	}
	if t.Customers, err = loadTable(ctx, s.db, commerce.TableCustomers, (*CustomerModel).ToDomain); err != nil {
		return commerce.Tables{}, err
	}

	s.logger.Info("bundle loaded from database",
		zap.Any("rows", t.RowCounts()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return t, nil
}

// Save replaces the stored bundle with t in a single transaction
func (s *TableSource) Save(ctx context.Context, t commerce.Tables) error {
	items, payments, products, orders, customers := modelsFromTables(t)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := replaceTable(tx, commerce.TableOrderItems, items); err != nil {
			return err
		}
		if err := replaceTable(tx, commerce.TableOrderPayments, payments); err != nil {
			return err
		}
		if err := replaceTable(tx, commerce.TableProducts, products); err != nil {
			return err
		}
		if err := replaceTable(tx, commerce.TableOrders, orders); err != nil {
			return err
		}
		return replaceTable(tx, commerce.TableCustomers, customers)
	})
	if err != nil {
		return err
	}

	s.logger.Info("bundle saved to database", zap.Any("rows", t.RowCounts()))
	return nil
}

func loadTable[M any, T any](ctx context.Context, db *gorm.DB, table string, toDomain func(*M) T) ([]T, error) {
	var models []M
	if err := db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", table, err)
	}

	rows := make([]T, len(models))
	for i := range models {
		rows[i] = toDomain(&models[i])
	}
	return rows, nil
}

func replaceTable[M any](tx *gorm.DB, table string, rows []M) error {
	var model M
	if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model).Error; err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}
	if len(rows) == 0 {
		return nil
	}
	if err := tx.CreateInBatches(rows, insertBatchSize).Error; err != nil {
		return fmt.Errorf("failed to insert %s: %w", table, err)
	}
	return nil
}
