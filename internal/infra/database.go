package infra

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SilverPhantom1/zypos-sub000/internal/model"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that GORM
// cannot express (partial unique indexes, sequences).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := db.AutoMigrate(
		&model.Product{},
		&model.Sale{},
		&model.SaleLine{},
		&model.SaleAdjustment{},
		&model.CashSession{},
		&model.CashMovement{},
		&model.StockMovement{},
		&model.OperationStep{},
	); err != nil {
		return nil, fmt.Errorf("AutoMigrate: %w", err)
	}

	if err := applySchemaPatches(db); err != nil {
		return nil, fmt.Errorf("schema patches: %w", err)
	}

	return db, nil
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot handle on its
// own. Each statement uses IF NOT EXISTS semantics so re-running on an
// already-patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// One open cash session per worker. Session-open relies on this unique
		// violation (SQLSTATE 23505) rather than a check-then-act query, so two
		// near-simultaneous opens cannot both succeed.
		`CREATE UNIQUE INDEX IF NOT EXISTS uni_cash_sessions_open_worker
		     ON cash_sessions (worker_id)
		     WHERE status = 'open'`,
		// Atomic ticket number generation for checkout.
		`CREATE SEQUENCE IF NOT EXISTS sales_ticket_number_seq`,
		// Retry endpoint queries failed steps per operation.
		`CREATE INDEX IF NOT EXISTS idx_operation_steps_failed
		     ON operation_steps (operation_id)
		     WHERE status = 'failed'`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}

// RunMigrations applies the full schema for integration tests.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Product{},
		&model.Sale{},
		&model.SaleLine{},
		&model.SaleAdjustment{},
		&model.CashSession{},
		&model.CashMovement{},
		&model.StockMovement{},
		&model.OperationStep{},
	); err != nil {
		return err
	}
	return applySchemaPatches(db)
}
