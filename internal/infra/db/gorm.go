package db

import (
	"errors"
	"fmt"

	"storefront/internal/domain/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ErrNoDSN = errors.New("db: empty dsn")

// Connect はDBに接続して *gorm.DB を返す。
// DATABASE_URLが無いときは呼ばない（カートはメモリだけになる）。
func Connect(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, ErrNoDSN
	}

	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("db: open: %w", err)
	}
	return gdb, nil
}

// Migrate はローカルで持つテーブルだけ作る。
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(&model.CartLine{})
}
