package database

import (
	"path/filepath"
	"testing"

	"github.com/blues/giftreg/internal/config"
	"github.com/blues/giftreg/internal/model"
	"github.com/shopspring/decimal"
)

func TestInitSQLiteMigratesAndCascades(t *testing.T) {
	db, err := Init(config.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "gifts.db"),
	})
	if err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	if err := Ping(db); err != nil {
		t.Fatalf("Ping() error: %v", err)
	}

	gift := model.GiftModel{Name: "Jantar", TargetAmount: decimal.NewFromInt(300), Active: true}
	if err := db.Create(&gift).Error; err != nil {
		t.Fatalf("create gift: %v", err)
	}
	contribution := model.ContributionModel{
		GiftId:        gift.Id,
		PayerName:     "Ana",
		PayerEmail:    "ana@example.com",
		Amount:        decimal.NewFromInt(50),
		Status:        model.ContributionStatusPending,
		PaymentMethod: model.PaymentMethodPix,
	}
	if err := db.Create(&contribution).Error; err != nil {
		t.Fatalf("create contribution: %v", err)
	}

	if err := db.Delete(&model.GiftModel{}, gift.Id).Error; err != nil {
		t.Fatalf("delete gift: %v", err)
	}
	var count int64
	db.Model(&model.ContributionModel{}).Where("gift_id = ?", gift.Id).Count(&count)
	if count != 0 {
		t.Errorf("contributions should cascade on gift delete, found %d", count)
	}
}

func TestInitRejectsUnknownDriver(t *testing.T) {
	if _, err := Init(config.DatabaseConfig{Driver: "mysql"}); err == nil {
		t.Error("expected error")
	}
}

func TestSQLiteDSN(t *testing.T) {
	if got := sqliteDSN("a.db"); got != "file:a.db?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate" {
		t.Errorf("sqliteDSN() = %q", got)
	}
	if got := sqliteDSN("a.db?cache=shared"); got != "file:a.db?cache=shared&_foreign_keys=on&_busy_timeout=5000&_txlock=immediate" {
		t.Errorf("sqliteDSN() = %q", got)
	}
}
