package logic

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/blues/giftreg/internal/config"
	"github.com/blues/giftreg/internal/database"
	"github.com/blues/giftreg/internal/gateway"
	"github.com/blues/giftreg/internal/logger"
	"github.com/blues/giftreg/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Init(config.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "gifts.db"),
	})
	if err != nil {
		t.Fatalf("init database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func createGift(t *testing.T, db *gorm.DB, name, target string) *model.GiftModel {
	t.Helper()
	gift := &model.GiftModel{
		Name:         name,
		TargetAmount: decimal.RequireFromString(target),
		RaisedAmount: decimal.Zero,
		Active:       true,
		ImageURL:     model.DefaultGiftImage,
	}
	if err := db.Create(gift).Error; err != nil {
		t.Fatalf("create gift: %v", err)
	}
	return gift
}

func createPending(t *testing.T, db *gorm.DB, giftId int64, amount string, method model.PaymentMethod) *model.ContributionModel {
	t.Helper()
	record, err := NewContributionLogic(db).Create(context.Background(), CreateContributionInput{
		GiftId:     giftId,
		PayerName:  "Convidado",
		PayerEmail: "convidado@example.com",
		TaxID:      "529.982.247-25",
		Phone:      "11987654321",
		Amount:     decimal.RequireFromString(amount),
		Method:     method,
	})
	if err != nil {
		t.Fatalf("create contribution: %v", err)
	}
	return record
}

func raisedOf(t *testing.T, db *gorm.DB, giftId int64) decimal.Decimal {
	t.Helper()
	var gift model.GiftModel
	if err := db.First(&gift, giftId).Error; err != nil {
		t.Fatalf("reload gift: %v", err)
	}
	return gift.RaisedAmount
}

func statusOf(t *testing.T, db *gorm.DB, id int64) model.ContributionStatus {
	t.Helper()
	var record model.ContributionModel
	if err := db.First(&record, id).Error; err != nil {
		t.Fatalf("reload contribution: %v", err)
	}
	return record.Status
}

func assertDecimal(t *testing.T, what string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s = %s, want %s", what, got.String(), want)
	}
}

// fakeGateway 可替换行为的网关
type fakeGateway struct {
	CreatePreferenceFunc func(ctx context.Context, c *model.ContributionModel, g *model.GiftModel) (*gateway.Preference, error)
	calls                int
}

func (f *fakeGateway) CreatePreference(ctx context.Context, c *model.ContributionModel, g *model.GiftModel) (*gateway.Preference, error) {
	f.calls++
	if f.CreatePreferenceFunc != nil {
		return f.CreatePreferenceFunc(ctx, c, g)
	}
	return &gateway.Preference{ID: "pref-1", RedirectURL: "https://mp.example/checkout"}, nil
}

func newTestCheckout(db *gorm.DB, gw PaymentGateway, cfg config.ContributionConfig) *CheckoutLogic {
	log := logger.NewNop()
	return NewCheckoutLogic(db, NewReconcileLogic(db, log), gw, cfg, log)
}

func nopLogger() *logger.Logger {
	return logger.NewNop()
}
