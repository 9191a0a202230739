package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const DefaultGiftImage = "/static/images/gift-default.jpg"

// GiftModel 礼物清单条目
type GiftModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`

	// 基本信息
	Name        string `json:"name" gorm:"size:100;not null;uniqueIndex"`
	Description string `json:"description" gorm:"type:text"`
	ImageURL    string `json:"image_url" gorm:"size:300"`
	Active      bool   `json:"active" gorm:"not null"`

	// 金额信息，RaisedAmount 只能由对账流程修改
	TargetAmount decimal.Decimal `json:"target_amount" gorm:"type:numeric(10,2);not null"`
	RaisedAmount decimal.Decimal `json:"raised_amount" gorm:"type:numeric(10,2);not null;default:0"`
}

// TableName 自定义表名
func (GiftModel) TableName() string {
	return "gift"
}

var hundred = decimal.NewFromInt(100)

// CompletionPercentage 完成百分比，封顶100
func (g *GiftModel) CompletionPercentage() float64 {
	if !g.TargetAmount.IsPositive() {
		return 0
	}
	pct := g.RaisedAmount.Div(g.TargetAmount).Mul(hundred)
	if pct.GreaterThan(hundred) {
		pct = hundred
	}
	return pct.Round(2).InexactFloat64()
}

// IsComplete 是否已筹满
func (g *GiftModel) IsComplete() bool {
	return g.RaisedAmount.GreaterThanOrEqual(g.TargetAmount)
}
