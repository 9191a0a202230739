package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContributionModel 贡献记录
type ContributionModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`

	GiftId int64      `json:"gift_id" gorm:"not null;index"`
	Gift   *GiftModel `json:"-" gorm:"foreignKey:GiftId;constraint:OnDelete:CASCADE"`

	// 付款人信息
	PayerName  string  `json:"payer_name" gorm:"size:100;not null"`
	PayerEmail string  `json:"payer_email" gorm:"size:100;not null;index"`
	PayerTaxId *string `json:"payer_tax_id,omitempty" gorm:"size:20"`
	PayerPhone *string `json:"payer_phone,omitempty" gorm:"size:30"`

	// 创建后不可修改
	Amount  decimal.Decimal `json:"amount" gorm:"type:numeric(10,2);not null"`
	Message string          `json:"message" gorm:"type:text"`

	// 创建后只有 Status 与 ExternalHandle 会变化
	Status         ContributionStatus `json:"status" gorm:"size:20;not null;default:'pending';index"`
	ExternalHandle *string            `json:"external_handle,omitempty" gorm:"size:100;index"`
	PaymentMethod  PaymentMethod      `json:"payment_method" gorm:"size:20;not null"`
}

// TableName 自定义表名
func (ContributionModel) TableName() string {
	return "contribution"
}

// ContributionStatus 贡献状态
type ContributionStatus string

const (
	ContributionStatusPending   ContributionStatus = "pending"   // 待确认
	ContributionStatusApproved  ContributionStatus = "approved"  // 已到账，计入礼物金额
	ContributionStatusCancelled ContributionStatus = "cancelled" // 已取消
	ContributionStatusRefunded  ContributionStatus = "refunded"  // 已退款
)

// Valid 是否为已知状态
func (s ContributionStatus) Valid() bool {
	switch s {
	case ContributionStatusPending, ContributionStatusApproved,
		ContributionStatusCancelled, ContributionStatusRefunded:
		return true
	}
	return false
}

// PaymentMethod 支付方式
type PaymentMethod string

const (
	PaymentMethodPix  PaymentMethod = "pix"
	PaymentMethodCard PaymentMethod = "card"
)

// Valid 是否为支持的支付方式
func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodPix || m == PaymentMethodCard
}
