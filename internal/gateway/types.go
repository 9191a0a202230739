package gateway

import (
	"strconv"

	"github.com/mercadopago/sdk-go/pkg/merchantorder"
	"github.com/mercadopago/sdk-go/pkg/payment"
)

// Preference 支付偏好，ID 作为贡献的外部支付句柄
type Preference struct {
	ID          string
	RedirectURL string
}

// Payment 网关侧的支付
type Payment struct {
	ID                int64
	Status            string
	StatusDetail      string
	ExternalReference string
	TransactionAmount float64
}

// IDString 支付ID字符串形式
func (p Payment) IDString() string {
	return strconv.FormatInt(p.ID, 10)
}

// MerchantOrder 网关侧的订单
type MerchantOrder struct {
	ID                int64
	PreferenceID      string
	ExternalReference string
	OrderStatus       string
	Payments          []Payment
}

func toPayment(r payment.Response) Payment {
	return Payment{
		ID:                int64(r.ID),
		Status:            r.Status,
		StatusDetail:      r.StatusDetail,
		ExternalReference: r.ExternalReference,
		TransactionAmount: r.TransactionAmount,
	}
}

func toMerchantOrder(r *merchantorder.Response) *MerchantOrder {
	order := &MerchantOrder{
		ID:                int64(r.ID),
		PreferenceID:      r.PreferenceID,
		ExternalReference: r.ExternalReference,
		OrderStatus:       r.OrderStatus,
		Payments:          make([]Payment, 0, len(r.Payments)),
	}
	for _, p := range r.Payments {
		order.Payments = append(order.Payments, Payment{ID: int64(p.ID), Status: p.Status})
	}
	return order
}
