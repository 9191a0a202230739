package webhook

import (
	"context"

	"github.com/blues/giftreg/internal/apperr"
	"github.com/blues/giftreg/internal/gateway"
	"github.com/blues/giftreg/internal/logger"
)

// MerchantOrderProcessor merchant_order 主题处理器
type MerchantOrderProcessor struct {
	orders        OrderLookup
	payments      PaymentLookup
	contributions ContributionFinder
	reconciler    Reconciler
	log           *logger.Logger
}

// NewMerchantOrderProcessor 创建 merchant_order 处理器
func NewMerchantOrderProcessor(orders OrderLookup, payments PaymentLookup, contributions ContributionFinder, reconciler Reconciler, log *logger.Logger) *MerchantOrderProcessor {
	return &MerchantOrderProcessor{
		orders:        orders,
		payments:      payments,
		contributions: contributions,
		reconciler:    reconciler,
		log:           log,
	}
}

// GetTopic 获取支持的主题
func (p *MerchantOrderProcessor) GetTopic() string {
	return TopicMerchantOrder
}

// Process 从订单选出代表支付，再查询该支付的权威状态
func (p *MerchantOrderProcessor) Process(ctx context.Context, n Notification) (Outcome, error) {
	order, err := p.orders.GetMerchantOrder(ctx, n.ResourceID)
	if err != nil {
		return "", err
	}

	selected, ok := gateway.SelectPayment(order.Payments)
	if !ok {
		p.log.Debug("Merchant order %d has no payments yet", order.ID)
		return OutcomeIgnored, nil
	}

	payment, err := p.payments.GetPayment(ctx, selected.IDString())
	if err != nil {
		return "", err
	}

	contributionId, err := p.contributionFor(ctx, order, payment)
	if err != nil {
		return "", err
	}
	return applyProviderStatus(ctx, p.reconciler, p.log, contributionId, payment)
}

func (p *MerchantOrderProcessor) contributionFor(ctx context.Context, order *gateway.MerchantOrder, payment *gateway.Payment) (int64, error) {
	if id, ok, err := referenceID(order.ExternalReference); err != nil || ok {
		return id, err
	}
	if order.PreferenceID != "" {
		record, err := p.contributions.FindByExternalHandle(ctx, order.PreferenceID)
		if err == nil {
			return record.Id, nil
		}
		if !apperr.IsNotFound(err) {
			return 0, err
		}
	}
	if id, ok, err := referenceID(payment.ExternalReference); err != nil || ok {
		return id, err
	}
	return 0, apperr.NotFound("contribution for merchant order", order.ID)
}
