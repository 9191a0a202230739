package webhook

import (
	"context"
	"strconv"
	"strings"

	"github.com/blues/giftreg/internal/apperr"
	"github.com/blues/giftreg/internal/gateway"
	"github.com/blues/giftreg/internal/logger"
	"github.com/blues/giftreg/internal/logic"
	"github.com/blues/giftreg/internal/model"
)

// PaymentLookup 网关支付查询
type PaymentLookup interface {
	GetPayment(ctx context.Context, id string) (*gateway.Payment, error)
}

// OrderLookup 网关订单查询
type OrderLookup interface {
	GetMerchantOrder(ctx context.Context, id string) (*gateway.MerchantOrder, error)
}

// ContributionFinder 按外部句柄查找贡献
type ContributionFinder interface {
	FindByExternalHandle(ctx context.Context, handle string) (*model.ContributionModel, error)
}

// Reconciler 状态对账
type Reconciler interface {
	Reconcile(ctx context.Context, contributionId int64, status model.ContributionStatus) (*logic.ReconcileResult, error)
}

// PaymentProcessor payment 主题处理器
type PaymentProcessor struct {
	payments      PaymentLookup
	contributions ContributionFinder
	reconciler    Reconciler
	log           *logger.Logger
}

// NewPaymentProcessor 创建 payment 处理器
func NewPaymentProcessor(payments PaymentLookup, contributions ContributionFinder, reconciler Reconciler, log *logger.Logger) *PaymentProcessor {
	return &PaymentProcessor{
		payments:      payments,
		contributions: contributions,
		reconciler:    reconciler,
		log:           log,
	}
}

// GetTopic 获取支持的主题
func (p *PaymentProcessor) GetTopic() string {
	return TopicPayment
}

// Process 查询支付的权威状态并对账
func (p *PaymentProcessor) Process(ctx context.Context, n Notification) (Outcome, error) {
	payment, err := p.payments.GetPayment(ctx, n.ResourceID)
	if err != nil {
		return "", err
	}

	contributionId, err := p.contributionFor(ctx, payment)
	if err != nil {
		return "", err
	}
	return applyProviderStatus(ctx, p.reconciler, p.log, contributionId, payment)
}

func (p *PaymentProcessor) contributionFor(ctx context.Context, payment *gateway.Payment) (int64, error) {
	record, err := p.contributions.FindByExternalHandle(ctx, payment.IDString())
	if err == nil {
		return record.Id, nil
	}
	if !apperr.IsNotFound(err) {
		return 0, err
	}
	id, ok, err := referenceID(payment.ExternalReference)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, apperr.NotFound("contribution for payment", payment.ID)
	}
	return id, nil
}

// referenceID 解析 external_reference 中的贡献ID
func referenceID(externalReference string) (int64, bool, error) {
	ref := strings.TrimSpace(externalReference)
	if ref == "" {
		return 0, false, nil
	}
	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil || id <= 0 {
		return 0, false, apperr.Validation("external_reference", "not a contribution id: "+ref)
	}
	return id, true, nil
}

func applyProviderStatus(ctx context.Context, reconciler Reconciler, log *logger.Logger, contributionId int64, payment *gateway.Payment) (Outcome, error) {
	status, ok := gateway.MapStatus(payment.Status)
	if !ok {
		log.Warn("Unmapped provider status %q for payment %d", payment.Status, payment.ID)
		return OutcomeIgnored, nil
	}

	result, err := reconciler.Reconcile(ctx, contributionId, status)
	if err != nil {
		return "", err
	}
	if !result.Applied {
		return OutcomeIgnored, nil
	}
	return OutcomeProcessed, nil
}
