package logic

import (
	"context"
	"fmt"
	"time"

	"github.com/blues/giftreg/internal/apperr"
	"github.com/blues/giftreg/internal/config"
	"github.com/blues/giftreg/internal/gateway"
	"github.com/blues/giftreg/internal/logger"
	"github.com/blues/giftreg/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentGateway 创建支付偏好
type PaymentGateway interface {
	CreatePreference(ctx context.Context, contribution *model.ContributionModel, gift *model.GiftModel) (*gateway.Preference, error)
}

// ContributeResult 发起贡献的结果
type ContributeResult struct {
	ContributionId int64
	GiftId         int64
	Method         model.PaymentMethod
	Status         model.ContributionStatus
	PaymentURL     string
	RaisedAmount   decimal.Decimal
}

// CheckoutLogic 发起贡献
type CheckoutLogic struct {
	gifts         *GiftLogic
	contributions *ContributionLogic
	reconcile     *ReconcileLogic
	gateway       PaymentGateway
	cfg           config.ContributionConfig
	log           *logger.Logger
	now           func() time.Time
}

// NewCheckoutLogic 创建发起贡献逻辑
func NewCheckoutLogic(db *gorm.DB, reconcile *ReconcileLogic, gw PaymentGateway, cfg config.ContributionConfig, log *logger.Logger) *CheckoutLogic {
	return &CheckoutLogic{
		gifts:         NewGiftLogic(db),
		contributions: NewContributionLogic(db),
		reconcile:     reconcile,
		gateway:       gw,
		cfg:           cfg,
		log:           log.Named("checkout"),
		now:           time.Now,
	}
}

// Contribute 创建贡献。PIX 立即确认；信用卡创建支付偏好并返回跳转链接，
// 网关失败时删除刚创建的贡献。
func (c *CheckoutLogic) Contribute(ctx context.Context, in CreateContributionInput) (*ContributeResult, error) {
	if minAmount := c.cfg.MinAmountDecimal(); minAmount.IsPositive() && in.Amount.LessThan(minAmount) {
		return nil, apperr.Validation("amount", fmt.Sprintf("must be at least %s", minAmount.StringFixed(2)))
	}
	if err := c.checkAttempts(ctx, in.PayerEmail); err != nil {
		return nil, err
	}

	record, err := c.contributions.Create(ctx, in)
	if err != nil {
		return nil, err
	}

	switch record.PaymentMethod {
	case model.PaymentMethodPix:
		return c.confirmPix(ctx, record)
	case model.PaymentMethodCard:
		return c.startCard(ctx, record)
	}
	return nil, apperr.Validation("method", "must be pix or card")
}

func (c *CheckoutLogic) checkAttempts(ctx context.Context, email string) error {
	if c.cfg.AttemptLimit <= 0 || c.cfg.AttemptWindow <= 0 {
		return nil
	}
	count, err := c.contributions.CountRecentByEmail(ctx, email, c.now().Add(-c.cfg.AttemptWindow))
	if err != nil {
		return err
	}
	if count >= int64(c.cfg.AttemptLimit) {
		c.log.Warn("Too many contribution attempts from %s (%d in %s)", email, count, c.cfg.AttemptWindow)
		return apperr.Validation("payer_email", "too many attempts, try again later")
	}
	return nil
}

func (c *CheckoutLogic) confirmPix(ctx context.Context, record *model.ContributionModel) (*ContributeResult, error) {
	result, err := c.reconcile.Reconcile(ctx, record.Id, model.ContributionStatusApproved)
	if err != nil {
		c.compensate(ctx, record.Id)
		return nil, err
	}
	return &ContributeResult{
		ContributionId: record.Id,
		GiftId:         record.GiftId,
		Method:         record.PaymentMethod,
		Status:         result.Status,
		RaisedAmount:   result.RaisedAmount,
	}, nil
}

func (c *CheckoutLogic) startCard(ctx context.Context, record *model.ContributionModel) (*ContributeResult, error) {
	gift, err := c.gifts.Get(ctx, record.GiftId)
	if err != nil {
		c.compensate(ctx, record.Id)
		return nil, err
	}

	pref, err := c.gateway.CreatePreference(ctx, record, gift)
	if err != nil {
		c.log.Warn("Preference for contribution %d failed: %v", record.Id, err)
		c.compensate(ctx, record.Id)
		return nil, err
	}

	if err := c.contributions.AttachExternalHandle(ctx, record.Id, pref.ID); err != nil {
		c.compensate(ctx, record.Id)
		return nil, err
	}

	return &ContributeResult{
		ContributionId: record.Id,
		GiftId:         record.GiftId,
		Method:         record.PaymentMethod,
		Status:         record.Status,
		PaymentURL:     pref.RedirectURL,
		RaisedAmount:   gift.RaisedAmount,
	}, nil
}

// compensate 删除未能进入支付流程的贡献，不留下孤立的待确认记录
func (c *CheckoutLogic) compensate(ctx context.Context, id int64) {
	if err := c.contributions.Delete(context.WithoutCancel(ctx), id); err != nil {
		c.log.Error("Failed to remove contribution %d after checkout failure: %v", id, err)
	}
}
