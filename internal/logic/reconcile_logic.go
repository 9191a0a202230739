package logic

import (
	"context"
	"errors"

	"github.com/blues/giftreg/internal/apperr"
	"github.com/blues/giftreg/internal/logger"
	"github.com/blues/giftreg/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// transitions 允许的状态迁移及其对已筹金额的影响方向
var transitions = map[model.ContributionStatus]map[model.ContributionStatus]int64{
	model.ContributionStatusPending: {
		model.ContributionStatusApproved:  1,
		model.ContributionStatusCancelled: 0,
	},
	model.ContributionStatusApproved: {
		model.ContributionStatusRefunded: -1,
	},
}

// ReconcileResult 对账结果
type ReconcileResult struct {
	ContributionId int64
	GiftId         int64
	PreviousStatus model.ContributionStatus
	Status         model.ContributionStatus
	Applied        bool
	RaisedAmount   decimal.Decimal
}

// ReconcileLogic 支付状态对账，所有状态变更与金额调整都经由此处
type ReconcileLogic struct {
	db            *gorm.DB
	gifts         *GiftLogic
	contributions *ContributionLogic
	log           *logger.Logger
}

// NewReconcileLogic 创建对账逻辑
func NewReconcileLogic(db *gorm.DB, log *logger.Logger) *ReconcileLogic {
	return &ReconcileLogic{
		db:            db,
		gifts:         NewGiftLogic(db),
		contributions: NewContributionLogic(db),
		log:           log.Named("reconcile"),
	}
}

// Reconcile 将贡献迁移到新状态，并在同一事务内调整礼物已筹金额。
// 重复通知与非法迁移都视为成功的空操作。
func (r *ReconcileLogic) Reconcile(ctx context.Context, contributionId int64, newStatus model.ContributionStatus) (*ReconcileResult, error) {
	if !newStatus.Valid() {
		return nil, apperr.Validation("status", "unknown status "+string(newStatus))
	}

	var result *ReconcileResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contributions := r.contributions.WithTx(tx)
		gifts := r.gifts.WithTx(tx)

		record, err := contributions.getForUpdate(contributionId)
		if err != nil {
			return err
		}

		result = &ReconcileResult{
			ContributionId: record.Id,
			GiftId:         record.GiftId,
			PreviousStatus: record.Status,
			Status:         record.Status,
		}

		if record.Status == newStatus {
			r.log.Debug("Contribution %d already %s, nothing to do", record.Id, newStatus)
			gift, err := gifts.applyDelta(record.GiftId, decimal.Zero)
			if err != nil {
				return err
			}
			result.RaisedAmount = gift.RaisedAmount
			return nil
		}

		sign, allowed := transitions[record.Status][newStatus]
		if !allowed {
			r.log.Warn("Ignoring transition %s -> %s for contribution %d", record.Status, newStatus, record.Id)
			gift, err := gifts.applyDelta(record.GiftId, decimal.Zero)
			if err != nil {
				return err
			}
			result.RaisedAmount = gift.RaisedAmount
			return nil
		}

		written, err := contributions.UpdateStatus(ctx, record.Id, record.Status, newStatus)
		if err != nil {
			return err
		}
		if !written {
			// 行锁在 SQLite 下无效，条件更新兜底
			r.log.Warn("Contribution %d changed concurrently, skipping %s", record.Id, newStatus)
			gift, err := gifts.applyDelta(record.GiftId, decimal.Zero)
			if err != nil {
				return err
			}
			result.RaisedAmount = gift.RaisedAmount
			return nil
		}

		gift, err := gifts.applyDelta(record.GiftId, record.Amount.Mul(decimal.NewFromInt(sign)))
		if err != nil {
			return err
		}

		result.Status = newStatus
		result.Applied = true
		result.RaisedAmount = gift.RaisedAmount
		return nil
	})
	if err != nil {
		var notFound *apperr.NotFoundError
		var persistence *apperr.PersistenceError
		if errors.As(err, &notFound) || errors.As(err, &persistence) {
			return nil, err
		}
		return nil, apperr.Persistence("reconcile contribution", err)
	}

	if result.Applied {
		r.log.Info("Contribution %d reconciled %s -> %s, gift %d raised %s",
			result.ContributionId, result.PreviousStatus, result.Status, result.GiftId, result.RaisedAmount.StringFixed(2))
	}
	return result, nil
}
