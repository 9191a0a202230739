package logic

import (
	"context"
	"errors"
	"fmt"

	"github.com/blues/giftreg/internal/apperr"
	"github.com/blues/giftreg/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GiftLogic 礼物账本
type GiftLogic struct {
	db *gorm.DB
}

// NewGiftLogic 创建礼物账本
func NewGiftLogic(db *gorm.DB) *GiftLogic {
	return &GiftLogic{db: db}
}

// WithTx 绑定到事务
func (g *GiftLogic) WithTx(tx *gorm.DB) *GiftLogic {
	return &GiftLogic{db: tx}
}

// Get 获取礼物详情
func (g *GiftLogic) Get(ctx context.Context, id int64) (*model.GiftModel, error) {
	var gift model.GiftModel
	if err := g.db.WithContext(ctx).First(&gift, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("gift", id)
		}
		return nil, apperr.Persistence("get gift", err)
	}
	return &gift, nil
}

// ListActive 按创建顺序列出上架礼物
func (g *GiftLogic) ListActive(ctx context.Context) ([]model.GiftModel, error) {
	var gifts []model.GiftModel
	if err := g.db.WithContext(ctx).
		Where("active = ?", true).
		Order("created_at ASC, id ASC").
		Find(&gifts).Error; err != nil {
		return nil, apperr.Persistence("list gifts", err)
	}
	return gifts, nil
}

// applyDelta 调整已筹金额，必须在对账事务内调用
func (g *GiftLogic) applyDelta(id int64, delta decimal.Decimal) (*model.GiftModel, error) {
	if !delta.IsZero() {
		result := g.db.Model(&model.GiftModel{}).
			Where("id = ?", id).
			Update("raised_amount", gorm.Expr("raised_amount + ?", delta))
		if result.Error != nil {
			return nil, apperr.Persistence("apply gift delta", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, apperr.NotFound("gift", id)
		}
	}

	var gift model.GiftModel
	if err := g.db.First(&gift, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("gift", id)
		}
		return nil, apperr.Persistence("reload gift", err)
	}
	return &gift, nil
}

// SetActive 上架或下架，礼物从不物理删除
func (g *GiftLogic) SetActive(ctx context.Context, id int64, active bool) error {
	result := g.db.WithContext(ctx).Model(&model.GiftModel{}).Where("id = ?", id).Update("active", active)
	if result.Error != nil {
		return apperr.Persistence("set gift active", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("gift", id)
	}
	return nil
}

// SeedGift 种子数据条目
type SeedGift struct {
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	TargetAmount string `yaml:"target_amount"`
	ImageURL     string `yaml:"image_url"`
	Active       *bool  `yaml:"active"`
}

// Seed 按名称新增或更新礼物，不会修改已筹金额
func (g *GiftLogic) Seed(ctx context.Context, seeds []SeedGift) (added, updated int, err error) {
	err = g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, s := range seeds {
			if s.Name == "" {
				return apperr.Validation("name", "must not be empty")
			}
			target, err := decimal.NewFromString(s.TargetAmount)
			if err != nil || !target.IsPositive() {
				return apperr.Validation("target_amount", fmt.Sprintf("gift %q needs a positive target", s.Name))
			}
			active := true
			if s.Active != nil {
				active = *s.Active
			}
			image := s.ImageURL
			if image == "" {
				image = model.DefaultGiftImage
			}

			var existing model.GiftModel
			err = tx.Where("name = ?", s.Name).First(&existing).Error
			switch {
			case err == nil:
				if err := tx.Model(&existing).Updates(map[string]interface{}{
					"description":   s.Description,
					"target_amount": target,
					"active":        active,
					"image_url":     image,
				}).Error; err != nil {
					return err
				}
				updated++
			case errors.Is(err, gorm.ErrRecordNotFound):
				gift := model.GiftModel{
					Name:         s.Name,
					Description:  s.Description,
					TargetAmount: target,
					RaisedAmount: decimal.Zero,
					Active:       active,
					ImageURL:     image,
				}
				if err := tx.Create(&gift).Error; err != nil {
					return err
				}
				added++
			default:
				return err
			}
		}
		return nil
	})
	if err != nil {
		added, updated = 0, 0
		if !apperr.IsValidation(err) {
			err = apperr.Persistence("seed gifts", err)
		}
	}
	return added, updated, err
}

// GiftStats 礼物统计
type GiftStats struct {
	GiftId               int64           `json:"gift_id"`
	TargetAmount         decimal.Decimal `json:"target_amount"`
	RaisedAmount         decimal.Decimal `json:"raised_amount"`
	CompletionPercentage float64         `json:"completion_percentage"`
	Complete             bool            `json:"complete"`
	ContributorCount     int64           `json:"contributor_count"`
	ApprovedCount        int64           `json:"approved_count"`
	PendingCount         int64           `json:"pending_count"`
}

// GetGiftStats 获取礼物统计信息
func (g *GiftLogic) GetGiftStats(ctx context.Context, id int64) (*GiftStats, error) {
	gift, err := g.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	stats := &GiftStats{
		GiftId:               gift.Id,
		TargetAmount:         gift.TargetAmount,
		RaisedAmount:         gift.RaisedAmount,
		CompletionPercentage: gift.CompletionPercentage(),
		Complete:             gift.IsComplete(),
	}

	db := g.db.WithContext(ctx).Model(&model.ContributionModel{})
	if err := db.Where("gift_id = ? AND status = ?", id, model.ContributionStatusApproved).
		Distinct("payer_email").Count(&stats.ContributorCount).Error; err != nil {
		return nil, apperr.Persistence("count contributors", err)
	}
	if err := g.db.WithContext(ctx).Model(&model.ContributionModel{}).
		Where("gift_id = ? AND status = ?", id, model.ContributionStatusApproved).
		Count(&stats.ApprovedCount).Error; err != nil {
		return nil, apperr.Persistence("count approved", err)
	}
	if err := g.db.WithContext(ctx).Model(&model.ContributionModel{}).
		Where("gift_id = ? AND status = ?", id, model.ContributionStatusPending).
		Count(&stats.PendingCount).Error; err != nil {
		return nil, apperr.Persistence("count pending", err)
	}
	return stats, nil
}
