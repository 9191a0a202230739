package logic

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/blues/giftreg/internal/apperr"
	"github.com/blues/giftreg/internal/model"
	"github.com/blues/giftreg/internal/validation"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxMessageLength = 500

// ContributionLogic 贡献记录账本
type ContributionLogic struct {
	db *gorm.DB
}

// NewContributionLogic 创建贡献记录账本
func NewContributionLogic(db *gorm.DB) *ContributionLogic {
	return &ContributionLogic{db: db}
}

// WithTx 绑定到事务
func (c *ContributionLogic) WithTx(tx *gorm.DB) *ContributionLogic {
	return &ContributionLogic{db: tx}
}

// CreateContributionInput 新建贡献参数
type CreateContributionInput struct {
	GiftId     int64
	PayerName  string
	PayerEmail string
	TaxID      string
	Phone      string
	Amount     decimal.Decimal
	Method     model.PaymentMethod
	Message    string
}

// Create 创建待确认的贡献记录
func (c *ContributionLogic) Create(ctx context.Context, in CreateContributionInput) (*model.ContributionModel, error) {
	record, err := c.buildRecord(in)
	if err != nil {
		return nil, err
	}

	var gift model.GiftModel
	if err := c.db.WithContext(ctx).First(&gift, in.GiftId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("gift", in.GiftId)
		}
		return nil, apperr.Persistence("load gift", err)
	}
	if !gift.Active {
		return nil, apperr.Validation("gift_id", "gift is not accepting contributions")
	}

	if err := c.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, apperr.Persistence("create contribution", err)
	}
	return record, nil
}

func (c *ContributionLogic) buildRecord(in CreateContributionInput) (*model.ContributionModel, error) {
	name := strings.TrimSpace(in.PayerName)
	if name == "" {
		return nil, apperr.Validation("payer_name", "must not be empty")
	}
	if len(name) > 100 {
		return nil, apperr.Validation("payer_name", "must be at most 100 characters")
	}
	email := strings.ToLower(strings.TrimSpace(in.PayerEmail))
	if err := validation.Email(email); err != nil {
		return nil, err
	}
	amount := in.Amount.Round(2)
	if !amount.Equal(in.Amount) {
		return nil, apperr.Validation("amount", "must have at most 2 decimal places")
	}
	if !amount.IsPositive() {
		return nil, apperr.Validation("amount", "must be greater than zero")
	}
	if !in.Method.Valid() {
		return nil, apperr.Validation("method", "must be pix or card")
	}
	message := strings.TrimSpace(in.Message)
	if len(message) > maxMessageLength {
		return nil, apperr.Validation("message", "must be at most 500 characters")
	}

	record := &model.ContributionModel{
		GiftId:        in.GiftId,
		PayerName:     name,
		PayerEmail:    email,
		Amount:        amount,
		Message:       message,
		Status:        model.ContributionStatusPending,
		PaymentMethod: in.Method,
	}
	// 信用卡支付必须提供证件与电话，PIX 可选
	card := in.Method == model.PaymentMethodCard
	if card || strings.TrimSpace(in.TaxID) != "" {
		taxID, err := validation.TaxID(in.TaxID)
		if err != nil {
			return nil, err
		}
		record.PayerTaxId = &taxID
	}
	if card || strings.TrimSpace(in.Phone) != "" {
		phone, err := validation.Phone(in.Phone)
		if err != nil {
			return nil, err
		}
		record.PayerPhone = &phone
	}
	return record, nil
}

// Get 获取贡献记录
func (c *ContributionLogic) Get(ctx context.Context, id int64) (*model.ContributionModel, error) {
	var record model.ContributionModel
	if err := c.db.WithContext(ctx).First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("contribution", id)
		}
		return nil, apperr.Persistence("get contribution", err)
	}
	return &record, nil
}

// getForUpdate 加行锁读取，需在事务内调用
func (c *ContributionLogic) getForUpdate(id int64) (*model.ContributionModel, error) {
	var record model.ContributionModel
	if err := c.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("contribution", id)
		}
		return nil, apperr.Persistence("lock contribution", err)
	}
	return &record, nil
}

// FindByExternalHandle 按外部支付句柄查找
func (c *ContributionLogic) FindByExternalHandle(ctx context.Context, handle string) (*model.ContributionModel, error) {
	if handle == "" {
		return nil, apperr.NotFound("contribution", handle)
	}
	var record model.ContributionModel
	if err := c.db.WithContext(ctx).Where("external_handle = ?", handle).Order("id DESC").First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("contribution", handle)
		}
		return nil, apperr.Persistence("find contribution by handle", err)
	}
	return &record, nil
}

// UpdateStatus 仅当当前状态为 from 时写入 to，返回是否写入
func (c *ContributionLogic) UpdateStatus(ctx context.Context, id int64, from, to model.ContributionStatus) (bool, error) {
	if !to.Valid() {
		return false, apperr.Validation("status", "unknown status "+string(to))
	}
	result := c.db.WithContext(ctx).Model(&model.ContributionModel{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, apperr.Persistence("update contribution status", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// AttachExternalHandle 记录外部支付句柄
func (c *ContributionLogic) AttachExternalHandle(ctx context.Context, id int64, handle string) error {
	if handle == "" {
		return apperr.Validation("external_handle", "must not be empty")
	}
	result := c.db.WithContext(ctx).Model(&model.ContributionModel{}).
		Where("id = ?", id).
		Update("external_handle", handle)
	if result.Error != nil {
		return apperr.Persistence("attach external handle", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("contribution", id)
	}
	return nil
}

// Delete 删除待确认的贡献，用于网关失败后的补偿
func (c *ContributionLogic) Delete(ctx context.Context, id int64) error {
	result := c.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, model.ContributionStatusPending).
		Delete(&model.ContributionModel{})
	if result.Error != nil {
		return apperr.Persistence("delete contribution", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("pending contribution", id)
	}
	return nil
}

// ListPendingOlderThan 列出早于 cutoff 的待确认贡献
func (c *ContributionLogic) ListPendingOlderThan(ctx context.Context, method model.PaymentMethod, cutoff time.Time, limit int) ([]model.ContributionModel, error) {
	var records []model.ContributionModel
	db := c.db.WithContext(ctx).
		Where("status = ? AND payment_method = ? AND created_at < ?", model.ContributionStatusPending, method, cutoff.UTC()).
		Order("created_at ASC")
	if limit > 0 {
		db = db.Limit(limit)
	}
	if err := db.Find(&records).Error; err != nil {
		return nil, apperr.Persistence("list pending contributions", err)
	}
	return records, nil
}

// CountRecentByEmail 统计 since 之后同一邮箱的贡献数
func (c *ContributionLogic) CountRecentByEmail(ctx context.Context, email string, since time.Time) (int64, error) {
	var count int64
	if err := c.db.WithContext(ctx).Model(&model.ContributionModel{}).
		Where("payer_email = ? AND created_at >= ?", strings.ToLower(strings.TrimSpace(email)), since.UTC()).
		Count(&count).Error; err != nil {
		return 0, apperr.Persistence("count recent contributions", err)
	}
	return count, nil
}

// ListApprovedByGift 分页获取礼物的已到账贡献
func (c *ContributionLogic) ListApprovedByGift(ctx context.Context, giftId int64, page, pageSize int) ([]model.ContributionModel, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var records []model.ContributionModel
	var total int64
	query := func() *gorm.DB {
		return c.db.WithContext(ctx).Model(&model.ContributionModel{}).
			Where("gift_id = ? AND status = ?", giftId, model.ContributionStatusApproved)
	}
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, apperr.Persistence("count gift contributions", err)
	}
	if err := query().Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&records).Error; err != nil {
		return nil, 0, apperr.Persistence("list gift contributions", err)
	}
	return records, total, nil
}
