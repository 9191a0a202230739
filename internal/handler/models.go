package handler

import (
	"time"

	"github.com/blues/giftreg/internal/logic"
	"github.com/blues/giftreg/internal/model"
	"github.com/shopspring/decimal"
)

// 通用响应结构
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// 分页信息结构
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"pageSize"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"totalPage"`
}

// GiftResponse 礼物响应模型
type GiftResponse struct {
	ID                   int64           `json:"id"`
	Name                 string          `json:"name"`
	Description          string          `json:"description"`
	ImageURL             string          `json:"imageUrl"`
	TargetAmount         decimal.Decimal `json:"targetAmount"`
	RaisedAmount         decimal.Decimal `json:"raisedAmount"`
	CompletionPercentage float64         `json:"completionPercentage"`
	Complete             bool            `json:"complete"`
}

// GetGiftsResponse 礼物列表响应
type GetGiftsResponse struct {
	Gifts []GiftResponse `json:"gifts"`
}

// GetGiftResponse 礼物详情响应
type GetGiftResponse struct {
	Gift GiftResponse `json:"gift"`
}

// GetGiftStatsResponse 礼物统计响应
type GetGiftStatsResponse struct {
	Stats *logic.GiftStats `json:"stats"`
}

// ContributionResponse 公开的贡献留言，不含付款人联系方式
type ContributionResponse struct {
	ID        int64           `json:"id"`
	PayerName string          `json:"payerName"`
	Amount    decimal.Decimal `json:"amount"`
	Message   string          `json:"message"`
	CreatedAt time.Time       `json:"createdAt"`
}

// GetGiftContributionsResponse 礼物贡献列表响应
type GetGiftContributionsResponse struct {
	Contributions []ContributionResponse `json:"contributions"`
	Pagination    Pagination             `json:"pagination"`
}

// ContributeRequest 发起贡献请求
type ContributeRequest struct {
	GiftID     int64           `json:"gift_id" binding:"required"`
	PayerName  string          `json:"payer_name" binding:"required"`
	PayerEmail string          `json:"payer_email" binding:"required"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method" binding:"required"`
	Message    string          `json:"message"`
	TaxID      string          `json:"tax_id"`
	Phone      string          `json:"phone"`
}

// ContributeResponse 发起贡献响应
type ContributeResponse struct {
	ContributionID int64           `json:"contribution_id"`
	Method         string          `json:"method"`
	Status         string          `json:"status"`
	PaymentURL     string          `json:"payment_url,omitempty"`
	RaisedAmount   decimal.Decimal `json:"raised_amount"`
}

// WebhookResponse webhook 响应
type WebhookResponse struct {
	Outcome string `json:"outcome"`
}

// ToGiftResponse 转换礼物响应
func ToGiftResponse(gift *model.GiftModel) GiftResponse {
	image := gift.ImageURL
	if image == "" {
		image = model.DefaultGiftImage
	}
	return GiftResponse{
		ID:                   gift.Id,
		Name:                 gift.Name,
		Description:          gift.Description,
		ImageURL:             image,
		TargetAmount:         gift.TargetAmount,
		RaisedAmount:         gift.RaisedAmount,
		CompletionPercentage: gift.CompletionPercentage(),
		Complete:             gift.IsComplete(),
	}
}

// ToGiftResponseList 转换礼物列表
func ToGiftResponseList(gifts []model.GiftModel) []GiftResponse {
	responses := make([]GiftResponse, 0, len(gifts))
	for i := range gifts {
		responses = append(responses, ToGiftResponse(&gifts[i]))
	}
	return responses
}

// ToContributionResponseList 转换贡献列表
func ToContributionResponseList(records []model.ContributionModel) []ContributionResponse {
	responses := make([]ContributionResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, ContributionResponse{
			ID:        r.Id,
			PayerName: r.PayerName,
			Amount:    r.Amount,
			Message:   r.Message,
			CreatedAt: r.CreatedAt,
		})
	}
	return responses
}

// ToContributeResponse 转换发起贡献结果
func ToContributeResponse(result *logic.ContributeResult) ContributeResponse {
	return ContributeResponse{
		ContributionID: result.ContributionId,
		Method:         string(result.Method),
		Status:         string(result.Status),
		PaymentURL:     result.PaymentURL,
		RaisedAmount:   result.RaisedAmount,
	}
}
