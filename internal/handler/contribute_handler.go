package handler

import (
	"context"
	"net/http"

	"github.com/blues/giftreg/internal/logic"
	"github.com/blues/giftreg/internal/model"
	"github.com/gin-gonic/gin"
)

// Contributor 发起贡献
type Contributor interface {
	Contribute(ctx context.Context, in logic.CreateContributionInput) (*logic.ContributeResult, error)
}

// ContributeHandler 贡献处理器
type ContributeHandler struct {
	checkout Contributor
}

// NewContributeHandler 创建贡献处理器
func NewContributeHandler(checkout Contributor) *ContributeHandler {
	return &ContributeHandler{checkout: checkout}
}

// Contribute 发起贡献，PIX 直接确认，信用卡返回支付链接
func (h *ContributeHandler) Contribute(c *gin.Context) {
	var req ContributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	result, err := h.checkout.Contribute(c.Request.Context(), logic.CreateContributionInput{
		GiftId:     req.GiftID,
		PayerName:  req.PayerName,
		PayerEmail: req.PayerEmail,
		TaxID:      req.TaxID,
		Phone:      req.Phone,
		Amount:     req.Amount,
		Method:     model.PaymentMethod(req.Method),
		Message:    req.Message,
	})
	if err != nil {
		errorFrom(c, err)
		return
	}

	message := "contribution confirmed"
	if result.Method == model.PaymentMethodCard {
		message = "redirect to payment"
	}
	SuccessResponse(c, http.StatusCreated, message, ToContributeResponse(result))
}
