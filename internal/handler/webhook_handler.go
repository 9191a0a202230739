package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/blues/giftreg/internal/apperr"
	"github.com/blues/giftreg/internal/webhook"
	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 64 << 10

// WebhookProcessor webhook 处理入口
type WebhookProcessor interface {
	Handle(ctx context.Context, body []byte, signature string) (webhook.Outcome, error)
}

// WebhookHandler 支付网关回调
type WebhookHandler struct {
	processor WebhookProcessor
}

// NewWebhookHandler 创建回调处理器
func NewWebhookHandler(processor WebhookProcessor) *WebhookHandler {
	return &WebhookHandler{processor: processor}
}

// MercadoPago 接收 Mercado Pago 通知，签名基于原始请求体
func (h *WebhookHandler) MercadoPago(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ErrorResponse(c, http.StatusRequestEntityTooLarge, "notification body too large")
			return
		}
		ErrorResponse(c, http.StatusBadRequest, "unreadable body")
		return
	}

	outcome, err := h.processor.Handle(c.Request.Context(), body, c.GetHeader("X-Signature"))
	if err != nil {
		if apperr.IsAuthentication(err) {
			ErrorResponse(c, http.StatusUnauthorized, err.Error())
			return
		}
		// 非 2xx 让网关稍后重投
		ErrorResponse(c, http.StatusInternalServerError, "notification not processed")
		return
	}
	SuccessResponse(c, http.StatusOK, string(outcome), WebhookResponse{Outcome: string(outcome)})
}
