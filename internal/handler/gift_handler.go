package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/blues/giftreg/internal/logic"
	"github.com/blues/giftreg/internal/model"
	"github.com/gin-gonic/gin"
)

// GiftService 礼物查询
type GiftService interface {
	ListActive(ctx context.Context) ([]model.GiftModel, error)
	Get(ctx context.Context, id int64) (*model.GiftModel, error)
	GetGiftStats(ctx context.Context, id int64) (*logic.GiftStats, error)
}

// ContributionLister 礼物贡献列表
type ContributionLister interface {
	ListApprovedByGift(ctx context.Context, giftId int64, page, pageSize int) ([]model.ContributionModel, int64, error)
}

type GiftHandler struct {
	gifts         GiftService
	contributions ContributionLister
}

func NewGiftHandler(gifts GiftService, contributions ContributionLister) *GiftHandler {
	return &GiftHandler{
		gifts:         gifts,
		contributions: contributions,
	}
}

// GetGifts 获取上架礼物列表
func (h *GiftHandler) GetGifts(c *gin.Context) {
	gifts, err := h.gifts.ListActive(c.Request.Context())
	if err != nil {
		errorFrom(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", GetGiftsResponse{Gifts: ToGiftResponseList(gifts)})
}

// GetGift 获取礼物详情
func (h *GiftHandler) GetGift(c *gin.Context) {
	id, ok := giftID(c)
	if !ok {
		return
	}
	gift, err := h.gifts.Get(c.Request.Context(), id)
	if err != nil {
		errorFrom(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", GetGiftResponse{Gift: ToGiftResponse(gift)})
}

// GetGiftStats 获取礼物统计信息
func (h *GiftHandler) GetGiftStats(c *gin.Context) {
	id, ok := giftID(c)
	if !ok {
		return
	}
	stats, err := h.gifts.GetGiftStats(c.Request.Context(), id)
	if err != nil {
		errorFrom(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", GetGiftStatsResponse{Stats: stats})
}

// GetGiftContributions 获取礼物的已到账贡献
func (h *GiftHandler) GetGiftContributions(c *gin.Context) {
	id, ok := giftID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	records, total, err := h.contributions.ListApprovedByGift(c.Request.Context(), id, page, pageSize)
	if err != nil {
		errorFrom(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", GetGiftContributionsResponse{
		Contributions: ToContributionResponseList(records),
		Pagination: Pagination{
			Page:      page,
			PageSize:  pageSize,
			Total:     total,
			TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
		},
	})
}

func giftID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		ErrorResponse(c, http.StatusBadRequest, "invalid gift id")
		return 0, false
	}
	return id, true
}
