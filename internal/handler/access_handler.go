package handler

import (
	"strconv"

	"studio-go/internal/dto"
	"studio-go/internal/middleware"
	"studio-go/internal/service"
	"studio-go/internal/utils"

	"github.com/gin-gonic/gin"
)

// AccessHandler 访问校验与视频搜索处理器
type AccessHandler struct {
	access service.AccessChecker
	videos *service.VideoService
}

// NewAccessHandler 创建访问校验处理器
func NewAccessHandler(access service.AccessChecker, videos *service.VideoService) *AccessHandler {
	return &AccessHandler{access: access, videos: videos}
}

// CheckAccess 查询当前用户是否可使用生成工具
func (h *AccessHandler) CheckAccess(c *gin.Context) {
	decision, err := h.access.Check(c.Request.Context(), middleware.GetEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, dto.AccessResponse{
		Allowed:  decision.Allowed,
		Message:  decision.Message,
		Degraded: decision.Degraded,
		Paywall:  !decision.Allowed,
	})
}

// SearchVideos 搜索教学视频
func (h *AccessHandler) SearchVideos(c *gin.Context) {
	max, _ := strconv.ParseInt(c.DefaultQuery("max", "0"), 10, 64)

	videos, err := h.videos.Search(c.Request.Context(), c.Query("q"), max)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, videos)
}
