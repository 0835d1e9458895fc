package handler

import (
	"strings"

	"studio-go/internal/dto"
	"studio-go/internal/service"
	"studio-go/internal/utils"

	"github.com/gin-gonic/gin"
)

// AdminHandler 运营后台任务管理
type AdminHandler struct {
	gen *service.GenerationService
}

// NewAdminHandler 创建运营后台处理器
func NewAdminHandler(gen *service.GenerationService) *AdminHandler {
	return &AdminHandler{gen: gen}
}

// ListAllTasks 获取所有任务记录
func (h *AdminHandler) ListAllTasks(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.BadRequest(c, utils.FormatValidationError(err).Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(c.Query("email")))
	result, err := h.gen.AllTasks(email, c.Query("status"), q.Page, q.PerPage)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.PaginatedResponse(c, result.Items, result.Total, result.Page, result.PerPage)
}

// GetActiveTasks 获取运行中的任务（从内存）
func (h *AdminHandler) GetActiveTasks(c *gin.Context) {
	tasks := h.gen.ActiveTasks()
	utils.SuccessResponse(c, gin.H{
		"tasks": tasks,
		"total": len(tasks),
	})
}

// CancelTask 取消任意用户的任务
func (h *AdminHandler) CancelTask(c *gin.Context) {
	if err := h.gen.ForceCancel(c.Param("task_id")); err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "任务已取消", gin.H{"success": true})
}
