package handler

import (
	"strconv"

	"studio-go/internal/dto"
	"studio-go/internal/service"
	"studio-go/internal/utils"

	"github.com/gin-gonic/gin"
)

// ToolHandler 生成工具处理器
type ToolHandler struct {
	toolService *service.ToolService
}

// NewToolHandler 创建工具处理器
func NewToolHandler(toolService *service.ToolService) *ToolHandler {
	return &ToolHandler{toolService: toolService}
}

// GetTools 获取可用工具列表
func (h *ToolHandler) GetTools(c *gin.Context) {
	tools := h.toolService.ListTools()
	utils.SuccessResponse(c, gin.H{
		"tools": tools,
		"total": len(tools),
	})
}

// GetAllEndpoints 获取所有工具覆盖配置(管理员)
func (h *ToolHandler) GetAllEndpoints(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.BadRequest(c, utils.FormatValidationError(err).Error())
		return
	}

	result, err := h.toolService.GetAllEndpoints(q.Page, q.PerPage)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.PaginatedResponse(c, result.Items, result.Total, result.Page, result.PerPage)
}

// CreateEndpoint 创建工具覆盖配置
func (h *ToolHandler) CreateEndpoint(c *gin.Context) {
	var req dto.CreateToolEndpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, utils.FormatValidationError(err).Error())
		return
	}

	endpoint, err := h.toolService.CreateEndpoint(&req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "配置创建成功", endpoint)
}

// UpdateEndpoint 更新工具覆盖配置
func (h *ToolHandler) UpdateEndpoint(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "无效的配置ID")
		return
	}

	var req dto.UpdateToolEndpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, utils.FormatValidationError(err).Error())
		return
	}

	endpoint, err := h.toolService.UpdateEndpoint(uint(id), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "配置更新成功", endpoint)
}

// DeleteEndpoint 删除工具覆盖配置
func (h *ToolHandler) DeleteEndpoint(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "无效的配置ID")
		return
	}

	if err := h.toolService.DeleteEndpoint(uint(id)); err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "配置删除成功", gin.H{"success": true})
}
