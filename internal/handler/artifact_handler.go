package handler

import (
	"fmt"
	"net/http"
	"net/url"

	"studio-go/internal/dto"
	"studio-go/internal/middleware"
	"studio-go/internal/service"
	"studio-go/internal/utils"

	"github.com/gin-gonic/gin"
)

// ArtifactHandler 制品处理器
type ArtifactHandler struct {
	artifacts *service.ArtifactService
	chat      *service.ChatService
}

// NewArtifactHandler 创建制品处理器
func NewArtifactHandler(artifacts *service.ArtifactService, chat *service.ChatService) *ArtifactHandler {
	return &ArtifactHandler{artifacts: artifacts, chat: chat}
}

// GetArtifact 获取制品
func (h *ArtifactHandler) GetArtifact(c *gin.Context) {
	resp, err := h.artifacts.Get(c.Param("id"), middleware.GetEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, resp)
}

// ListArtifacts 用户的制品列表，可按工具过滤
func (h *ArtifactHandler) ListArtifacts(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.BadRequest(c, utils.FormatValidationError(err).Error())
		return
	}

	result, err := h.artifacts.List(middleware.GetEmail(c), c.Query("tool"), q.Page, q.PerPage)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.PaginatedResponse(c, result.Items, result.Total, result.Page, result.PerPage)
}

// RenderArtifact 渲染制品
func (h *ArtifactHandler) RenderArtifact(c *gin.Context) {
	resp, err := h.artifacts.Render(c.Param("id"), middleware.GetEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, resp)
}

// ExportArtifact 导出制品文件
func (h *ArtifactHandler) ExportArtifact(c *gin.Context) {
	var q dto.ExportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.BadRequest(c, utils.FormatValidationError(err).Error())
		return
	}

	file, err := h.artifacts.Export(c.Param("id"), middleware.GetEmail(c), q.Format, q.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(file.Name)))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// ImproveArtifact 对话改进制品
func (h *ArtifactHandler) ImproveArtifact(c *gin.Context) {
	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, utils.FormatValidationError(err).Error())
		return
	}

	resp, err := h.chat.Improve(c.Request.Context(), middleware.GetEmail(c), c.Param("id"), req.Instruction)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "制品已更新"
	if !resp.Applied {
		message = "回复无法解析，内容未修改"
	}
	utils.SuccessWithMessage(c, message, resp)
}

// ChatHistory 制品的对话历史
func (h *ArtifactHandler) ChatHistory(c *gin.Context) {
	history, err := h.chat.History(c.Param("id"), middleware.GetEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, history)
}
