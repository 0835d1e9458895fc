package handler

import (
	"studio-go/internal/dto"
	"studio-go/internal/middleware"
	"studio-go/internal/service"
	"studio-go/internal/utils"

	"github.com/gin-gonic/gin"
)

// StorageHandler 用户键值存储处理器
type StorageHandler struct {
	storage *service.StorageService
}

// NewStorageHandler 创建键值存储处理器
func NewStorageHandler(storage *service.StorageService) *StorageHandler {
	return &StorageHandler{storage: storage}
}

// GetItem 读取键
func (h *StorageHandler) GetItem(c *gin.Context) {
	item, err := h.storage.Get(c.Request.Context(), middleware.GetEmail(c), c.Param("key"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, item)
}

// SetItem 写入键，expected_version 不一致时返回409
func (h *StorageHandler) SetItem(c *gin.Context) {
	var req dto.SetItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, utils.FormatValidationError(err).Error())
		return
	}

	item, err := h.storage.Set(c.Request.Context(), middleware.GetEmail(c), c.Param("key"), req.Value, req.ExpectedVersion)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, item)
}

// DeleteItem 删除键
func (h *StorageHandler) DeleteItem(c *gin.Context) {
	if err := h.storage.Delete(c.Request.Context(), middleware.GetEmail(c), c.Param("key")); err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "已删除", gin.H{"success": true})
}

// ClearItems 清空用户的全部键
func (h *StorageHandler) ClearItems(c *gin.Context) {
	if err := h.storage.Clear(c.Request.Context(), middleware.GetEmail(c)); err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "已清空", gin.H{"success": true})
}
