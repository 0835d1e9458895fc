package handler

import (
	"errors"

	"studio-go/internal/dto"
	"studio-go/internal/middleware"
	"studio-go/internal/service"
	"studio-go/internal/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler 运营后台认证处理器
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Login 管理员登录
// @Summary 管理员登录
// @Tags 运营后台
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "登录信息"
// @Success 200 {object} utils.Response{data=dto.LoginResponse}
// @Router /api/admin/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, utils.FormatValidationError(err).Error())
		return
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			utils.Unauthorized(c, err.Error())
			return
		}
		utils.Forbidden(c, err.Error())
		return
	}

	utils.SuccessWithMessage(c, "登录成功", resp)
}

// GetMe 获取当前管理员信息
// @Summary 获取当前管理员信息
// @Tags 运营后台
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.Response{data=dto.AdminInfo}
// @Router /api/admin/me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	adminID, exists := middleware.GetAdminID(c)
	if !exists {
		utils.Unauthorized(c, "未认证")
		return
	}

	info, err := h.authService.GetMe(adminID)
	if err != nil {
		utils.NotFound(c, err.Error())
		return
	}

	utils.SuccessResponse(c, info)
}
