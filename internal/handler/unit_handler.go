package handler

import (
	"time"

	"studio-go/internal/dto"
	"studio-go/internal/middleware"
	"studio-go/internal/planner"
	"studio-go/internal/service"
	"studio-go/internal/utils"
	"studio-go/internal/workshop"

	"github.com/gin-gonic/gin"
)

// UnitHandler 单元计划处理器
type UnitHandler struct {
	units *service.UnitService
	loc   *time.Location
}

// NewUnitHandler 创建单元处理器
func NewUnitHandler(units *service.UnitService, loc *time.Location) *UnitHandler {
	return &UnitHandler{units: units, loc: loc}
}

// GenerateUnit 生成单元计划
func (h *UnitHandler) GenerateUnit(c *gin.Context) {
	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, utils.FormatValidationError(err).Error())
		return
	}

	unit, err := h.units.GenerateUnit(c.Request.Context(), middleware.GetEmail(c), workshop.Fields(req.Fields))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "单元已生成", unit)
}

// ListUnits 用户的单元列表
func (h *UnitHandler) ListUnits(c *gin.Context) {
	units, err := h.units.ListUnits(middleware.GetEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, units)
}

// GetUnit 获取单元
func (h *UnitHandler) GetUnit(c *gin.Context) {
	unit, err := h.units.GetUnit(c.Param("id"), middleware.GetEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, unit)
}

// UpdateUnit 整体替换单元
func (h *UnitHandler) UpdateUnit(c *gin.Context) {
	var req dto.UpdateUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, utils.FormatValidationError(err).Error())
		return
	}

	unit, err := h.units.UpdateUnit(c.Param("id"), middleware.GetEmail(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessWithMessage(c, "单元已更新", unit)
}

// CalendarEvents 日历事件
func (h *UnitHandler) CalendarEvents(c *gin.Context) {
	var q dto.CalendarQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.BadRequest(c, utils.FormatValidationError(err).Error())
		return
	}

	var date time.Time
	if q.Date != "" {
		d, err := planner.ParseFecha(q.Date, h.loc)
		if err != nil {
			utils.BadRequest(c, err.Error())
			return
		}
		date = d
	}

	resp, err := h.units.CalendarEvents(middleware.GetEmail(c), q.Subjects, q.Levels, date)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, resp)
}
