package handler

import (
	"encoding/json"
	"fmt"

	"studio-go/internal/dto"
	"studio-go/internal/middleware"
	"studio-go/internal/service"
	"studio-go/internal/utils"
	"studio-go/internal/workshop"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// TaskHandler 生成任务处理器
type TaskHandler struct {
	gen    *service.GenerationService
	logger *logrus.Logger
}

// NewTaskHandler 创建任务处理器
func NewTaskHandler(gen *service.GenerationService, logger *logrus.Logger) *TaskHandler {
	return &TaskHandler{gen: gen, logger: logger}
}

// Generate 同步生成，等待结果返回
func (h *TaskHandler) Generate(c *gin.Context) {
	email := middleware.GetEmail(c)

	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, utils.FormatValidationError(err).Error())
		return
	}

	tc, artifact, err := h.gen.Generate(c.Request.Context(), email, c.Param("tool"), workshop.Fields(req.Fields))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessWithMessage(c, "生成完成", dto.GenerateResponse{
		Task:     tc.Snapshot(),
		Artifact: service.ToArtifactResponse(artifact),
	})
}

// StartTask 异步提交生成任务
func (h *TaskHandler) StartTask(c *gin.Context) {
	email := middleware.GetEmail(c)

	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, utils.FormatValidationError(err).Error())
		return
	}

	tc, err := h.gen.Submit(c.Request.Context(), email, c.Param("tool"), workshop.Fields(req.Fields))
	if err != nil {
		respondError(c, err)
		return
	}

	message := "任务已启动"
	if tc.Reused {
		message = "复用已有结果"
	}
	utils.SuccessWithMessage(c, message, tc.Snapshot())
}

// GetTaskStatus 获取任务状态
func (h *TaskHandler) GetTaskStatus(c *gin.Context) {
	resp, err := h.gen.Get(c.Param("task_id"), middleware.GetEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, resp)
}

// GetAllTasks 用户的任务列表
func (h *TaskHandler) GetAllTasks(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.BadRequest(c, utils.FormatValidationError(err).Error())
		return
	}

	result, err := h.gen.ListTasks(middleware.GetEmail(c), q.Page, q.PerPage)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.PaginatedResponse(c, result.Items, result.Total, result.Page, result.PerPage)
}

// GetProgress 获取任务进度(SSE)
func (h *TaskHandler) GetProgress(c *gin.Context) {
	taskID := c.Param("task_id")

	progressChan, history, unsubscribe, err := h.gen.Subscribe(taskID, middleware.GetEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}
	defer unsubscribe() // 确保断开连接时取消订阅

	// 设置SSE响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	// 发送初始连接成功事件
	writeEvent(c, gin.H{
		"type":    "connected",
		"message": "SSE连接已建立",
		"task_id": taskID,
	})

	// 先发送历史事件
	for _, event := range history {
		writeEvent(c, event)
		if event.IsTerminal() {
			return
		}
	}

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			h.logger.WithField("task_id", taskID).Debug("[GetProgress] 客户端断开连接")
			return
		case event, ok := <-progressChan:
			if !ok {
				return
			}
			writeEvent(c, event)
			if event.IsTerminal() {
				return
			}
		}
	}
}

func writeEvent(c *gin.Context, event interface{}) {
	data, _ := json.Marshal(event)
	fmt.Fprintf(c.Writer, "data: %s\n\n", string(data))
	c.Writer.Flush()
}

// StopTask 取消任务
func (h *TaskHandler) StopTask(c *gin.Context) {
	email := middleware.GetEmail(c)
	taskID := c.Param("task_id")

	if err := h.gen.Cancel(taskID, email); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessWithMessage(c, "任务已取消", gin.H{"success": true})
}
