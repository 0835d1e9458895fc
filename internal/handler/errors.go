package handler

import (
	"context"
	"errors"
	"net/http"

	"studio-go/internal/export"
	"studio-go/internal/repository"
	"studio-go/internal/service"
	"studio-go/internal/utils"
	"studio-go/internal/workshop"
	"studio-go/pkg/backend_caller"
	"studio-go/pkg/youtube_search"

	"github.com/gin-gonic/gin"
)

// respondError 把服务层错误映射为HTTP状态码
func respondError(c *gin.Context, err error) {
	var denied *service.AccessDeniedError
	var httpErr *backend_caller.HTTPError

	switch {
	case errors.As(err, &denied):
		utils.PaymentRequired(c, denied.Message)
	case errors.Is(err, workshop.ErrMissingField),
		errors.Is(err, export.ErrUnsupportedFormat),
		errors.Is(err, export.ErrUnsupportedContent),
		errors.Is(err, service.ErrEmptyInstruction),
		errors.Is(err, service.ErrInvalidKey):
		utils.BadRequest(c, err.Error())
	case errors.Is(err, workshop.ErrUnknownTool),
		errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrArtifactNotFound),
		errors.Is(err, service.ErrUnitNotFound),
		errors.Is(err, service.ErrToolEndpointNotFound),
		errors.Is(err, repository.ErrKeyNotFound):
		utils.NotFound(c, err.Error())
	case errors.Is(err, service.ErrTaskFinished),
		errors.Is(err, service.ErrVersionConflict),
		errors.Is(err, repository.ErrVersionMismatch):
		utils.Conflict(c, err.Error())
	case errors.Is(err, service.ErrBusy):
		utils.TooManyRequests(c, err.Error())
	case errors.Is(err, youtube_search.ErrNotConfigured):
		utils.ErrorResponse(c, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, service.ErrGenerationFailed),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &httpErr):
		utils.BadGateway(c, err.Error())
	case errors.Is(err, context.Canceled):
		// 客户端已断开
		c.Abort()
	default:
		utils.InternalError(c, err.Error())
	}
}
