package service

import (
	"context"
	"errors"
	"net/url"

	"studio-go/internal/config"
	"studio-go/pkg/backend_caller"

	"github.com/sirupsen/logrus"
)

// ErrAccessDenied 当前套餐不允许使用该工具
var ErrAccessDenied = errors.New("访问被拒绝")

// AccessDeniedError 带后端提示信息的拒绝错误
type AccessDeniedError struct {
	Message string
}

func (e *AccessDeniedError) Error() string {
	return "访问被拒绝: " + e.Message
}

// Is 使 errors.Is(err, ErrAccessDenied) 成立
func (e *AccessDeniedError) Is(target error) bool {
	return target == ErrAccessDenied
}

// AccessDecision 访问校验结果
type AccessDecision struct {
	Allowed bool   `json:"allowed"`
	Message string `json:"message,omitempty"`
	// Degraded 校验服务不可用，结果来自 fail_open 策略
	Degraded bool `json:"degraded,omitempty"`
}

// AccessChecker 访问校验接口
type AccessChecker interface {
	Check(ctx context.Context, email string) (*AccessDecision, error)
}

// AccessGate 每次提交前向后端校验访问权限，不重试也不缓存
type AccessGate struct {
	caller         *backend_caller.BackendCaller
	path           string
	failOpen       bool
	paywallMessage string
	logger         *logrus.Logger
}

// NewAccessGate 创建访问校验
func NewAccessGate(caller *backend_caller.BackendCaller, cfg *config.Config, logger *logrus.Logger) *AccessGate {
	return &AccessGate{
		caller:         caller,
		path:           cfg.Backend.ValidatePath,
		failOpen:       cfg.Access.FailOpen,
		paywallMessage: cfg.Access.PaywallMessage,
		logger:         logger,
	}
}

// Check 查询访问权限
// 校验服务失败时按 fail_open 策略返回降级结果
func (g *AccessGate) Check(ctx context.Context, email string) (*AccessDecision, error) {
	var resp struct {
		Allowed *bool  `json:"allowed"`
		Message string `json:"message"`
	}
	err := g.caller.GetJSON(ctx, g.path, url.Values{"email": {email}}, &resp)
	if err == nil && resp.Allowed == nil {
		err = errors.New("响应缺少 allowed 字段")
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		g.logger.WithFields(logrus.Fields{"email": email, "fail_open": g.failOpen}).
			WithError(err).Warn("[AccessGate] 校验服务不可用")
		decision := &AccessDecision{Allowed: g.failOpen, Degraded: true}
		if !g.failOpen {
			decision.Message = g.paywallMessage
		}
		return decision, nil
	}

	decision := &AccessDecision{Allowed: *resp.Allowed, Message: resp.Message}
	if !decision.Allowed {
		if decision.Message == "" {
			decision.Message = g.paywallMessage
		}
		g.logger.WithFields(logrus.Fields{"email": email}).Info("[AccessGate] 访问被拒绝")
	}
	return decision, nil
}

// Require 未被允许时返回 AccessDeniedError
func Require(ctx context.Context, checker AccessChecker, email string) (*AccessDecision, error) {
	decision, err := checker.Check(ctx, email)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return decision, &AccessDeniedError{Message: decision.Message}
	}
	return decision, nil
}
