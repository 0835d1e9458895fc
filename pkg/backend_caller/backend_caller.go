package backend_caller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// HTTPError 后端返回非2xx状态
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("后端返回错误: status=%d, body=%s", e.Status, e.Body)
}

// RetryPolicy 重试策略，第n次失败后等待 Step*n
type RetryPolicy struct {
	Attempts int
	Step     time.Duration
}

// CallOptions 调用选项
type CallOptions struct {
	Retry RetryPolicy
	// OnAttempt 每次尝试失败后回调
	OnAttempt func(attempt int, err error)
}

// Response 后端响应
type Response struct {
	Body        []byte
	ContentType string
	Attempts    int
}

// IsJSON 响应是否声明为JSON
func (r *Response) IsJSON() bool {
	return strings.Contains(r.ContentType, "json")
}

// BackendCaller 内容生成后端调用客户端
type BackendCaller struct {
	client  *http.Client
	baseURL string
	logger  logrus.FieldLogger
	// sleep 可在测试中替换
	sleep func(ctx context.Context, d time.Duration) error
}

// NewBackendCaller 创建后端调用客户端
func NewBackendCaller(baseURL string, timeout time.Duration, logger logrus.FieldLogger) *BackendCaller {
	return &BackendCaller{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
		sleep:   sleepContext,
	}
}

// SetSleep 替换退避等待函数
func (bc *BackendCaller) SetSleep(fn func(ctx context.Context, d time.Duration) error) {
	bc.sleep = fn
}

// PostJSON 以JSON请求体调用后端，按策略重试
func (bc *BackendCaller) PostJSON(ctx context.Context, path string, body interface{}, opts *CallOptions) (*Response, error) {
	if opts == nil {
		opts = &CallOptions{}
	}
	attempts := opts.Retry.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	// 序列化请求体
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("序列化请求失败: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := bc.post(ctx, path, jsonBody)
		if err == nil {
			resp.Attempts = attempt
			return resp, nil
		}
		lastErr = err

		// 调用方取消时不再重试
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		bc.logger.WithFields(logrus.Fields{
			"path":    path,
			"attempt": attempt,
			"max":     attempts,
		}).WithError(err).Warn("[PostJSON] 请求失败")

		if opts.OnAttempt != nil {
			opts.OnAttempt(attempt, err)
		}

		if attempt < attempts {
			// 线性退避
			if err := bc.sleep(ctx, opts.Retry.Step*time.Duration(attempt)); err != nil {
				return nil, err
			}
		}
	}

	return nil, lastErr
}

func (bc *BackendCaller) post(ctx context.Context, path string, jsonBody []byte) (*Response, error) {
	// 构建HTTP请求
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, bc.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	// 发送请求
	resp, err := bc.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()

	// 读取响应
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	// 检查HTTP状态码
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{Status: resp.StatusCode, Body: string(data)}
	}

	return &Response{Body: data, ContentType: resp.Header.Get("Content-Type")}, nil
}

// GetJSON 以GET调用后端并解析JSON响应
func (bc *BackendCaller) GetJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	target := bc.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}

	resp, err := bc.client.Do(req)
	if err != nil {
		return fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("读取响应失败: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{Status: resp.StatusCode, Body: string(data)}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("解析响应失败: %w", err)
	}
	return nil
}

// IsHTTPStatus 判断错误是否为指定状态码
func IsHTTPStatus(err error, status int) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.Status == status
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
