package dto

import "time"

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	Admin       AdminInfo `json:"admin"`
}

// AdminInfo 运营账号信息
type AdminInfo struct {
	ID          uint       `json:"id"`
	Username    string     `json:"username"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// AccessResponse 访问校验结果
type AccessResponse struct {
	Allowed  bool   `json:"allowed"`
	Message  string `json:"message,omitempty"`
	Degraded bool   `json:"degraded,omitempty"`
	Paywall  bool   `json:"paywall,omitempty"`
}
