package config

import (
	"fmt"
	"time"
)

// Config 应用配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis_service"`
	Backend  BackendConfig  `mapstructure:"backend"`
	Access   AccessConfig   `mapstructure:"access"`
	Storage  StorageConfig  `mapstructure:"storage"`
	YouTube  YouTubeConfig  `mapstructure:"youtube"`
	Export   ExportConfig   `mapstructure:"export"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Admin    AdminConfig    `mapstructure:"admin"`
	CORS     CORSConfig     `mapstructure:"cors"`
	LogLevel string         `mapstructure:"log_level"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	ProductionMode bool   `mapstructure:"production_mode"`
}

// GetAddress 获取服务器地址
func (s *ServerConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	DB       int    `mapstructure:"db"`
	Password string `mapstructure:"password"`
	// MaxConcurrency 每个邮箱同时进行的生成任务上限
	MaxConcurrency int `mapstructure:"max_concurrency"`
	SlotTTL        int `mapstructure:"slot_ttl"`
}

// GetAddress 获取Redis地址
func (r *RedisConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// GetSlotTTL 获取槽位过期时间
func (r *RedisConfig) GetSlotTTL() time.Duration {
	return time.Duration(r.SlotTTL) * time.Second
}

// BackendConfig 内容生成后端配置
type BackendConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	Timeout       int    `mapstructure:"timeout"`
	ValidatePath  string `mapstructure:"validate_path"`
	ImprovePath   string `mapstructure:"improve_path"`
	RetryAttempts int    `mapstructure:"retry_attempts"` // 重试类工具的默认尝试次数
	RetryStepMS   int    `mapstructure:"retry_step_ms"`
	// DedupWindow 相同请求在该时间内复用已有结果（秒）
	DedupWindow int `mapstructure:"dedup_window"`
}

// GetTimeout 获取请求超时时间
func (b *BackendConfig) GetTimeout() time.Duration {
	return time.Duration(b.Timeout) * time.Second
}

// GetRetryStep 获取重试退避步长
func (b *BackendConfig) GetRetryStep() time.Duration {
	return time.Duration(b.RetryStepMS) * time.Millisecond
}

// GetDedupWindow 获取去重窗口
func (b *BackendConfig) GetDedupWindow() time.Duration {
	return time.Duration(b.DedupWindow) * time.Second
}

// AccessConfig 访问校验配置
type AccessConfig struct {
	// FailOpen 校验服务不可用时是否放行
	FailOpen       bool   `mapstructure:"fail_open"`
	PaywallMessage string `mapstructure:"paywall_message"`
}

// StorageConfig 键值存储配置
type StorageConfig struct {
	KVBackend string `mapstructure:"kv_backend"` // redis, database
}

// YouTubeConfig 视频搜索配置
type YouTubeConfig struct {
	APIKey     string `mapstructure:"api_key"`
	MaxResults int64  `mapstructure:"max_results"`
}

// ExportConfig 导出配置
type ExportConfig struct {
	PageFormat string  `mapstructure:"page_format"`
	FontSize   float64 `mapstructure:"font_size"`
	// Timezone 日历事件使用的时区
	Timezone string `mapstructure:"timezone"`
}

// Location 获取日历时区
func (e *ExportConfig) Location() *time.Location {
	if e.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(e.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// JWTConfig JWT配置
type JWTConfig struct {
	SecretKey     string `mapstructure:"secret_key"`
	Algorithm     string `mapstructure:"algorithm"`
	ExpireMinutes int    `mapstructure:"expire_minutes"`
}

// GetExpireDuration 获取过期时间
func (j *JWTConfig) GetExpireDuration() time.Duration {
	return time.Duration(j.ExpireMinutes) * time.Minute
}

// AdminConfig 管理员配置
type AdminConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// CORSConfig CORS配置
type CORSConfig struct {
	Origins          []string `mapstructure:"origins"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	AllowMethods     []string `mapstructure:"allow_methods"`
	AllowHeaders     []string `mapstructure:"allow_headers"`
}
