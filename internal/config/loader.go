package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig 加载配置文件
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	// 设置配置文件路径
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		// 默认查找 config.yaml
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// 读取环境变量，例如 STUDIO_BACKEND_BASE_URL
	v.SetEnvPrefix("studio")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("access.fail_open", true)

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	// 解析配置
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 设置默认值
	SetDefaults(&cfg)

	// 验证配置
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("配置验证失败: %w", err)
	}

	return &cfg, nil
}

// SetDefaults 设置默认值
func SetDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 18080
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "./database/studio.db"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379 // 标准 Redis 端口
	}
	if cfg.Redis.MaxConcurrency == 0 {
		cfg.Redis.MaxConcurrency = 3
	}
	if cfg.Redis.SlotTTL == 0 {
		cfg.Redis.SlotTTL = 600
	}
	if cfg.Backend.Timeout == 0 {
		cfg.Backend.Timeout = 120
	}
	if cfg.Backend.ValidatePath == "" {
		cfg.Backend.ValidatePath = "/validate-access"
	}
	if cfg.Backend.ImprovePath == "" {
		cfg.Backend.ImprovePath = "/mejorar-contenido"
	}
	if cfg.Backend.RetryAttempts == 0 {
		cfg.Backend.RetryAttempts = 3
	}
	if cfg.Backend.RetryStepMS == 0 {
		cfg.Backend.RetryStepMS = 1000
	}
	if cfg.Backend.DedupWindow == 0 {
		cfg.Backend.DedupWindow = 30
	}
	if cfg.Access.PaywallMessage == "" {
		cfg.Access.PaywallMessage = "Tu plan actual no incluye esta herramienta"
	}
	if cfg.Storage.KVBackend == "" {
		cfg.Storage.KVBackend = "redis"
	}
	if cfg.YouTube.MaxResults == 0 {
		cfg.YouTube.MaxResults = 8
	}
	if cfg.Export.PageFormat == "" {
		cfg.Export.PageFormat = "A4"
	}
	if cfg.Export.FontSize == 0 {
		cfg.Export.FontSize = 11
	}
	if cfg.JWT.Algorithm == "" {
		cfg.JWT.Algorithm = "HS256"
	}
	if cfg.JWT.ExpireMinutes == 0 {
		cfg.JWT.ExpireMinutes = 720
	}
	if cfg.Admin.Username == "" {
		cfg.Admin.Username = "admin"
	}
	if cfg.CORS.AllowMethods == nil {
		cfg.CORS.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if cfg.CORS.AllowHeaders == nil {
		cfg.CORS.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-User-Email"}
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// validateConfig 验证配置
func validateConfig(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("无效的服务器端口: %d", cfg.Server.Port)
	}

	// 后端地址必须从配置文件读取，不设置硬编码默认值
	if cfg.Backend.BaseURL == "" {
		return fmt.Errorf("内容生成后端地址不能为空")
	}

	if cfg.JWT.SecretKey == "" {
		return fmt.Errorf("JWT密钥不能为空")
	}

	if cfg.Admin.Password == "" {
		return fmt.Errorf("管理员密码不能为空")
	}

	switch cfg.Storage.KVBackend {
	case "redis", "database":
	default:
		return fmt.Errorf("无效的键值存储类型: %s", cfg.Storage.KVBackend)
	}

	// 检查数据库目录是否存在
	dbDir := filepath.Dir(cfg.Database.Path)
	if _, err := os.Stat(dbDir); os.IsNotExist(err) {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return fmt.Errorf("创建数据库目录失败: %w", err)
		}
	}

	return nil
}
