package service

import (
	"errors"
	"fmt"

	"studio-go/internal/config"
	"studio-go/internal/dto"
	"studio-go/internal/models"
	"studio-go/internal/repository"
	"studio-go/internal/utils"

	"github.com/sirupsen/logrus"
)

// ErrInvalidCredentials 用户名或密码错误
var ErrInvalidCredentials = errors.New("用户名或密码错误")

// AuthService 运营后台认证服务
type AuthService struct {
	adminRepo  *repository.AdminUserRepository
	jwtManager *utils.JWTManager
	cfg        *config.Config
	logger     *logrus.Logger
}

// NewAuthService 创建认证服务
func NewAuthService(adminRepo *repository.AdminUserRepository, jwtManager *utils.JWTManager, cfg *config.Config, logger *logrus.Logger) *AuthService {
	return &AuthService{
		adminRepo:  adminRepo,
		jwtManager: jwtManager,
		cfg:        cfg,
		logger:     logger,
	}
}

// Login 管理员登录
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	admin, err := s.adminRepo.GetByUsername(req.Username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	// 验证密码
	if err := utils.CheckPassword(req.Password, admin.PasswordHash); err != nil {
		s.logger.WithField("username", req.Username).Warn("[AdminLogin] 密码错误")
		return nil, ErrInvalidCredentials
	}

	if !admin.IsActive {
		return nil, errors.New("账号已被禁用")
	}

	token, err := s.jwtManager.GenerateToken(admin.ID, admin.Username)
	if err != nil {
		return nil, fmt.Errorf("生成Token失败: %w", err)
	}

	if err := s.adminRepo.TouchLogin(admin.ID); err != nil {
		s.logger.WithError(err).Warn("[AdminLogin] 更新登录时间失败")
	}

	s.logger.WithField("username", admin.Username).Info("[AdminLogin] 登录成功")
	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		Admin:       toAdminInfo(admin),
	}, nil
}

// GetMe 获取当前管理员信息
func (s *AuthService) GetMe(adminID uint) (*dto.AdminInfo, error) {
	admin, err := s.adminRepo.GetByID(adminID)
	if err != nil {
		return nil, errors.New("管理员不存在")
	}
	info := toAdminInfo(admin)
	return &info, nil
}

// InitAdmin 首次启动时创建管理员账户
func (s *AuthService) InitAdmin() error {
	count, err := s.adminRepo.Count()
	if err != nil {
		return fmt.Errorf("查询管理员失败: %w", err)
	}
	if count > 0 {
		return nil
	}

	passwordHash, err := utils.HashPassword(s.cfg.Admin.Password)
	if err != nil {
		return fmt.Errorf("密码哈希失败: %w", err)
	}

	admin := &models.AdminUser{
		Username:     s.cfg.Admin.Username,
		PasswordHash: passwordHash,
		IsActive:     true,
	}
	if err := s.adminRepo.Create(admin); err != nil {
		return fmt.Errorf("创建管理员失败: %w", err)
	}

	s.logger.WithField("username", admin.Username).Info("[InitAdmin] 已创建管理员账户")
	return nil
}

func toAdminInfo(admin *models.AdminUser) dto.AdminInfo {
	return dto.AdminInfo{
		ID:          admin.ID,
		Username:    admin.Username,
		IsActive:    admin.IsActive,
		LastLoginAt: admin.LastLoginAt,
	}
}
