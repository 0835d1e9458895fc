package service

import (
	"errors"
	"fmt"

	"studio-go/internal/dto"
	"studio-go/internal/models"
	"studio-go/internal/repository"
	"studio-go/internal/workshop"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ErrToolEndpointNotFound 覆盖配置不存在
var ErrToolEndpointNotFound = errors.New("工具配置不存在")

// ToolService 工具注册表与运营覆盖配置
type ToolService struct {
	registry        *workshop.Registry
	repo            *repository.ToolEndpointRepository
	defaultAttempts int
	logger          *logrus.Logger
}

// NewToolService 创建工具服务，defaultAttempts 为重试类工具的默认尝试次数
func NewToolService(registry *workshop.Registry, repo *repository.ToolEndpointRepository, defaultAttempts int, logger *logrus.Logger) *ToolService {
	return &ToolService{registry: registry, repo: repo, defaultAttempts: defaultAttempts, logger: logger}
}

// Resolve 获取工具，并应用数据库中的覆盖配置
func (s *ToolService) Resolve(name string) (*workshop.Tool, error) {
	tool, err := s.registry.Get(name)
	if err != nil {
		return nil, err
	}
	var ep *models.ToolEndpoint
	if s.repo != nil {
		found, err := s.repo.GetActiveByName(name)
		switch {
		case err == nil:
			ep = found
		case !errors.Is(err, gorm.ErrRecordNotFound):
			s.logger.WithField("tool", name).WithError(err).Warn("[ToolService] 读取覆盖配置失败，使用内置配置")
		}
	}

	resolved := tool.WithEndpoint(ep)
	resolved.RetryAttempts = resolved.Attempts(s.defaultAttempts)
	return resolved, nil
}

// ListTools 列出所有工具的生效配置
func (s *ToolService) ListTools() []dto.ToolInfo {
	tools := s.registry.List()
	infos := make([]dto.ToolInfo, 0, len(tools))
	for _, t := range tools {
		resolved, err := s.Resolve(t.Name)
		if err != nil {
			continue
		}
		infos = append(infos, dto.ToolInfo{
			Name:          resolved.Name,
			Title:         resolved.Title,
			Kind:          string(resolved.Kind),
			Path:          resolved.Path,
			RetryAttempts: resolved.RetryAttempts,
		})
	}
	return infos
}

// GetAllEndpoints 分页获取覆盖配置(管理员)
func (s *ToolService) GetAllEndpoints(page, perPage int) (*dto.PaginatedResponse, error) {
	offset := (page - 1) * perPage
	endpoints, total, err := s.repo.List(offset, perPage)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ToolEndpointResponse, len(endpoints))
	for i := range endpoints {
		responses[i] = toEndpointResponse(&endpoints[i])
	}

	return &dto.PaginatedResponse{
		Items:   responses,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	}, nil
}

// CreateEndpoint 创建覆盖配置
func (s *ToolService) CreateEndpoint(req *dto.CreateToolEndpointRequest) (*dto.ToolEndpointResponse, error) {
	if _, err := s.registry.Get(req.Name); err != nil {
		return nil, err
	}

	endpoint := &models.ToolEndpoint{
		Name:          req.Name,
		Path:          req.Path,
		ImprovePath:   req.ImprovePath,
		Timeout:       req.Timeout,
		RetryAttempts: req.RetryAttempts,
		Description:   req.Description,
		IsActive:      req.IsActive,
	}
	if err := s.repo.Create(endpoint); err != nil {
		return nil, fmt.Errorf("创建工具配置失败: %w", err)
	}

	s.logger.WithField("tool", endpoint.Name).Info("[ToolService] 新增工具覆盖配置")
	resp := toEndpointResponse(endpoint)
	return &resp, nil
}

// UpdateEndpoint 更新覆盖配置
func (s *ToolService) UpdateEndpoint(id uint, req *dto.UpdateToolEndpointRequest) (*dto.ToolEndpointResponse, error) {
	endpoint, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrToolEndpointNotFound
		}
		return nil, err
	}

	if req.Path != nil {
		endpoint.Path = *req.Path
	}
	if req.ImprovePath != nil {
		endpoint.ImprovePath = *req.ImprovePath
	}
	if req.Timeout != nil {
		endpoint.Timeout = *req.Timeout
	}
	if req.RetryAttempts != nil {
		endpoint.RetryAttempts = *req.RetryAttempts
	}
	if req.Description != nil {
		endpoint.Description = *req.Description
	}
	if req.IsActive != nil {
		endpoint.IsActive = *req.IsActive
	}

	if err := s.repo.Update(endpoint); err != nil {
		return nil, err
	}
	resp := toEndpointResponse(endpoint)
	return &resp, nil
}

// DeleteEndpoint 删除覆盖配置
func (s *ToolService) DeleteEndpoint(id uint) error {
	if _, err := s.repo.GetByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrToolEndpointNotFound
		}
		return err
	}
	return s.repo.Delete(id)
}

func toEndpointResponse(ep *models.ToolEndpoint) dto.ToolEndpointResponse {
	return dto.ToolEndpointResponse{
		ID:            ep.ID,
		Name:          ep.Name,
		Path:          ep.Path,
		ImprovePath:   ep.ImprovePath,
		Timeout:       ep.Timeout,
		RetryAttempts: ep.RetryAttempts,
		Description:   ep.Description,
		IsActive:      ep.IsActive,
		CreatedAt:     ep.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:     ep.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
