package service

import (
	"errors"
	"strings"

	"studio-go/internal/artifact"
	"studio-go/internal/dto"
	"studio-go/internal/export"
	"studio-go/internal/models"
	"studio-go/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ArtifactService 制品查询、渲染与导出
type ArtifactService struct {
	repo     *repository.ArtifactRepository
	exporter *export.Registry
	logger   *logrus.Logger
}

// NewArtifactService 创建制品服务
func NewArtifactService(repo *repository.ArtifactRepository, exporter *export.Registry, logger *logrus.Logger) *ArtifactService {
	return &ArtifactService{repo: repo, exporter: exporter, logger: logger}
}

// loadArtifact 读取属于该用户的制品
func loadArtifact(repo *repository.ArtifactRepository, id, email string) (*models.Artifact, error) {
	m, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArtifactNotFound
		}
		return nil, err
	}
	if m.Email != email {
		return nil, ErrArtifactNotFound
	}
	return m, nil
}

// Get 获取制品
func (s *ArtifactService) Get(id, email string) (*dto.ArtifactResponse, error) {
	m, err := loadArtifact(s.repo, id, email)
	if err != nil {
		return nil, err
	}
	resp := ToArtifactResponse(m)
	return &resp, nil
}

// List 用户的制品列表，tool为空时返回全部
func (s *ArtifactService) List(email, tool string, page, perPage int) (*dto.PaginatedResponse, error) {
	list, total, err := s.repo.ListByEmail(email, tool, (page-1)*perPage, perPage)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ArtifactResponse, len(list))
	for i := range list {
		items[i] = ToArtifactResponse(&list[i])
	}
	return &dto.PaginatedResponse{Items: items, Total: total, Page: page, PerPage: perPage}, nil
}

// Render 按数据结构渲染制品
func (s *ArtifactService) Render(id, email string) (*dto.RenderResponse, error) {
	m, err := loadArtifact(s.repo, id, email)
	if err != nil {
		return nil, err
	}
	a := artifact.FromModel(m)
	title, sections := artifact.Outline(a)

	resp := &dto.RenderResponse{
		ID:       a.ID,
		View:     string(artifact.ViewOf(a)),
		Title:    title,
		Text:     artifact.RenderText(a),
		Sections: make([]dto.SectionView, len(sections)),
	}
	for i, sec := range sections {
		resp.Sections[i] = dto.SectionView{Heading: sec.Heading, Lines: sec.Lines}
	}
	if resp.View == string(artifact.ViewCrossword) {
		if cw, err := artifact.AsCrossword(a); err == nil {
			resp.Grid = artifact.CrosswordGrid(cw)
		}
	}
	return resp, nil
}

// Export 导出制品为文件，失败时不返回任何内容
func (s *ArtifactService) Export(id, email, format, name string) (*export.File, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	m, err := loadArtifact(s.repo, id, email)
	if err != nil {
		return nil, err
	}

	doc := export.FromArtifact(artifact.FromModel(m))
	if strings.TrimSpace(name) == "" {
		name = doc.Title
	}
	file, err := s.exporter.Export(doc, name, f)
	if err != nil {
		s.logger.WithFields(logrus.Fields{"artifact_id": id, "format": f.String()}).WithError(err).Warn("[ExportArtifact] 导出失败")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"artifact_id": id,
		"format":      f.String(),
		"size":        len(file.Data),
	}).Info("[ExportArtifact] 导出完成")
	return file, nil
}

// ToArtifactResponse 转换为制品响应
func ToArtifactResponse(m *models.Artifact) dto.ArtifactResponse {
	a := artifact.FromModel(m)
	return dto.ArtifactResponse{
		ID:        m.ID,
		Tool:      m.Tool,
		Kind:      m.Kind,
		Source:    m.Source,
		Title:     a.Title,
		Content:   m.Content,
		Data:      a.Data,
		Malformed: a.Malformed,
		Revision:  m.Revision,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
