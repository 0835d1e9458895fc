package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"studio-go/internal/artifact"
	"studio-go/internal/config"
	"studio-go/internal/dto"
	"studio-go/internal/models"
	"studio-go/internal/planner"
	"studio-go/internal/repository"
	"studio-go/internal/workshop"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	// ErrUnitNotFound 单元不存在
	ErrUnitNotFound = errors.New("单元不存在")
	// ErrVersionConflict 单元已被其他页面修改
	ErrVersionConflict = errors.New("单元已被修改，请刷新后重试")
)

// UnitService 单元计划与日历
type UnitService struct {
	repo   *repository.UnitRepository
	gen    *GenerationService
	cfg    *config.Config
	logger *logrus.Logger
}

// NewUnitService 创建单元服务
func NewUnitService(repo *repository.UnitRepository, gen *GenerationService, cfg *config.Config, logger *logrus.Logger) *UnitService {
	return &UnitService{repo: repo, gen: gen, cfg: cfg, logger: logger}
}

// GenerateUnit 生成单元计划并保存
func (s *UnitService) GenerateUnit(ctx context.Context, email string, fields workshop.Fields) (*models.Unit, error) {
	tc, m, err := s.gen.Generate(ctx, email, workshop.ToolUnidad, fields)
	if err != nil {
		return nil, err
	}

	// 去重窗口内的重复提交拿到同一个制品，返回已保存的单元
	existing, err := s.repo.FindByArtifact(email, m.ID)
	switch {
	case err == nil:
		s.logger.WithFields(logrus.Fields{"email": email, "unit_id": existing.ID, "reused": tc.Reused}).Info("[GenerateUnit] 复用已有单元")
		return existing, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("查询单元失败: %w", err)
	}

	plan, err := artifact.AsLessonPlan(artifact.FromModel(m))
	if err != nil {
		s.logger.WithFields(logrus.Fields{"email": email, "artifact_id": m.ID}).WithError(err).Warn("[GenerateUnit] 单元计划无法解析")
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	unit := &models.Unit{
		ID:           uuid.NewString(),
		Email:        email,
		ArtifactID:   m.ID,
		NombreUnidad: plan.NombreUnidad,
		Asignatura:   plan.Asignatura,
		Nivel:        plan.Nivel,
		Lecciones:    plan.Lecciones,
	}
	// 后端未返回时沿用表单中的学科和年级
	if unit.Asignatura == "" {
		unit.Asignatura = fields.String("asignatura")
	}
	if unit.Nivel == "" {
		unit.Nivel = fields.String("nivel")
	}
	if unit.NombreUnidad == "" {
		unit.NombreUnidad = fields.String("nombreUnidad")
	}

	if err := s.repo.Create(unit); err != nil {
		return nil, fmt.Errorf("保存单元失败: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"email":   email,
		"unit_id": unit.ID,
		"lessons": len(unit.Lecciones),
	}).Info("[GenerateUnit] 单元已保存")
	return unit, nil
}

// GetUnit 获取单元
func (s *UnitService) GetUnit(id, email string) (*models.Unit, error) {
	unit, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnitNotFound
		}
		return nil, err
	}
	if unit.Email != email {
		return nil, ErrUnitNotFound
	}
	return unit, nil
}

// ListUnits 用户的全部单元
func (s *UnitService) ListUnits(email string) ([]models.Unit, error) {
	return s.repo.ListByEmail(email)
}

// UpdateUnit 整体替换单元
// expectedVersion 为0时后写覆盖，否则版本不一致返回 ErrVersionConflict
func (s *UnitService) UpdateUnit(id, email string, req *dto.UpdateUnitRequest) (*models.Unit, error) {
	if _, err := s.GetUnit(id, email); err != nil {
		return nil, err
	}

	unit := &models.Unit{
		ID:           id,
		NombreUnidad: req.NombreUnidad,
		Asignatura:   req.Asignatura,
		Nivel:        req.Nivel,
		Lecciones:    req.Lecciones,
	}
	if err := s.repo.Replace(unit, req.ExpectedVersion); err != nil {
		if errors.Is(err, repository.ErrStaleVersion) {
			return nil, ErrVersionConflict
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"email": email, "unit_id": id, "version": unit.Version}).Info("[UpdateUnit] 单元已更新")
	return s.GetUnit(id, email)
}

// CalendarEvents 用户全部单元的日历事件，按学科和年级过滤
// date 非零时只返回当天的课时
func (s *UnitService) CalendarEvents(email string, subjects, levels []string, date time.Time) (*dto.CalendarResponse, error) {
	units, err := s.repo.ListByEmail(email)
	if err != nil {
		return nil, err
	}

	loc := s.cfg.Export.Location()
	var all []planner.Event
	var skipped []string
	for i := range units {
		events, errs := planner.UnitEvents(&units[i], loc)
		all = append(all, events...)
		for _, e := range errs {
			skipped = append(skipped, e.Error())
		}
	}
	if len(skipped) > 0 {
		s.logger.WithFields(logrus.Fields{"email": email, "skipped": len(skipped)}).Warn("[CalendarEvents] 部分课时日期无效")
	}

	allSubjects, allLevels := planner.Subjects(all)
	filtered := planner.FilterEvents(all, subjects, levels)
	if !date.IsZero() {
		filtered = planner.LessonsOn(filtered, date.In(loc))
	} else {
		planner.SortEvents(filtered)
	}

	return &dto.CalendarResponse{
		Events:   filtered,
		Subjects: allSubjects,
		Levels:   allLevels,
		Skipped:  skipped,
	}, nil
}
