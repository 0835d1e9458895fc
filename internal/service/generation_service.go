package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"studio-go/internal/artifact"
	"studio-go/internal/config"
	"studio-go/internal/dto"
	"studio-go/internal/models"
	"studio-go/internal/repository"
	"studio-go/internal/workshop"
	"studio-go/pkg/backend_caller"
	"studio-go/pkg/redis_limiter"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

var (
	// ErrBusy 同一用户同时进行的任务过多
	ErrBusy = errors.New("生成任务过多，请稍后重试")
	// ErrGenerationFailed 内容生成后端未返回可用结果
	ErrGenerationFailed = errors.New("内容生成失败")
	// ErrArtifactNotFound 制品不存在
	ErrArtifactNotFound = errors.New("制品不存在")
)

// Limiter 并发槽位限制
type Limiter interface {
	Acquire(ctx context.Context, key string) error
	Release(ctx context.Context, key string)
}

// ArtifactListener 新制品保存后的回调，按 Source 区分来源
type ArtifactListener interface {
	OnArtifact(ctx context.Context, a *models.Artifact)
}

// GenerationService 生成任务编排：访问校验、去重、调用后端、保存制品
type GenerationService struct {
	tools        *ToolService
	taskRepo     *repository.TaskRepository
	artifactRepo *repository.ArtifactRepository
	caller       *backend_caller.BackendCaller
	access       AccessChecker
	limiter      Limiter
	manager      *TaskManager
	listeners    []ArtifactListener
	cfg          *config.Config
	logger       *logrus.Logger

	group singleflight.Group
}

// NewGenerationService 创建生成服务，limiter 可为nil
func NewGenerationService(
	tools *ToolService,
	taskRepo *repository.TaskRepository,
	artifactRepo *repository.ArtifactRepository,
	caller *backend_caller.BackendCaller,
	access AccessChecker,
	limiter Limiter,
	manager *TaskManager,
	cfg *config.Config,
	logger *logrus.Logger,
) *GenerationService {
	return &GenerationService{
		tools:        tools,
		taskRepo:     taskRepo,
		artifactRepo: artifactRepo,
		caller:       caller,
		access:       access,
		limiter:      limiter,
		manager:      manager,
		cfg:          cfg,
		logger:       logger,
	}
}

// AddListener 注册制品回调
func (s *GenerationService) AddListener(l ArtifactListener) {
	s.listeners = append(s.listeners, l)
}

// submission 已校验的生成请求
type submission struct {
	email    string
	tool     *workshop.Tool
	body     interface{}
	key      string
	decision *AccessDecision
}

// Submit 提交生成任务并立即返回
// 同一请求正在进行时返回该任务，去重窗口内已完成时复用其结果
func (s *GenerationService) Submit(ctx context.Context, email, toolName string, fields workshop.Fields) (*TaskContext, error) {
	tool, err := s.tools.Resolve(toolName)
	if err != nil {
		return nil, err
	}

	if fields == nil {
		fields = workshop.Fields{}
	}
	fields["email"] = email
	body, err := tool.BuildRequest(fields)
	if err != nil {
		return nil, err
	}
	key, err := workshop.IdempotencyKey(tool.Name, body)
	if err != nil {
		return nil, err
	}

	// 访问被拒绝时不发出任何生成请求
	decision, err := Require(ctx, s.access, email)
	if err != nil {
		return nil, err
	}

	sub := &submission{email: email, tool: tool, body: body, key: key, decision: decision}
	v, err, shared := s.group.Do(runningKey(email, key), func() (interface{}, error) {
		return s.start(sub)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.WithFields(logrus.Fields{"email": email, "tool": tool.Name}).Debug("[Submit] 合并重复提交")
	}
	return v.(*TaskContext), nil
}

func (s *GenerationService) start(sub *submission) (*TaskContext, error) {
	log := s.logger.WithFields(logrus.Fields{"email": sub.email, "tool": sub.tool.Name})

	if tc, ok := s.manager.FindRunning(sub.email, sub.key); ok {
		log.WithField("task_id", tc.TaskID).Info("[Submit] 相同请求正在进行，返回已有任务")
		return tc, nil
	}
	if tc := s.findReusable(sub); tc != nil {
		log.WithField("task_id", tc.TaskID).Info("[Submit] 去重窗口内已有结果，直接复用")
		return tc, nil
	}

	acquired := false
	if s.limiter != nil {
		err := s.limiter.Acquire(context.Background(), sub.email)
		switch {
		case errors.Is(err, redis_limiter.ErrLimitReached):
			return nil, ErrBusy
		case err != nil:
			// Redis 不可用时不阻塞生成
			log.WithError(err).Warn("[Submit] 获取并发槽位失败，跳过限流")
		default:
			acquired = true
		}
	}

	taskID := uuid.NewString()
	params := models.JSONMap{"request": sub.body}
	task := &models.GenerationTask{
		TaskID:         taskID,
		Email:          sub.email,
		Tool:           sub.tool.Name,
		IdempotencyKey: sub.key,
		Status:         models.TaskStatusQueued,
		Params:         params,
		StartedAt:      time.Now(),
	}
	if err := s.taskRepo.Create(task); err != nil {
		if acquired {
			s.limiter.Release(context.Background(), sub.email)
		}
		log.WithError(err).Error("[Submit] 创建任务记录失败")
		return nil, fmt.Errorf("创建任务记录失败: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	tc := newTaskContext(taskID, sub.email, sub.tool.Name, sub.key, cancel)
	s.manager.Register(tc)

	tc.AddEvent(&dto.ProgressEvent{Type: dto.EventQueued, Message: "任务已创建"})
	accessMsg := "访问已校验"
	if sub.decision != nil && sub.decision.Degraded {
		accessMsg = "校验服务不可用，按策略放行"
	}
	tc.AddEvent(&dto.ProgressEvent{Type: dto.EventAccess, Message: accessMsg})

	go s.run(ctx, tc, sub.tool, sub.body, acquired)

	log.WithField("task_id", taskID).Info("[Submit] 任务已启动")
	return tc, nil
}

// findReusable 去重窗口内已完成且制品仍存在的任务
func (s *GenerationService) findReusable(sub *submission) *TaskContext {
	window := s.cfg.Backend.GetDedupWindow()
	if window <= 0 {
		return nil
	}
	task, err := s.taskRepo.FindRecentFinished(sub.email, sub.key, time.Now().Add(-window))
	if err != nil {
		return nil
	}
	if _, err := s.artifactRepo.GetByID(task.ArtifactID); err != nil {
		return nil
	}
	tc := finishedTaskContext(task)
	tc.Reused = true
	tc.AddEvent(&dto.ProgressEvent{Type: dto.EventFinished, Message: "复用已有结果", ArtifactID: task.ArtifactID})
	return tc
}

// run 执行生成任务
func (s *GenerationService) run(ctx context.Context, tc *TaskContext, tool *workshop.Tool, body interface{}, acquired bool) {
	log := s.logger.WithFields(logrus.Fields{"task_id": tc.TaskID, "email": tc.Email, "tool": tool.Name})
	defer s.manager.Release(tc)
	if acquired {
		defer s.limiter.Release(context.Background(), tc.Email)
	}

	tc.setRunning()
	if err := s.taskRepo.UpdateStatus(tc.TaskID, models.TaskStatusRunning); err != nil {
		log.WithError(err).Warn("[runTask] 更新任务状态失败")
	}

	timeout := tool.Timeout
	if timeout <= 0 {
		timeout = s.cfg.Backend.GetTimeout()
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tc.AddEvent(&dto.ProgressEvent{Type: dto.EventAttempt, Attempt: 1, Message: "请求内容生成后端"})
	attempts := 1
	resp, err := s.caller.PostJSON(callCtx, tool.Path, body, &backend_caller.CallOptions{
		Retry: backend_caller.RetryPolicy{Attempts: tool.RetryAttempts, Step: s.cfg.Backend.GetRetryStep()},
		OnAttempt: func(attempt int, err error) {
			attempts = attempt
			tc.setAttempts(attempt)
			if attempt < tool.RetryAttempts {
				tc.AddEvent(&dto.ProgressEvent{Type: dto.EventRetry, Attempt: attempt + 1, Message: err.Error()})
			}
		},
	})
	if resp != nil {
		attempts = resp.Attempts
	}
	tc.setAttempts(attempts)

	// 任务已取消时丢弃迟到的结果
	if ctx.Err() != nil {
		log.Info("[runTask] 任务已取消，丢弃后端结果")
		return
	}

	if err != nil {
		msg := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			msg = "内容生成超时"
		}
		s.fail(tc, attempts, msg)
		log.WithError(err).Warn("[runTask] 生成失败")
		return
	}

	a, err := s.saveArtifact(tc, tool, string(resp.Body))
	if err != nil {
		s.fail(tc, attempts, err.Error())
		log.WithError(err).Error("[runTask] 保存制品失败")
		return
	}

	if !tc.finish(models.TaskStatusFinished, a.ID, "") {
		// 保存期间任务被取消
		if err := s.artifactRepo.Delete(a.ID); err != nil {
			log.WithError(err).Warn("[runTask] 删除已取消任务的制品失败")
		}
		return
	}
	if err := s.taskRepo.Finish(tc.TaskID, models.TaskStatusFinished, a.ID, "", attempts); err != nil {
		log.WithError(err).Warn("[runTask] 更新任务记录失败")
	}
	for _, l := range s.listeners {
		l.OnArtifact(context.Background(), a)
	}
	tc.AddEvent(&dto.ProgressEvent{Type: dto.EventFinished, ArtifactID: a.ID, Attempt: attempts})
	log.WithFields(logrus.Fields{"artifact_id": a.ID, "attempts": attempts}).Info("[runTask] 任务完成")
}

func (s *GenerationService) fail(tc *TaskContext, attempts int, msg string) {
	if !tc.finish(models.TaskStatusError, "", msg) {
		return
	}
	if err := s.taskRepo.Finish(tc.TaskID, models.TaskStatusError, "", msg, attempts); err != nil {
		s.logger.WithError(err).Warn("[runTask] 更新任务记录失败")
	}
	tc.AddEvent(&dto.ProgressEvent{Type: dto.EventError, Message: msg, Attempt: attempts})
}

// saveArtifact 解析并保存后端内容
// JSON类制品解析失败时保留原文
func (s *GenerationService) saveArtifact(tc *TaskContext, tool *workshop.Tool, raw string) (*models.Artifact, error) {
	decoded := artifact.Decode(tool.Kind, raw)
	if decoded.Malformed {
		s.logger.WithFields(logrus.Fields{"task_id": tc.TaskID, "tool": tool.Name}).Warn("[runTask] 返回内容不是有效JSON，保留原文")
	}

	a := &models.Artifact{
		ID:             uuid.NewString(),
		Tool:           tool.Name,
		Email:          tc.Email,
		Kind:           string(tool.Kind),
		Source:         models.SourceGenerated,
		Title:          decoded.Title,
		Content:        decoded.Text,
		Revision:       1,
		IdempotencyKey: tc.IdempotencyKey,
		TaskID:         tc.TaskID,
	}
	if a.Title == "" {
		a.Title = tool.Title
	}
	if err := s.artifactRepo.Create(a); err != nil {
		return nil, fmt.Errorf("保存制品失败: %w", err)
	}
	return a, nil
}

// Generate 同步生成，调用方断开时取消任务
func (s *GenerationService) Generate(ctx context.Context, email, toolName string, fields workshop.Fields) (*TaskContext, *models.Artifact, error) {
	tc, err := s.Submit(ctx, email, toolName, fields)
	if err != nil {
		return nil, nil, err
	}

	select {
	case <-tc.Done():
	case <-ctx.Done():
		_ = s.Cancel(tc.TaskID, email)
		return tc, nil, ctx.Err()
	}

	if tc.Status() != models.TaskStatusFinished {
		return tc, nil, fmt.Errorf("%w: %s", ErrGenerationFailed, tc.Err())
	}
	a, err := s.artifactRepo.GetByID(tc.ArtifactID())
	if err != nil {
		return tc, nil, fmt.Errorf("读取制品失败: %w", err)
	}
	return tc, a, nil
}

// Cancel 取消任务，迟到的后端结果会被丢弃
func (s *GenerationService) Cancel(taskID, email string) error {
	tc, ok := s.manager.GetTask(taskID)
	if !ok || tc.Email != email {
		if task, err := s.taskRepo.GetByTaskID(taskID); err == nil && task.Email == email {
			return ErrTaskFinished
		}
		return ErrTaskNotFound
	}

	if !tc.finish(models.TaskStatusCancelled, "", "已取消") {
		return ErrTaskFinished
	}
	if tc.cancelFunc != nil {
		tc.cancelFunc()
	}
	if err := s.taskRepo.Finish(taskID, models.TaskStatusCancelled, "", "已取消", tc.Snapshot().Attempts); err != nil {
		s.logger.WithError(err).Warn("[CancelTask] 更新任务记录失败")
	}
	tc.AddEvent(&dto.ProgressEvent{Type: dto.EventCancelled, Message: "任务已取消"})
	s.logger.WithFields(logrus.Fields{"task_id": taskID, "email": email}).Info("[CancelTask] 任务已取消")
	return nil
}

// Get 获取任务信息，内存中没有时查数据库
func (s *GenerationService) Get(taskID, email string) (*dto.TaskResponse, error) {
	if tc, ok := s.manager.GetTask(taskID); ok {
		if tc.Email != email {
			return nil, ErrTaskNotFound
		}
		snap := tc.Snapshot()
		return &snap, nil
	}

	task, err := s.taskRepo.GetByTaskID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	if task.Email != email {
		return nil, ErrTaskNotFound
	}
	snap := finishedTaskContext(task).Snapshot()
	return &snap, nil
}

// Subscribe 订阅任务进度，返回事件通道、历史事件和取消函数
func (s *GenerationService) Subscribe(taskID, email string) (<-chan *dto.ProgressEvent, []*dto.ProgressEvent, func(), error) {
	tc, ok := s.manager.GetTask(taskID)
	if !ok {
		// 已从内存移除的任务只回放结束事件
		task, err := s.taskRepo.GetByTaskID(taskID)
		if err != nil || task.Email != email {
			return nil, nil, nil, ErrTaskNotFound
		}
		tc = finishedTaskContext(task)
		tc.AddEvent(terminalEvent(task))
	}
	if tc.Email != email {
		return nil, nil, nil, ErrTaskNotFound
	}

	// 先订阅再取历史，避免漏掉中间的事件
	ch := tc.Subscribe()
	history := tc.GetEventHistory()
	return ch, history, func() { tc.Unsubscribe(ch) }, nil
}

// ListTasks 用户的任务列表
func (s *GenerationService) ListTasks(email string, page, perPage int) (*dto.PaginatedResponse, error) {
	tasks, total, err := s.taskRepo.ListByEmail(email, (page-1)*perPage, perPage)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TaskResponse, len(tasks))
	for i := range tasks {
		items[i] = finishedTaskContext(&tasks[i]).Snapshot()
	}
	return &dto.PaginatedResponse{Items: items, Total: total, Page: page, PerPage: perPage}, nil
}

func terminalEvent(task *models.GenerationTask) *dto.ProgressEvent {
	switch task.Status {
	case models.TaskStatusFinished:
		return &dto.ProgressEvent{Type: dto.EventFinished, ArtifactID: task.ArtifactID, Attempt: task.Attempts}
	case models.TaskStatusCancelled:
		return &dto.ProgressEvent{Type: dto.EventCancelled, Message: task.ErrorMessage}
	default:
		return &dto.ProgressEvent{Type: dto.EventError, Message: task.ErrorMessage, Attempt: task.Attempts}
	}
}

// ActiveTasks 内存中尚未结束的任务
func (s *GenerationService) ActiveTasks() []dto.TaskResponse {
	tasks := s.manager.GetAllTasks()
	active := make([]dto.TaskResponse, 0, len(tasks))
	for _, tc := range tasks {
		if !isTerminal(tc.Status()) {
			active = append(active, tc.Snapshot())
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].StartedAt.Before(active[j].StartedAt)
	})
	return active
}

// AllTasks 全部任务记录，供运营后台查看，可按邮箱和状态过滤
func (s *GenerationService) AllTasks(email, status string, page, perPage int) (*dto.PaginatedResponse, error) {
	tasks, total, err := s.taskRepo.List(email, status, (page-1)*perPage, perPage)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TaskResponse, len(tasks))
	for i := range tasks {
		items[i] = finishedTaskContext(&tasks[i]).Snapshot()
	}
	return &dto.PaginatedResponse{Items: items, Total: total, Page: page, PerPage: perPage}, nil
}

// ForceCancel 运营后台取消任意用户的任务
func (s *GenerationService) ForceCancel(taskID string) error {
	tc, ok := s.manager.GetTask(taskID)
	if !ok {
		return ErrTaskNotFound
	}
	return s.Cancel(taskID, tc.Email)
}
