package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"studio-go/internal/dto"
	"studio-go/internal/models"
)

var (
	// ErrTaskNotFound 任务不存在或不属于当前用户
	ErrTaskNotFound = errors.New("任务不存在")
	// ErrTaskFinished 任务已结束
	ErrTaskFinished = errors.New("任务已结束")
)

// taskRetention 结束的任务在内存中保留的时间，供SSE补读历史
const taskRetention = 10 * time.Minute

// TaskContext 一次生成任务的内存状态
type TaskContext struct {
	TaskID         string
	Email          string
	Tool           string
	IdempotencyKey string
	StartTime      time.Time
	// Reused 结果来自去重窗口内的已完成任务
	Reused bool

	mu         sync.RWMutex
	status     string
	artifactID string
	attempts   int
	errMsg     string
	endTime    *time.Time
	cancelFunc context.CancelFunc
	done       chan struct{}

	// 用于广播的事件历史和订阅者管理
	eventHistory     []*dto.ProgressEvent
	eventHistoryLock sync.RWMutex
	subscribers      map[chan *dto.ProgressEvent]bool
	subscribersLock  sync.RWMutex
}

func newTaskContext(taskID, email, tool, key string, cancel context.CancelFunc) *TaskContext {
	return &TaskContext{
		TaskID:         taskID,
		Email:          email,
		Tool:           tool,
		IdempotencyKey: key,
		StartTime:      time.Now(),
		status:         models.TaskStatusQueued,
		cancelFunc:     cancel,
		done:           make(chan struct{}),
		subscribers:    make(map[chan *dto.ProgressEvent]bool),
	}
}

// finishedTaskContext 由数据库记录还原已结束的任务
func finishedTaskContext(t *models.GenerationTask) *TaskContext {
	tc := newTaskContext(t.TaskID, t.Email, t.Tool, t.IdempotencyKey, nil)
	tc.StartTime = t.StartedAt
	tc.status = t.Status
	tc.artifactID = t.ArtifactID
	tc.attempts = t.Attempts
	tc.errMsg = t.ErrorMessage
	tc.endTime = t.FinishedAt
	close(tc.done)
	return tc
}

// AddEvent 添加事件到历史并广播给所有订阅者
func (tc *TaskContext) AddEvent(event *dto.ProgressEvent) {
	if event.Time.IsZero() {
		event.Time = time.Now()
	}

	// 添加到历史
	tc.eventHistoryLock.Lock()
	tc.eventHistory = append(tc.eventHistory, event)
	tc.eventHistoryLock.Unlock()

	// 广播给所有订阅者
	tc.subscribersLock.RLock()
	for ch := range tc.subscribers {
		select {
		case ch <- event:
		default:
			// 通道满了，跳过（避免阻塞）
		}
	}
	tc.subscribersLock.RUnlock()
}

// Subscribe 订阅事件（返回一个接收事件的通道）
func (tc *TaskContext) Subscribe() chan *dto.ProgressEvent {
	ch := make(chan *dto.ProgressEvent, 64)

	tc.subscribersLock.Lock()
	tc.subscribers[ch] = true
	tc.subscribersLock.Unlock()

	return ch
}

// Unsubscribe 取消订阅
func (tc *TaskContext) Unsubscribe(ch chan *dto.ProgressEvent) {
	tc.subscribersLock.Lock()
	delete(tc.subscribers, ch)
	tc.subscribersLock.Unlock()
	// 注意：不关闭通道，SSE handler 通过 Done() 和 context 判断结束
}

// GetEventHistory 获取事件历史的副本
func (tc *TaskContext) GetEventHistory() []*dto.ProgressEvent {
	tc.eventHistoryLock.RLock()
	defer tc.eventHistoryLock.RUnlock()

	history := make([]*dto.ProgressEvent, len(tc.eventHistory))
	copy(history, tc.eventHistory)
	return history
}

// Done 任务结束时关闭
func (tc *TaskContext) Done() <-chan struct{} {
	return tc.done
}

// Status 当前状态
func (tc *TaskContext) Status() string {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.status
}

// ArtifactID 生成的制品ID
func (tc *TaskContext) ArtifactID() string {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.artifactID
}

// Err 任务失败原因
func (tc *TaskContext) Err() string {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.errMsg
}

func (tc *TaskContext) setRunning() {
	tc.mu.Lock()
	tc.status = models.TaskStatusRunning
	tc.mu.Unlock()
}

func (tc *TaskContext) setAttempts(n int) {
	tc.mu.Lock()
	tc.attempts = n
	tc.mu.Unlock()
}

// finish 进入结束状态，已结束时返回false
func (tc *TaskContext) finish(status, artifactID, errMsg string) bool {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if isTerminal(tc.status) {
		return false
	}
	now := time.Now()
	tc.status = status
	tc.artifactID = artifactID
	tc.errMsg = errMsg
	tc.endTime = &now
	close(tc.done)
	return true
}

// Snapshot 任务信息
func (tc *TaskContext) Snapshot() dto.TaskResponse {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return dto.TaskResponse{
		TaskID:         tc.TaskID,
		Email:          tc.Email,
		Tool:           tc.Tool,
		Status:         tc.status,
		IdempotencyKey: tc.IdempotencyKey,
		ArtifactID:     tc.artifactID,
		Attempts:       tc.attempts,
		Error:          tc.errMsg,
		Reused:         tc.Reused,
		StartedAt:      tc.StartTime,
		FinishedAt:     tc.endTime,
	}
}

func isTerminal(status string) bool {
	return (&models.GenerationTask{Status: status}).IsTerminal()
}

// TaskManager 内存中的任务表
type TaskManager struct {
	tasks     map[string]*TaskContext
	running   map[string]*TaskContext // email+幂等键 -> 进行中的任务
	tasksLock sync.RWMutex
	retention time.Duration
}

// NewTaskManager 创建任务管理器
func NewTaskManager() *TaskManager {
	return &TaskManager{
		tasks:     make(map[string]*TaskContext),
		running:   make(map[string]*TaskContext),
		retention: taskRetention,
	}
}

func runningKey(email, key string) string {
	return email + ":" + key
}

// Register 登记进行中的任务
func (tm *TaskManager) Register(tc *TaskContext) {
	tm.tasksLock.Lock()
	defer tm.tasksLock.Unlock()
	tm.tasks[tc.TaskID] = tc
	tm.running[runningKey(tc.Email, tc.IdempotencyKey)] = tc
}

// FindRunning 查找同一用户同一请求的进行中任务
func (tm *TaskManager) FindRunning(email, key string) (*TaskContext, bool) {
	tm.tasksLock.RLock()
	defer tm.tasksLock.RUnlock()
	tc, ok := tm.running[runningKey(email, key)]
	return tc, ok
}

// Release 任务结束后解除去重登记，并在保留期后移除
func (tm *TaskManager) Release(tc *TaskContext) {
	tm.tasksLock.Lock()
	if cur, ok := tm.running[runningKey(tc.Email, tc.IdempotencyKey)]; ok && cur == tc {
		delete(tm.running, runningKey(tc.Email, tc.IdempotencyKey))
	}
	tm.tasksLock.Unlock()

	time.AfterFunc(tm.retention, func() {
		tm.tasksLock.Lock()
		delete(tm.tasks, tc.TaskID)
		tm.tasksLock.Unlock()
	})
}

// GetTask 获取任务
func (tm *TaskManager) GetTask(taskID string) (*TaskContext, bool) {
	tm.tasksLock.RLock()
	defer tm.tasksLock.RUnlock()
	tc, ok := tm.tasks[taskID]
	return tc, ok
}

// GetAllTasks 获取所有内存中的任务
func (tm *TaskManager) GetAllTasks() []*TaskContext {
	tm.tasksLock.RLock()
	defer tm.tasksLock.RUnlock()
	tasks := make([]*TaskContext, 0, len(tm.tasks))
	for _, tc := range tm.tasks {
		tasks = append(tasks, tc)
	}
	return tasks
}

// CancelAll 取消所有进行中的任务，关闭服务时调用
func (tm *TaskManager) CancelAll() {
	for _, tc := range tm.GetAllTasks() {
		if tc.cancelFunc != nil && !isTerminal(tc.Status()) {
			tc.cancelFunc()
		}
	}
}
