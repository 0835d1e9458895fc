package repository

import (
	"time"

	"studio-go/internal/models"

	"gorm.io/gorm"
)

// TaskRepository 生成任务数据访问层
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository 创建任务Repository
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create 创建任务
func (r *TaskRepository) Create(task *models.GenerationTask) error {
	return r.db.Create(task).Error
}

// GetByTaskID 根据任务ID获取任务
func (r *TaskRepository) GetByTaskID(taskID string) (*models.GenerationTask, error) {
	var task models.GenerationTask
	err := r.db.Where("task_id = ?", taskID).First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// FindRecentFinished 查找去重窗口内已完成的相同请求
func (r *TaskRepository) FindRecentFinished(email, idempotencyKey string, since time.Time) (*models.GenerationTask, error) {
	var task models.GenerationTask
	err := r.db.Where("email = ? AND idempotency_key = ? AND status = ? AND finished_at >= ?",
		email, idempotencyKey, models.TaskStatusFinished, since).
		Order("finished_at DESC").
		First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateStatus 更新任务状态
func (r *TaskRepository) UpdateStatus(taskID string, status string) error {
	return r.db.Model(&models.GenerationTask{}).Where("task_id = ?", taskID).Update("status", status).Error
}

// Finish 更新任务最终状态和完成时间
func (r *TaskRepository) Finish(taskID, status, artifactID, errMsg string, attempts int) error {
	updates := map[string]interface{}{
		"status":        status,
		"artifact_id":   artifactID,
		"error_message": errMsg,
		"attempts":      attempts,
		"finished_at":   time.Now(),
	}
	return r.db.Model(&models.GenerationTask{}).Where("task_id = ?", taskID).Updates(updates).Error
}

// ListByEmail 获取用户的任务列表
func (r *TaskRepository) ListByEmail(email string, offset, limit int) ([]models.GenerationTask, int64, error) {
	var tasks []models.GenerationTask
	var total int64

	query := r.db.Model(&models.GenerationTask{}).Where("email = ?", email)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("started_at DESC").Offset(offset).Limit(limit).Find(&tasks).Error
	return tasks, total, err
}

// List 获取所有任务，email 和 status 为空时不过滤
func (r *TaskRepository) List(email, status string, offset, limit int) ([]models.GenerationTask, int64, error) {
	var tasks []models.GenerationTask
	var total int64

	query := r.db.Model(&models.GenerationTask{})
	if email != "" {
		query = query.Where("email = ?", email)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("started_at DESC").Offset(offset).Limit(limit).Find(&tasks).Error
	return tasks, total, err
}

// MarkInterrupted 将重启前未结束的任务标记为出错
func (r *TaskRepository) MarkInterrupted() (int64, error) {
	res := r.db.Model(&models.GenerationTask{}).
		Where("status IN ?", []string{models.TaskStatusQueued, models.TaskStatusRunning}).
		Updates(map[string]interface{}{
			"status":        models.TaskStatusError,
			"error_message": "服务重启，任务中断",
			"finished_at":   time.Now(),
		})
	return res.RowsAffected, res.Error
}
