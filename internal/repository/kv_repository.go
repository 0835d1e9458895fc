package repository

import (
	"context"
	"errors"
	"time"

	"studio-go/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrKeyNotFound 键不存在
	ErrKeyNotFound = errors.New("键不存在")
	// ErrVersionMismatch 写入时版本不一致
	ErrVersionMismatch = errors.New("版本不一致")
)

// KVItem 键值数据及其版本
type KVItem struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// KVRepository 按命名空间隔离的键值存储
// Set 的 expectedVersion 为0时无条件写入，否则做比较并交换
type KVRepository interface {
	Get(ctx context.Context, namespace, key string) (*KVItem, error)
	Set(ctx context.Context, namespace, key, value string, expectedVersion int64) (*KVItem, error)
	Delete(ctx context.Context, namespace, key string) error
	Clear(ctx context.Context, namespace string) error
}

// GormKVRepository 基于数据库的键值存储
type GormKVRepository struct {
	db *gorm.DB
}

// NewGormKVRepository 创建数据库键值存储
func NewGormKVRepository(db *gorm.DB) *GormKVRepository {
	return &GormKVRepository{db: db}
}

// Get 读取键
func (r *GormKVRepository) Get(ctx context.Context, namespace, key string) (*KVItem, error) {
	var item models.KVItem
	err := r.db.WithContext(ctx).Where("namespace = ? AND item_key = ?", namespace, key).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &KVItem{Key: item.Key, Value: item.Value, Version: item.Version, UpdatedAt: item.UpdatedAt}, nil
}

// Set 写入键
func (r *GormKVRepository) Set(ctx context.Context, namespace, key, value string, expectedVersion int64) (*KVItem, error) {
	if expectedVersion == 0 {
		return r.upsert(ctx, namespace, key, value)
	}

	var result models.KVItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.KVItem
		err := tx.Where("namespace = ? AND item_key = ?", namespace, key).First(&current).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrVersionMismatch
		case err != nil:
			return err
		}

		if current.Version != expectedVersion {
			return ErrVersionMismatch
		}
		current.Value = value
		current.Version++
		result = current
		return tx.Save(&result).Error
	})
	if err != nil {
		return nil, err
	}
	return &KVItem{Key: result.Key, Value: result.Value, Version: result.Version, UpdatedAt: result.UpdatedAt}, nil
}

// upsert 无条件写入，首次写入的并发冲突由 ON CONFLICT 合并
func (r *GormKVRepository) upsert(ctx context.Context, namespace, key, value string) (*KVItem, error) {
	var result models.KVItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item := models.KVItem{Namespace: namespace, Key: key, Value: value, Version: 1}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "namespace"}, {Name: "item_key"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"value":      value,
				"version":    gorm.Expr("version + 1"),
				"updated_at": time.Now(),
			}),
		}).Create(&item).Error
		if err != nil {
			return err
		}
		return tx.Where("namespace = ? AND item_key = ?", namespace, key).First(&result).Error
	})
	if err != nil {
		return nil, err
	}
	return &KVItem{Key: result.Key, Value: result.Value, Version: result.Version, UpdatedAt: result.UpdatedAt}, nil
}

// Delete 删除键
func (r *GormKVRepository) Delete(ctx context.Context, namespace, key string) error {
	return r.db.WithContext(ctx).Where("namespace = ? AND item_key = ?", namespace, key).Delete(&models.KVItem{}).Error
}

// Clear 清空命名空间
func (r *GormKVRepository) Clear(ctx context.Context, namespace string) error {
	return r.db.WithContext(ctx).Where("namespace = ?", namespace).Delete(&models.KVItem{}).Error
}
