package service

import (
	"context"
	"errors"
	"strings"

	"studio-go/internal/repository"

	"github.com/sirupsen/logrus"
)

// ErrInvalidKey 键名无效
var ErrInvalidKey = errors.New("键名无效")

// StorageService 用户键值存储，命名空间为邮箱
type StorageService struct {
	kv     repository.KVRepository
	logger *logrus.Logger
}

// NewStorageService 创建键值存储服务
func NewStorageService(kv repository.KVRepository, logger *logrus.Logger) *StorageService {
	return &StorageService{kv: kv, logger: logger}
}

func validKey(key string) bool {
	key = strings.TrimSpace(key)
	return key != "" && len(key) <= 200
}

// Get 读取键
func (s *StorageService) Get(ctx context.Context, email, key string) (*repository.KVItem, error) {
	if !validKey(key) {
		return nil, ErrInvalidKey
	}
	return s.kv.Get(ctx, email, key)
}

// Set 写入键，expectedVersion 为0时无条件写入
func (s *StorageService) Set(ctx context.Context, email, key, value string, expectedVersion int64) (*repository.KVItem, error) {
	if !validKey(key) {
		return nil, ErrInvalidKey
	}
	item, err := s.kv.Set(ctx, email, key, value, expectedVersion)
	if err != nil {
		if !errors.Is(err, repository.ErrVersionMismatch) {
			s.logger.WithFields(logrus.Fields{"email": email, "key": key}).WithError(err).Error("[StorageSet] 写入失败")
		}
		return nil, err
	}
	return item, nil
}

// Delete 删除键
func (s *StorageService) Delete(ctx context.Context, email, key string) error {
	if !validKey(key) {
		return ErrInvalidKey
	}
	return s.kv.Delete(ctx, email, key)
}

// Clear 清空用户的全部键
func (s *StorageService) Clear(ctx context.Context, email string) error {
	if err := s.kv.Clear(ctx, email); err != nil {
		return err
	}
	s.logger.WithField("email", email).Info("[StorageClear] 已清空")
	return nil
}
