package models

import (
	"studio-go/internal/config"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 全局数据库实例
var DB *gorm.DB

// InitDB 初始化数据库
func InitDB(cfg *config.Config) error {
	db, err := OpenDB(cfg.Database.Path)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// OpenDB 打开数据库并迁移表结构
func OpenDB(path string) (*gorm.DB, error) {
	// 配置GORM
	// 多个请求并发写同一个库，等待锁而不是直接报 database is locked
	dsn := path + "?_busy_timeout=5000&_journal_mode=WAL"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent), // 使用静默模式
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// sqlite 只允许一个写者
	sqlDB.SetMaxOpenConns(1)

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// AutoMigrate 自动迁移数据库表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&AdminUser{},
		&ToolEndpoint{},
		&GenerationTask{},
		&Artifact{},
		&ChatMessage{},
		&Unit{},
		&KVItem{},
	)
}

// GetDB 获取数据库实例
func GetDB() *gorm.DB {
	return DB
}
