package models

import (
	"time"
)

// KVItem 按邮箱隔离的键值数据
type KVItem struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	Namespace string    `gorm:"size:255;not null;uniqueIndex:idx_kv_ns_key" json:"namespace"`
	Key       string    `gorm:"column:item_key;size:255;not null;uniqueIndex:idx_kv_ns_key" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	Version   int64     `gorm:"not null;default:0" json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (KVItem) TableName() string {
	return "kv_items"
}
