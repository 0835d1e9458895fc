package models

import (
	"time"
)

// ToolEndpoint 工具后端地址覆盖配置
type ToolEndpoint struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	Name          string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Path          string    `gorm:"size:255;not null" json:"path"`
	ImprovePath   string    `gorm:"size:255" json:"improve_path"`
	Timeout       int       `json:"timeout"`
	RetryAttempts int       `json:"retry_attempts"`
	Description   string    `gorm:"type:text" json:"description"`
	IsActive      bool      `gorm:"not null" json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName 指定表名
func (ToolEndpoint) TableName() string {
	return "tool_endpoints"
}
