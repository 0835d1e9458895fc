package dto

// CreateToolEndpointRequest 创建工具覆盖配置
type CreateToolEndpointRequest struct {
	Name          string `json:"name" binding:"required,tool_name"`
	Path          string `json:"path"`
	ImprovePath   string `json:"improve_path"`
	Timeout       int    `json:"timeout" binding:"min=0"`
	RetryAttempts int    `json:"retry_attempts" binding:"min=0,max=10"`
	Description   string `json:"description"`
	IsActive      bool   `json:"is_active"`
}

// UpdateToolEndpointRequest 更新工具覆盖配置
type UpdateToolEndpointRequest struct {
	Path          *string `json:"path"`
	ImprovePath   *string `json:"improve_path"`
	Timeout       *int    `json:"timeout" binding:"omitempty,min=0"`
	RetryAttempts *int    `json:"retry_attempts" binding:"omitempty,min=0,max=10"`
	Description   *string `json:"description"`
	IsActive      *bool   `json:"is_active"`
}

// ToolEndpointResponse 工具覆盖配置
type ToolEndpointResponse struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	Path          string `json:"path"`
	ImprovePath   string `json:"improve_path"`
	Timeout       int    `json:"timeout"`
	RetryAttempts int    `json:"retry_attempts"`
	Description   string `json:"description"`
	IsActive      bool   `json:"is_active"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// ToolInfo 工具描述
type ToolInfo struct {
	Name          string `json:"name"`
	Title         string `json:"title"`
	Kind          string `json:"kind"`
	Path          string `json:"path"`
	RetryAttempts int    `json:"retry_attempts"`
}
