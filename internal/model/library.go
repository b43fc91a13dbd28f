// Package model 定义了与数据库表对应的数据结构
package model

// SystemPrompt 系统提示词库条目
// 对应数据库表 system_prompts
// 与会话相互独立，删除条目不会影响已有会话
type SystemPrompt struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;index" json:"name"`
	Text      string    `gorm:"not null" json:"text"`
	CreatedAt Timestamp `gorm:"not null" json:"created_at"`
}

// TableName 指定表名
func (SystemPrompt) TableName() string {
	return "system_prompts"
}

// Endpoint 上游 API 端点配置
// 对应数据库表 endpoints
type Endpoint struct {
	// ID 端点唯一标识，自增主键
	ID int64 `gorm:"primaryKey" json:"id"`

	// Name 端点名称，列表按名称排序
	Name string `gorm:"size:255;not null;index" json:"name"`

	// BaseURL 上游地址，例如 "https://api.openai.com"
	// 转发时去掉末尾的 "/" 再拼接 /v1/{path}
	BaseURL string `gorm:"not null" json:"base_url"`

	// APIKey 上游密钥
	// 注意: 列表接口会原样返回此字段
	APIKey string `gorm:"not null" json:"api_key"`

	// CostPerMillionInput / CostPerMillionOutput 每百万 token 的价格
	// 只用于客户端估算费用
	CostPerMillionInput  float64 `gorm:"not null;default:0" json:"cost_per_million_input"`
	CostPerMillionOutput float64 `gorm:"not null;default:0" json:"cost_per_million_output"`

	// CreatedAt 创建时间
	CreatedAt Timestamp `gorm:"not null" json:"created_at"`
}

// TableName 指定表名
func (Endpoint) TableName() string {
	return "endpoints"
}
