// Package model 定义了与数据库表对应的数据结构
package model

// DefaultConversationTitle 新会话的默认标题
// 自动命名规则依赖于标题仍然等于这个值
const DefaultConversationTitle = "New Chat"

// Conversation 会话模型
// 对应数据库表 conversations
// 一个会话包含按 sort_order 排列的多条消息
type Conversation struct {
	// ID 会话唯一标识，自增主键
	ID int64 `gorm:"primaryKey" json:"id"`

	// Title 会话标题，默认为 "New Chat"
	Title string `gorm:"not null" json:"title"`

	// SystemPrompt 会话的系统提示词
	// 从提示词库复制而来，不是引用
	SystemPrompt string `gorm:"not null" json:"system_prompt"`

	// CreatedAt 创建时间
	CreatedAt Timestamp `gorm:"not null" json:"created_at"`

	// UpdatedAt 最后活动时间
	// 追加消息或修改元数据时刷新，会话列表按此倒序
	UpdatedAt Timestamp `gorm:"not null;index" json:"updated_at"`
}

// TableName 指定表名
func (Conversation) TableName() string {
	return "conversations"
}
