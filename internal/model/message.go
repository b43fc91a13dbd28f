// Package model 定义了与数据库表对应的数据结构
package model

// MessageRole 消息角色常量
// 角色是封闭集合，数据库层也有 CHECK 约束
const (
	MessageRoleUser      = "user"      // 用户消息
	MessageRoleAssistant = "assistant" // AI 助手响应
)

// IsValidRole 判断角色是否合法
func IsValidRole(role string) bool {
	return role == MessageRoleUser || role == MessageRoleAssistant
}

// Message 消息模型
// 对应数据库表 messages
// 存储会话中的每一轮对话
type Message struct {
	// ID 消息唯一标识，自增主键
	ID int64 `gorm:"primaryKey" json:"id"`

	// ConversationID 所属会话ID，外键关联 conversations.id
	ConversationID int64 `gorm:"not null;uniqueIndex:idx_messages_conversation_sort,priority:1" json:"conversation_id"`

	// Role 消息角色，只允许 user / assistant
	Role string `gorm:"size:20;not null;check:role IN ('user','assistant')" json:"role"`

	// Text 消息内容，可以是空字符串但不能为 NULL
	Text string `gorm:"not null" json:"text"`

	// SortOrder 会话内的排序位置
	// 从 0 开始，每次追加取当前最大值 + 1，删除后不重新编号
	SortOrder int64 `gorm:"not null;uniqueIndex:idx_messages_conversation_sort,priority:2" json:"sort_order"`

	// CreatedAt 消息创建时间
	CreatedAt Timestamp `gorm:"not null" json:"created_at"`

	// InputTokens / OutputTokens 本轮消耗的 token 数
	InputTokens  int64 `gorm:"not null;default:0" json:"input_tokens"`
	OutputTokens int64 `gorm:"not null;default:0" json:"output_tokens"`

	// Cost 本轮费用，未计费或未知时为 NULL
	Cost *float64 `json:"cost"`

	// Conversation 所属会话（多对一关系），删除会话时级联删除
	// 不声明反向的 has-many，否则 GORM 不会为这一侧生成外键约束
	Conversation *Conversation `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定表名
func (Message) TableName() string {
	return "messages"
}

// MessageImage 消息图片模型
// 对应数据库表 message_images
// 图片以 data URI 字符串存储，顺序以插入顺序为准
type MessageImage struct {
	ID        int64  `gorm:"primaryKey" json:"id"`
	MessageID int64  `gorm:"index;not null" json:"message_id"`
	DataURL   string `gorm:"not null" json:"data_url"`

	// Message 所属消息，删除消息时级联删除
	Message *Message `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定表名
func (MessageImage) TableName() string {
	return "message_images"
}
