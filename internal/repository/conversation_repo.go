package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"pocket-chat-server/internal/model"
)

// ConversationRepository 会话数据访问层
// 负责会话相关的所有数据库操作
type ConversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository 创建 ConversationRepository 实例
func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Create 创建新会话
// 参数:
//   - ctx: 上下文
//   - conv: 会话对象，ID 会被自动填充
//
// 返回:
//   - error: 数据库错误
func (r *ConversationRepository) Create(ctx context.Context, conv *model.Conversation) error {
	return r.db.WithContext(ctx).Create(conv).Error
}

// GetByID 根据 ID 获取会话
// 参数:
//   - ctx: 上下文
//   - id: 会话ID
//
// 返回:
//   - *model.Conversation: 会话对象，未找到返回 nil
//   - error: 数据库错误
func (r *ConversationRepository) GetByID(ctx context.Context, id int64) (*model.Conversation, error) {
	var conv model.Conversation
	err := r.db.WithContext(ctx).First(&conv, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conv, nil
}

// List 获取所有会话
// 按最后活动时间倒序，时间相同时 ID 大的在前
func (r *ConversationRepository) List(ctx context.Context) ([]model.Conversation, error) {
	var convs []model.Conversation
	err := r.db.WithContext(ctx).
		Order("updated_at DESC").
		Order("id DESC").
		Find(&convs).Error
	return convs, err
}

// Update 更新会话的部分字段
// 会话不存在时什么也不做，不返回错误
// 参数:
//   - ctx: 上下文
//   - id: 会话ID
//   - fields: 列名到新值的映射，调用方负责带上 updated_at
//
// 返回:
//   - error: 数据库错误
func (r *ConversationRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&model.Conversation{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// Delete 删除会话及其全部消息和图片
// 子记录先删，整个过程在一个事务中完成，不依赖 SQLite 的 foreign_keys 设置
// 会话不存在时同样返回 nil
func (r *ConversationRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		messageIDs := tx.Model(&model.Message{}).Select("id").Where("conversation_id = ?", id)
		if err := tx.Where("message_id IN (?)", messageIDs).Delete(&model.MessageImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("conversation_id = ?", id).Delete(&model.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Conversation{}, id).Error
	})
}
