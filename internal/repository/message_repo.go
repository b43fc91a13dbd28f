package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pocket-chat-server/internal/model"
)

// MessageRepository 消息数据访问层
// 负责消息和消息图片相关的所有数据库操作
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建 MessageRepository 实例
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// NextSortOrder 计算会话中下一条消息的序号
// 没有消息时返回 0；删除消息后不会重新编号，所以序号可能有空洞
// 参数:
//   - ctx: 上下文
//   - conversationID: 会话ID
//
// 返回:
//   - int64: MAX(sort_order) + 1
//   - error: 数据库错误
func (r *MessageRepository) NextSortOrder(ctx context.Context, conversationID int64) (int64, error) {
	var next int64
	err := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Select("COALESCE(MAX(sort_order), -1) + 1").
		Where("conversation_id = ?", conversationID).
		Scan(&next).Error
	return next, err
}

// Create 创建新消息
// 只写 messages 表，图片通过 CreateImages 单独写入
func (r *MessageRepository) Create(ctx context.Context, message *model.Message) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(message).Error
}

// CreateImages 批量写入消息图片
// 写入顺序就是读取顺序
func (r *MessageRepository) CreateImages(ctx context.Context, images []model.MessageImage) error {
	if len(images) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(&images).Error
}

// ListByConversation 获取会话的所有消息，按 sort_order 正序
func (r *MessageRepository) ListByConversation(ctx context.Context, conversationID int64) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("sort_order ASC").
		Find(&messages).Error
	return messages, err
}

// ListImages 获取一批消息的图片
// 参数:
//   - ctx: 上下文
//   - messageIDs: 消息ID列表
//
// 返回:
//   - map[int64][]string: 消息ID到 data URL 列表的映射，每个列表按插入顺序排列
//   - error: 数据库错误
func (r *MessageRepository) ListImages(ctx context.Context, messageIDs []int64) (map[int64][]string, error) {
	result := make(map[int64][]string)
	if len(messageIDs) == 0 {
		return result, nil
	}

	var images []model.MessageImage
	err := r.db.WithContext(ctx).
		Where("message_id IN ?", messageIDs).
		Order("id ASC").
		Find(&images).Error
	if err != nil {
		return nil, err
	}

	for _, img := range images {
		result[img.MessageID] = append(result[img.MessageID], img.DataURL)
	}
	return result, nil
}

// Delete 删除单条消息及其图片
// 不会调整其他消息的 sort_order；消息不存在时返回 nil
func (r *MessageRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id = ?", id).Delete(&model.MessageImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Message{}, id).Error
	})
}
