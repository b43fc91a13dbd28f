package repository

import (
	"context"

	"gorm.io/gorm"

	"pocket-chat-server/internal/model"
)

// PromptRepository 提示词库数据访问层
type PromptRepository struct {
	db *gorm.DB
}

// NewPromptRepository 创建 PromptRepository 实例
func NewPromptRepository(db *gorm.DB) *PromptRepository {
	return &PromptRepository{db: db}
}

// Create 新增一条提示词
func (r *PromptRepository) Create(ctx context.Context, prompt *model.SystemPrompt) error {
	return r.db.WithContext(ctx).Create(prompt).Error
}

// List 获取全部提示词，按名称排序
func (r *PromptRepository) List(ctx context.Context) ([]model.SystemPrompt, error) {
	var prompts []model.SystemPrompt
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Order("id ASC").
		Find(&prompts).Error
	return prompts, err
}

// Delete 删除提示词
// 已经复制到会话里的提示词不受影响
func (r *PromptRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.SystemPrompt{}, id).Error
}
