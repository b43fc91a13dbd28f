package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"pocket-chat-server/internal/model"
)

// EndpointRepository 上游端点数据访问层
type EndpointRepository struct {
	db *gorm.DB
}

// NewEndpointRepository 创建 EndpointRepository 实例
func NewEndpointRepository(db *gorm.DB) *EndpointRepository {
	return &EndpointRepository{db: db}
}

// Create 新增端点
func (r *EndpointRepository) Create(ctx context.Context, endpoint *model.Endpoint) error {
	return r.db.WithContext(ctx).Create(endpoint).Error
}

// GetByID 根据 ID 获取端点
// 参数:
//   - ctx: 上下文
//   - id: 端点ID
//
// 返回:
//   - *model.Endpoint: 端点对象，未找到返回 nil
//   - error: 数据库错误
func (r *EndpointRepository) GetByID(ctx context.Context, id int64) (*model.Endpoint, error) {
	var endpoint model.Endpoint
	err := r.db.WithContext(ctx).First(&endpoint, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &endpoint, nil
}

// List 获取全部端点，按名称排序
func (r *EndpointRepository) List(ctx context.Context) ([]model.Endpoint, error) {
	var endpoints []model.Endpoint
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Order("id ASC").
		Find(&endpoints).Error
	return endpoints, err
}

// Delete 删除端点
func (r *EndpointRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Endpoint{}, id).Error
}
