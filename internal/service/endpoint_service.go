package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"pocket-chat-server/internal/model"
	"pocket-chat-server/internal/repository"
)

// EndpointService 上游端点管理与解析
type EndpointService struct {
	endpoints *repository.EndpointRepository
	now       func() time.Time
}

// NewEndpointService 创建 EndpointService 实例
func NewEndpointService(endpoints *repository.EndpointRepository) *EndpointService {
	return &EndpointService{
		endpoints: endpoints,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// EndpointResponse 端点信息
// 注意: api_key 原样返回，调用方需要自行过滤
type EndpointResponse struct {
	ID                   int64   `json:"id"`
	Name                 string  `json:"name"`
	BaseURL              string  `json:"base_url"`
	APIKey               string  `json:"api_key"`
	CostPerMillionInput  float64 `json:"cost_per_million_input"`
	CostPerMillionOutput float64 `json:"cost_per_million_output"`
	CreatedAt            string  `json:"created_at"`
}

// CreateEndpointInput 新增端点的参数
type CreateEndpointInput struct {
	Name                 string  `json:"name"`
	BaseURL              string  `json:"base_url"`
	APIKey               string  `json:"api_key"`
	CostPerMillionInput  float64 `json:"cost_per_million_input"`
	CostPerMillionOutput float64 `json:"cost_per_million_output"`
}

// List 获取全部端点，按名称排序
func (s *EndpointService) List(ctx context.Context) ([]EndpointResponse, error) {
	endpoints, err := s.endpoints.List(ctx)
	if err != nil {
		return nil, persistenceError(err)
	}
	result := make([]EndpointResponse, 0, len(endpoints))
	for i := range endpoints {
		result = append(result, *toEndpointResponse(&endpoints[i]))
	}
	return result, nil
}

// Create 新增端点
// 参数:
//   - ctx: 上下文
//   - in: 端点配置，name 和 base_url 必填，价格不能为负
//
// 返回:
//   - *EndpointResponse: 保存后的端点
//   - error: 参数非法返回 ErrValidation
func (s *EndpointService) Create(ctx context.Context, in CreateEndpointInput) (*EndpointResponse, error) {
	name := strings.TrimSpace(in.Name)
	baseURL := strings.TrimSpace(in.BaseURL)
	if name == "" || baseURL == "" {
		return nil, validationError("name and base_url required")
	}
	if in.CostPerMillionInput < 0 || in.CostPerMillionOutput < 0 {
		return nil, validationError("costs must be non-negative")
	}

	endpoint := &model.Endpoint{
		Name:                 name,
		BaseURL:              baseURL,
		APIKey:               in.APIKey,
		CostPerMillionInput:  in.CostPerMillionInput,
		CostPerMillionOutput: in.CostPerMillionOutput,
		CreatedAt:            model.NewTimestamp(s.now()),
	}
	if err := s.endpoints.Create(ctx, endpoint); err != nil {
		return nil, persistenceError(err)
	}
	return toEndpointResponse(endpoint), nil
}

// Delete 删除端点，不存在时同样返回成功
func (s *EndpointService) Delete(ctx context.Context, id int64) error {
	return persistenceError(s.endpoints.Delete(ctx, id))
}

// ParseID 解析调用方传入的端点ID
// 缺失和格式错误是两种不同的校验错误
func ParseID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, validationError("endpoint_id required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, validationError("invalid endpoint_id")
	}
	return id, nil
}

// Resolve 根据ID获取端点
// 这是 Gateway 唯一使用的读取路径
// 参数:
//   - ctx: 上下文
//   - id: 端点ID
//
// 返回:
//   - *model.Endpoint: 端点配置
//   - error: 不存在返回 ErrNotFound
func (s *EndpointService) Resolve(ctx context.Context, id int64) (*model.Endpoint, error) {
	endpoint, err := s.endpoints.GetByID(ctx, id)
	if err != nil {
		return nil, persistenceError(err)
	}
	if endpoint == nil {
		return nil, notFoundError("endpoint not found")
	}
	return endpoint, nil
}

func toEndpointResponse(e *model.Endpoint) *EndpointResponse {
	return &EndpointResponse{
		ID:                   e.ID,
		Name:                 e.Name,
		BaseURL:              e.BaseURL,
		APIKey:               e.APIKey,
		CostPerMillionInput:  e.CostPerMillionInput,
		CostPerMillionOutput: e.CostPerMillionOutput,
		CreatedAt:            formatTime(e.CreatedAt),
	}
}
