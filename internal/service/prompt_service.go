package service

import (
	"context"
	"strings"
	"time"

	"pocket-chat-server/internal/model"
	"pocket-chat-server/internal/repository"
)

// PromptService 系统提示词库服务
type PromptService struct {
	prompts *repository.PromptRepository
	now     func() time.Time
}

// NewPromptService 创建 PromptService 实例
func NewPromptService(prompts *repository.PromptRepository) *PromptService {
	return &PromptService{
		prompts: prompts,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// PromptResponse 提示词库条目
type PromptResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

// List 获取全部提示词，按名称排序
func (s *PromptService) List(ctx context.Context) ([]PromptResponse, error) {
	prompts, err := s.prompts.List(ctx)
	if err != nil {
		return nil, persistenceError(err)
	}
	result := make([]PromptResponse, 0, len(prompts))
	for i := range prompts {
		result = append(result, *toPromptResponse(&prompts[i]))
	}
	return result, nil
}

// Create 新增提示词
// name 和 text 去掉首尾空白后都不能为空
func (s *PromptService) Create(ctx context.Context, name, text string) (*PromptResponse, error) {
	name = strings.TrimSpace(name)
	text = strings.TrimSpace(text)
	if name == "" || text == "" {
		return nil, validationError("name and text required")
	}

	prompt := &model.SystemPrompt{
		Name:      name,
		Text:      text,
		CreatedAt: model.NewTimestamp(s.now()),
	}
	if err := s.prompts.Create(ctx, prompt); err != nil {
		return nil, persistenceError(err)
	}
	return toPromptResponse(prompt), nil
}

// Delete 删除提示词，不存在时同样返回成功
func (s *PromptService) Delete(ctx context.Context, id int64) error {
	return persistenceError(s.prompts.Delete(ctx, id))
}

func toPromptResponse(p *model.SystemPrompt) *PromptResponse {
	return &PromptResponse{
		ID:        p.ID,
		Name:      p.Name,
		Text:      p.Text,
		CreatedAt: formatTime(p.CreatedAt),
	}
}
