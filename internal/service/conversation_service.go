package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pocket-chat-server/internal/model"
	"pocket-chat-server/internal/repository"
	"pocket-chat-server/pkg/util"
)

// autoTitleMaxRunes 自动命名时标题的最大字符数
const autoTitleMaxRunes = 50

// Locker 按键互斥
// 进程内用 lock.Local，多实例部署时用 cache.RedisCache
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// appendLockKey 会话追加消息锁的键
func appendLockKey(conversationID int64) string {
	return fmt.Sprintf("conversation:%d:append", conversationID)
}

// ConversationService 会话服务
// 负责消息排序、自动命名和时间戳维护
type ConversationService struct {
	store  *repository.Store
	locker Locker
	now    func() time.Time
}

// NewConversationService 创建 ConversationService 实例
func NewConversationService(store *repository.Store, locker Locker) *ConversationService {
	return &ConversationService{
		store:  store,
		locker: locker,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SetClock 替换时钟，测试用
func (s *ConversationService) SetClock(now func() time.Time) {
	s.now = now
}

// ConversationResponse 会话完整信息
type ConversationResponse struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	SystemPrompt string `json:"system_prompt"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// ConversationSummary 会话列表项
type ConversationSummary struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	SystemPrompt string `json:"system_prompt"`
	UpdatedAt    string `json:"updated_at"`
}

// MessageResponse 消息及其图片
type MessageResponse struct {
	ID             int64    `json:"id"`
	ConversationID int64    `json:"conversation_id"`
	Role           string   `json:"role"`
	Text           string   `json:"text"`
	Images         []string `json:"images"` // 没有图片时为空数组，不是 null
	SortOrder      int64    `json:"sort_order"`
	InputTokens    int64    `json:"input_tokens"`
	OutputTokens   int64    `json:"output_tokens"`
	Cost           *float64 `json:"cost"`
	CreatedAt      string   `json:"created_at"`
}

// AppendMessageInput 追加消息的参数
type AppendMessageInput struct {
	ConversationID int64
	Role           string
	Text           string
	Images         []string
	InputTokens    int64
	OutputTokens   int64
	Cost           *float64
}

// PatchConversationInput 修改会话的参数
// nil 表示不修改该字段
type PatchConversationInput struct {
	Title        *string
	SystemPrompt *string
}

// CreateConversation 创建新会话
// 标题为 "New Chat"，系统提示词为空
func (s *ConversationService) CreateConversation(ctx context.Context) (*ConversationResponse, error) {
	now := model.NewTimestamp(s.now())
	conv := &model.Conversation{
		Title:     model.DefaultConversationTitle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Conversations.Create(ctx, conv); err != nil {
		return nil, persistenceError(err)
	}
	return toConversationResponse(conv), nil
}

// ListConversations 获取会话列表，最近活动的在前
func (s *ConversationService) ListConversations(ctx context.Context) ([]ConversationSummary, error) {
	convs, err := s.store.Conversations.List(ctx)
	if err != nil {
		return nil, persistenceError(err)
	}

	result := make([]ConversationSummary, 0, len(convs))
	for _, c := range convs {
		result = append(result, ConversationSummary{
			ID:           c.ID,
			Title:        c.Title,
			SystemPrompt: c.SystemPrompt,
			UpdatedAt:    formatTime(c.UpdatedAt),
		})
	}
	return result, nil
}

// Rename 重命名会话
// 标题去掉首尾空白后不能为空
func (s *ConversationService) Rename(ctx context.Context, id int64, title string) error {
	return s.Patch(ctx, id, PatchConversationInput{Title: &title})
}

// SetSystemPrompt 设置会话的系统提示词
// 允许空字符串，表示清空
func (s *ConversationService) SetSystemPrompt(ctx context.Context, id int64, text string) error {
	return s.Patch(ctx, id, PatchConversationInput{SystemPrompt: &text})
}

// Patch 修改会话标题和/或系统提示词
// 先校验再写入，两项修改在同一个事务中生效；会话不存在时什么也不做
// 参数:
//   - ctx: 上下文
//   - id: 会话ID
//   - in: 要修改的字段
//
// 返回:
//   - error: 标题为空时返回 ErrValidation
func (s *ConversationService) Patch(ctx context.Context, id int64, in PatchConversationInput) error {
	fields := make(map[string]interface{})
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return validationError("title required")
		}
		fields["title"] = title
	}
	if in.SystemPrompt != nil {
		fields["system_prompt"] = *in.SystemPrompt
	}
	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = model.NewTimestamp(s.now())

	return persistenceError(s.store.Conversations.Update(ctx, id, fields))
}

// Delete 删除会话及其消息和图片
// 会话不存在时同样返回成功
func (s *ConversationService) Delete(ctx context.Context, id int64) error {
	return persistenceError(s.store.Conversations.Delete(ctx, id))
}

// AppendMessage 向会话追加一条消息
// 同一会话的追加操作被串行化，保证 sort_order 不重复
// 参数:
//   - ctx: 上下文
//   - in: 消息内容
//
// 返回:
//   - *MessageResponse: 保存后的消息，包含分配的 ID 和 sort_order
//   - error: 参数非法返回 ErrValidation，会话不存在返回 ErrNotFound
func (s *ConversationService) AppendMessage(ctx context.Context, in AppendMessageInput) (*MessageResponse, error) {
	if !model.IsValidRole(in.Role) {
		return nil, validationError("role must be user or assistant")
	}
	if in.InputTokens < 0 || in.OutputTokens < 0 {
		return nil, validationError("token counts must be non-negative")
	}
	if in.Cost != nil && *in.Cost < 0 {
		return nil, validationError("cost must be non-negative")
	}

	unlock, err := s.locker.Lock(ctx, appendLockKey(in.ConversationID))
	if err != nil {
		return nil, persistenceError(fmt.Errorf("acquire append lock: %w", err))
	}
	defer unlock()

	var msg model.Message
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		conv, err := tx.Conversations.GetByID(ctx, in.ConversationID)
		if err != nil {
			return err
		}
		if conv == nil {
			return notFoundError("conversation not found")
		}

		next, err := tx.Messages.NextSortOrder(ctx, conv.ID)
		if err != nil {
			return err
		}

		now := model.NewTimestamp(s.now())
		msg = model.Message{
			ConversationID: conv.ID,
			Role:           in.Role,
			Text:           in.Text,
			SortOrder:      next,
			CreatedAt:      now,
			InputTokens:    in.InputTokens,
			OutputTokens:   in.OutputTokens,
			Cost:           in.Cost,
		}
		if err := tx.Messages.Create(ctx, &msg); err != nil {
			return err
		}

		images := make([]model.MessageImage, 0, len(in.Images))
		for _, url := range in.Images {
			images = append(images, model.MessageImage{MessageID: msg.ID, DataURL: url})
		}
		if err := tx.Messages.CreateImages(ctx, images); err != nil {
			return err
		}

		fields := map[string]interface{}{"updated_at": now}
		if title, ok := autoTitle(in.Role, next, conv.Title, in.Text); ok {
			fields["title"] = title
		}
		return tx.Conversations.Update(ctx, conv.ID, fields)
	})
	if err != nil {
		return nil, persistenceError(err)
	}

	return toMessageResponse(&msg, in.Images), nil
}

// autoTitle 判断第一条用户消息是否触发自动命名
// 只看当前序号和当前标题，不记录"是否命名过"
func autoTitle(role string, sortOrder int64, currentTitle, text string) (string, bool) {
	if role != model.MessageRoleUser || sortOrder != 0 || currentTitle != model.DefaultConversationTitle {
		return "", false
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", false
	}
	return util.TruncateRunes(trimmed, autoTitleMaxRunes), true
}

// ListMessages 获取会话的全部消息，按 sort_order 正序
// 会话不存在时返回空列表
func (s *ConversationService) ListMessages(ctx context.Context, conversationID int64) ([]MessageResponse, error) {
	messages, err := s.store.Messages.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, persistenceError(err)
	}

	ids := make([]int64, 0, len(messages))
	for _, m := range messages {
		ids = append(ids, m.ID)
	}
	images, err := s.store.Messages.ListImages(ctx, ids)
	if err != nil {
		return nil, persistenceError(err)
	}

	result := make([]MessageResponse, 0, len(messages))
	for i := range messages {
		result = append(result, *toMessageResponse(&messages[i], images[messages[i].ID]))
	}
	return result, nil
}

// DeleteMessage 删除单条消息及其图片
// 其余消息的 sort_order 保持不变；消息不存在时同样返回成功
func (s *ConversationService) DeleteMessage(ctx context.Context, id int64) error {
	return persistenceError(s.store.Messages.Delete(ctx, id))
}

func toConversationResponse(c *model.Conversation) *ConversationResponse {
	return &ConversationResponse{
		ID:           c.ID,
		Title:        c.Title,
		SystemPrompt: c.SystemPrompt,
		CreatedAt:    formatTime(c.CreatedAt),
		UpdatedAt:    formatTime(c.UpdatedAt),
	}
}

func toMessageResponse(m *model.Message, images []string) *MessageResponse {
	if images == nil {
		images = []string{}
	}
	return &MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Role:           m.Role,
		Text:           m.Text,
		Images:         images,
		SortOrder:      m.SortOrder,
		InputTokens:    m.InputTokens,
		OutputTokens:   m.OutputTokens,
		Cost:           m.Cost,
		CreatedAt:      formatTime(m.CreatedAt),
	}
}

// formatTime 统一输出 UTC 的 RFC3339 时间
func formatTime(t model.Timestamp) string {
	return t.UTC().Format(time.RFC3339)
}
