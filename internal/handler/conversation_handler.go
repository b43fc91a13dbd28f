package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pocket-chat-server/internal/model"
	"pocket-chat-server/internal/service"
	"pocket-chat-server/pkg/response"
)

// ConversationHandler 会话和消息请求处理器
type ConversationHandler struct {
	conversationService *service.ConversationService
	log                 *zap.Logger
}

// NewConversationHandler 创建 ConversationHandler 实例
func NewConversationHandler(conversationService *service.ConversationService, log *zap.Logger) *ConversationHandler {
	return &ConversationHandler{
		conversationService: conversationService,
		log:                 log,
	}
}

// PatchConversationRequest 修改会话请求
// 字段缺失表示不修改
type PatchConversationRequest struct {
	Title        *string `json:"title"`
	SystemPrompt *string `json:"system_prompt"`
}

// CreateMessageRequest 追加消息请求
type CreateMessageRequest struct {
	Role         string   `json:"role"` // 缺省为 user
	Text         string   `json:"text"`
	Images       []string `json:"images"` // data URL 列表
	InputTokens  int64    `json:"input_tokens"`
	OutputTokens int64    `json:"output_tokens"`
	Cost         *float64 `json:"cost"`
}

// ListConversations 获取会话列表
// @Summary 获取会话列表
// @Tags 会话
// @Produce json
// @Success 200 {array} service.ConversationSummary
// @Router /api/conversations [get]
func (h *ConversationHandler) ListConversations(c *gin.Context) {
	convs, err := h.conversationService.ListConversations(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	response.Success(c, convs)
}

// CreateConversation 创建新会话
// @Summary 创建会话
// @Tags 会话
// @Produce json
// @Success 201 {object} service.ConversationResponse
// @Router /api/conversations [post]
func (h *ConversationHandler) CreateConversation(c *gin.Context) {
	conv, err := h.conversationService.CreateConversation(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	response.Created(c, conv)
}

// DeleteConversation 删除会话及其全部消息
// @Summary 删除会话
// @Tags 会话
// @Param id path int true "会话ID"
// @Success 200 {object} map[string]bool
// @Router /api/conversations/{id} [delete]
func (h *ConversationHandler) DeleteConversation(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.conversationService.Delete(c.Request.Context(), id); err != nil {
		writeError(c, h.log, err)
		return
	}
	response.OK(c)
}

// PatchConversation 修改会话标题和/或系统提示词
// @Summary 修改会话
// @Tags 会话
// @Accept json
// @Param id path int true "会话ID"
// @Param body body PatchConversationRequest true "要修改的字段"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} response.ErrorBody
// @Router /api/conversations/{id} [patch]
func (h *ConversationHandler) PatchConversation(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req PatchConversationRequest
	if !bindJSON(c, &req) {
		return
	}

	err := h.conversationService.Patch(c.Request.Context(), id, service.PatchConversationInput{
		Title:        req.Title,
		SystemPrompt: req.SystemPrompt,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	response.OK(c)
}

// ListMessages 获取会话的消息列表
// @Summary 获取消息列表
// @Tags 消息
// @Produce json
// @Param id path int true "会话ID"
// @Success 200 {array} service.MessageResponse
// @Router /api/conversations/{id}/messages [get]
func (h *ConversationHandler) ListMessages(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	msgs, err := h.conversationService.ListMessages(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	response.Success(c, msgs)
}

// CreateMessage 追加一条消息
// @Summary 追加消息
// @Tags 消息
// @Accept json
// @Produce json
// @Param id path int true "会话ID"
// @Param body body CreateMessageRequest true "消息内容"
// @Success 201 {object} service.MessageResponse
// @Router /api/conversations/{id}/messages [post]
func (h *ConversationHandler) CreateMessage(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req CreateMessageRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Role == "" {
		req.Role = model.MessageRoleUser
	}

	msg, err := h.conversationService.AppendMessage(c.Request.Context(), service.AppendMessageInput{
		ConversationID: id,
		Role:           req.Role,
		Text:           req.Text,
		Images:         req.Images,
		InputTokens:    req.InputTokens,
		OutputTokens:   req.OutputTokens,
		Cost:           req.Cost,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	response.Created(c, msg)
}

// DeleteMessage 删除单条消息
// @Summary 删除消息
// @Tags 消息
// @Param id path int true "消息ID"
// @Success 200 {object} map[string]bool
// @Router /api/messages/{id} [delete]
func (h *ConversationHandler) DeleteMessage(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.conversationService.DeleteMessage(c.Request.Context(), id); err != nil {
		writeError(c, h.log, err)
		return
	}
	response.OK(c)
}
