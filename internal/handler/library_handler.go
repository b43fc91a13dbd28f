package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pocket-chat-server/internal/service"
	"pocket-chat-server/pkg/response"
)

// PromptHandler 系统提示词库请求处理器
type PromptHandler struct {
	promptService *service.PromptService
	log           *zap.Logger
}

// NewPromptHandler 创建 PromptHandler 实例
func NewPromptHandler(promptService *service.PromptService, log *zap.Logger) *PromptHandler {
	return &PromptHandler{promptService: promptService, log: log}
}

// CreatePromptRequest 新增提示词请求
type CreatePromptRequest struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// ListPrompts 获取提示词列表
func (h *PromptHandler) ListPrompts(c *gin.Context) {
	prompts, err := h.promptService.List(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	response.Success(c, prompts)
}

// CreatePrompt 新增提示词
func (h *PromptHandler) CreatePrompt(c *gin.Context) {
	var req CreatePromptRequest
	if !bindJSON(c, &req) {
		return
	}
	prompt, err := h.promptService.Create(c.Request.Context(), req.Name, req.Text)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	response.Created(c, prompt)
}

// DeletePrompt 删除提示词
func (h *PromptHandler) DeletePrompt(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.promptService.Delete(c.Request.Context(), id); err != nil {
		writeError(c, h.log, err)
		return
	}
	response.OK(c)
}

// EndpointHandler 上游端点请求处理器
type EndpointHandler struct {
	endpointService *service.EndpointService
	log             *zap.Logger
}

// NewEndpointHandler 创建 EndpointHandler 实例
func NewEndpointHandler(endpointService *service.EndpointService, log *zap.Logger) *EndpointHandler {
	return &EndpointHandler{endpointService: endpointService, log: log}
}

// ListEndpoints 获取端点列表
// 注意: 返回结果包含完整的 api_key
func (h *EndpointHandler) ListEndpoints(c *gin.Context) {
	endpoints, err := h.endpointService.List(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	response.Success(c, endpoints)
}

// CreateEndpoint 新增端点
func (h *EndpointHandler) CreateEndpoint(c *gin.Context) {
	var req service.CreateEndpointInput
	if !bindJSON(c, &req) {
		return
	}
	endpoint, err := h.endpointService.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	response.Created(c, endpoint)
}

// DeleteEndpoint 删除端点
func (h *EndpointHandler) DeleteEndpoint(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.endpointService.Delete(c.Request.Context(), id); err != nil {
		writeError(c, h.log, err)
		return
	}
	response.OK(c)
}
