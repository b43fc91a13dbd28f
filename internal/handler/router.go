package handler

import (
	"github.com/gin-gonic/gin"

	"pocket-chat-server/pkg/response"
)

// Handlers 路由需要的全部处理器
type Handlers struct {
	Health       *HealthHandler
	Conversation *ConversationHandler
	Prompt       *PromptHandler
	Endpoint     *EndpointHandler
	Gateway      *GatewayHandler
}

// RegisterRoutes 注册所有路由
// 转发路由只注册白名单中的两个子路径，其他子路径由 NoRoute 返回 404
func RegisterRoutes(r *gin.Engine, h Handlers) {
	r.GET("/health", h.Health.Health)

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "not found")
	})

	api := r.Group("/api")
	{
		conversations := api.Group("/conversations")
		{
			conversations.GET("", h.Conversation.ListConversations)
			conversations.POST("", h.Conversation.CreateConversation)
			conversations.DELETE("/:id", h.Conversation.DeleteConversation)
			conversations.PATCH("/:id", h.Conversation.PatchConversation)
			conversations.GET("/:id/messages", h.Conversation.ListMessages)
			conversations.POST("/:id/messages", h.Conversation.CreateMessage)
		}

		api.DELETE("/messages/:id", h.Conversation.DeleteMessage)

		prompts := api.Group("/prompts")
		{
			prompts.GET("", h.Prompt.ListPrompts)
			prompts.POST("", h.Prompt.CreatePrompt)
			prompts.DELETE("/:id", h.Prompt.DeletePrompt)
		}

		endpoints := api.Group("/endpoints")
		{
			endpoints.GET("", h.Endpoint.ListEndpoints)
			endpoints.POST("", h.Endpoint.CreateEndpoint)
			endpoints.DELETE("/:id", h.Endpoint.DeleteEndpoint)
		}

		v1 := api.Group("/v1")
		{
			v1.POST("/responses", h.Gateway.Forward("responses"))
			v1.POST("/chat/completions", h.Gateway.Forward("chat/completions"))
		}
	}
}
