package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"pocket-chat-server/pkg/response"
)

// Pinger 可以检查连接是否可用的依赖
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler 健康检查
type HealthHandler struct {
	db    Pinger
	redis Pinger
}

// NewHealthHandler 创建 HealthHandler 实例
// 参数:
//   - db: 数据库，通常是 *repository.Store
//   - redis: 未启用 Redis 时传 nil
func NewHealthHandler(db, redis Pinger) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

// Health 检查数据库连接，启用 Redis 时同时检查 Redis
func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.db.Ping(ctx); err != nil {
		response.Error(c, http.StatusServiceUnavailable, response.CodeInternalError, "database unavailable")
		return
	}
	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			response.Error(c, http.StatusServiceUnavailable, response.CodeInternalError, "redis unavailable")
			return
		}
	}
	response.Success(c, gin.H{"status": "ok"})
}
