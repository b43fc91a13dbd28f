// Package handler 提供 HTTP 请求处理器
package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pocket-chat-server/internal/middleware"
	"pocket-chat-server/internal/service"
	"pocket-chat-server/pkg/response"
)

// writeError 把业务错误映射为 HTTP 响应
// 400 / 404 / 504 / 502 返回业务错误描述，其余一律 500 "internal error"，底层原因只写日志
func writeError(c *gin.Context, log *zap.Logger, err error) {
	msg := service.PublicMessage(err)
	switch {
	case errors.Is(err, service.ErrValidation):
		response.BadRequest(c, msg)
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, msg)
	case errors.Is(err, service.ErrUpstreamTimeout):
		_ = c.Error(err)
		response.GatewayTimeout(c, msg)
	case errors.Is(err, service.ErrUpstreamUnavailable):
		_ = c.Error(err)
		response.BadGateway(c, msg)
	default:
		log.Error("request failed",
			zap.String("request_id", c.GetString(middleware.RequestIDKey)),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		response.InternalError(c, "internal error")
	}
}

// parseIDParam 解析路径参数 :id
// 不是整数时直接写 400 并返回 false
func parseIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}

// bindJSON 解析 JSON 请求体
// 请求体超过大小限制时返回 413，其他解析错误返回 400
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		if middleware.IsBodyTooLarge(err) {
			response.TooLarge(c, "request body too large")
			return false
		}
		response.BadRequest(c, "invalid request body")
		return false
	}
	return true
}
