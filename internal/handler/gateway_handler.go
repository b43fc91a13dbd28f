package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"pocket-chat-server/internal/middleware"
	"pocket-chat-server/internal/service"
	"pocket-chat-server/pkg/response"
)

// GatewayHandler 上游转发请求处理器
type GatewayHandler struct {
	gatewayService *service.GatewayService
	log            *zap.Logger
}

// NewGatewayHandler 创建 GatewayHandler 实例
func NewGatewayHandler(gatewayService *service.GatewayService, log *zap.Logger) *GatewayHandler {
	return &GatewayHandler{gatewayService: gatewayService, log: log}
}

// Forward 返回转发到指定子路径的处理函数
// 请求体原样转发，上游响应的状态码和响应体原样返回
// 参数:
//   - subPath: "responses" 或 "chat/completions"
func (h *GatewayHandler) Forward(subPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			if middleware.IsBodyTooLarge(err) {
				response.TooLarge(c, "request body too large")
				return
			}
			response.BadRequest(c, "failed to read request body")
			return
		}

		endpointID := c.Query("endpoint_id")
		// 只读取 model 字段用于日志，请求体本身不做解析
		modelName := gjson.GetBytes(body, "model").String()

		result, err := h.gatewayService.Forward(c.Request.Context(), endpointID, subPath, body)
		if err != nil {
			if errors.Is(err, service.ErrUpstreamTimeout) || errors.Is(err, service.ErrUpstreamUnavailable) {
				h.log.Warn("upstream call failed",
					zap.String("request_id", c.GetString(middleware.RequestIDKey)),
					zap.String("endpoint_id", endpointID),
					zap.String("sub_path", subPath),
					zap.String("model", modelName),
					zap.Error(err),
				)
			}
			writeError(c, h.log, err)
			return
		}

		h.log.Debug("forwarded",
			zap.String("request_id", c.GetString(middleware.RequestIDKey)),
			zap.String("endpoint_id", endpointID),
			zap.String("sub_path", subPath),
			zap.String("model", modelName),
			zap.Int("upstream_status", result.Status),
			zap.Int("bytes", len(result.Body)),
		)
		response.Raw(c, result.Status, result.Body)
	}
}
