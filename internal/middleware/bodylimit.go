package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"pocket-chat-server/pkg/response"
)

// BodyLimitMiddleware 限制请求体大小
// Content-Length 已超限时直接返回 413；否则包一层 MaxBytesReader，
// 读取超限时由处理器通过 IsBodyTooLarge 判断
// 参数:
//   - maxBytes: 最大字节数，<= 0 表示不限制
func BodyLimitMiddleware(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			response.TooLarge(c, bodyTooLargeMessage(maxBytes))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// IsBodyTooLarge 判断读取请求体的错误是否因为超过大小限制
func IsBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func bodyTooLargeMessage(maxBytes int64) string {
	return fmt.Sprintf("request body exceeds %d bytes", maxBytes)
}
