// Package response 提供统一的 HTTP 响应格式
// 成功时直接返回数据本身，失败时返回 {"error": "...", "code": ...}
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody 错误响应结构
// error: 简短的错误描述，可直接展示
// code: 业务状态码
type ErrorBody struct {
	Error string `json:"error"` // 错误描述
	Code  int    `json:"code"`  // 业务状态码
}

// 业务状态码定义
const (
	CodeBadRequest          = 1000 // 请求参数错误
	CodeNotFound            = 1003 // 资源不存在
	CodeInternalError       = 1004 // 服务器内部错误
	CodeBodyTooLarge        = 1005 // 请求体过大
	CodeUpstreamUnavailable = 1501 // 上游不可达
	CodeUpstreamTimeout     = 1502 // 上游超时
)

// Success 返回 200 和数据
// 参数:
//   - c: Gin 上下文
//   - data: 响应数据，可以是任意类型
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created 返回 201 和新建的记录
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// OK 返回 {"ok": true}
// 用于删除、修改等不需要返回数据的操作
func OK(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Raw 原样写出 JSON 字节
// 用于转发上游响应，状态码和响应体都不做修改
func Raw(c *gin.Context, status int, body []byte) {
	c.Data(status, "application/json", body)
}

// Error 返回错误响应
// 参数:
//   - c: Gin 上下文
//   - httpCode: HTTP 状态码
//   - bizCode: 业务状态码
//   - message: 错误信息
func Error(c *gin.Context, httpCode, bizCode int, message string) {
	c.AbortWithStatusJSON(httpCode, ErrorBody{
		Error: message,
		Code:  bizCode,
	})
}

// BadRequest 返回 400 错误（请求参数错误）
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, CodeBadRequest, message)
}

// NotFound 返回 404 错误（资源不存在）
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, CodeNotFound, message)
}

// InternalError 返回 500 错误（服务器内部错误）
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, CodeInternalError, message)
}

// BadGateway 返回 502 错误（上游不可达）
func BadGateway(c *gin.Context, message string) {
	Error(c, http.StatusBadGateway, CodeUpstreamUnavailable, message)
}

// GatewayTimeout 返回 504 错误（上游超时）
func GatewayTimeout(c *gin.Context, message string) {
	Error(c, http.StatusGatewayTimeout, CodeUpstreamTimeout, message)
}

// TooLarge 返回 413 错误（请求体过大）
func TooLarge(c *gin.Context, message string) {
	Error(c, http.StatusRequestEntityTooLarge, CodeBodyTooLarge, message)
}
