package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"

	"pocket-chat-server/internal/config"
	"pocket-chat-server/internal/model"
)

// AllowedPaths 允许转发的上游子路径
var AllowedPaths = map[string]bool{
	"responses":        true,
	"chat/completions": true,
}

// HTTPDoer 发送 HTTP 请求
// *http.Client 满足这个接口，测试中替换为记录调用的假实现
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// EndpointResolver 根据ID解析上游端点
type EndpointResolver interface {
	Resolve(ctx context.Context, id int64) (*model.Endpoint, error)
}

// NewHTTPClient 创建共享的上游 HTTP 客户端
// 进程启动时创建一次，所有转发请求共用同一个连接池
func NewHTTPClient(cfg config.GatewayConfig) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.MaxIdleConns > 0 {
		transport.MaxIdleConns = cfg.MaxIdleConns
		transport.MaxIdleConnsPerHost = cfg.MaxIdleConns
	}
	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport,
	}
}

// GatewayService 上游请求转发
// 不重试、不缓存，请求体和响应体都按字节原样传递
type GatewayService struct {
	resolver EndpointResolver
	client   HTTPDoer
}

// NewGatewayService 创建 GatewayService 实例
func NewGatewayService(resolver EndpointResolver, client HTTPDoer) *GatewayService {
	return &GatewayService{
		resolver: resolver,
		client:   client,
	}
}

// ForwardResult 上游响应
type ForwardResult struct {
	Status int
	Body   []byte
}

// Forward 把请求转发到端点的 /v1/{subPath}
// 端点ID非法、子路径不在白名单或端点不存在时，不会发起任何网络请求
// 参数:
//   - ctx: 请求上下文，调用方断开时上游请求随之取消
//   - rawEndpointID: 查询参数中的 endpoint_id
//   - subPath: "responses" 或 "chat/completions"
//   - body: 原始请求体
//
// 返回:
//   - *ForwardResult: 上游的状态码和响应体，包括 4xx/5xx
//   - error: ErrValidation / ErrNotFound / ErrUpstreamTimeout / ErrUpstreamUnavailable
func (s *GatewayService) Forward(ctx context.Context, rawEndpointID, subPath string, body []byte) (*ForwardResult, error) {
	id, err := ParseID(rawEndpointID)
	if err != nil {
		return nil, err
	}
	if !AllowedPaths[subPath] {
		return nil, validationError("unsupported path")
	}

	endpoint, err := s.resolver.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	target := strings.TrimRight(endpoint.BaseURL, "/") + "/v1/" + subPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Kind: ErrUpstreamUnavailable, Message: err.Error(), Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+endpoint.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, upstreamError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, upstreamError(err)
	}

	return &ForwardResult{Status: resp.StatusCode, Body: respBody}, nil
}

// upstreamError 区分超时和其他传输错误
func upstreamError(err error) error {
	if isTimeout(err) {
		return &Error{Kind: ErrUpstreamTimeout, Message: "Upstream request timed out", Err: err}
	}
	return &Error{Kind: ErrUpstreamUnavailable, Message: err.Error(), Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Close 关闭共享连接池中的空闲连接
// 进程退出时调用一次
func (s *GatewayService) Close() {
	if c, ok := s.client.(interface{ CloseIdleConnections() }); ok {
		c.CloseIdleConnections()
	}
}
