package providers

import (
	"context"
	"net/http"
	"time"
)

// BaseConfig 各提供商共用的基础配置
type BaseConfig struct {
	// API配置
	APIKey      string `json:"api_key,omitempty"`
	APIEndpoint string `json:"api_endpoint,omitempty"`
	Model       string `json:"model,omitempty"`

	// 生成参数
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`

	// 超时设置
	Timeout time.Duration `json:"timeout"`

	// 自定义头部
	Headers map[string]string `json:"headers,omitempty"`
}

// DefaultConfig 返回默认配置。
// 低温度保证译文稳定，超时取宽以容纳长批次。
func DefaultConfig() BaseConfig {
	return BaseConfig{
		Temperature: 0.1,
		MaxTokens:   4000,
		Timeout:     5 * time.Minute,
		Headers:     make(map[string]string),
	}
}

// Provider 翻译后端接口。
// Text 是经过术语保护的待译文本，Instructions 是随请求下发的翻译守则。
type Provider interface {
	// Name 返回提供商名称
	Name() string

	// Model 返回当前使用的模型名称
	Model() string

	// Translate 执行一次翻译调用
	Translate(ctx context.Context, req *Request) (*Response, error)
}

// Request 一次翻译请求
type Request struct {
	Text           string `json:"text"`
	Instructions   string `json:"instructions,omitempty"`
	SourceLanguage string `json:"source_language,omitempty"`
	TargetLanguage string `json:"target_language,omitempty"`
}

// Response 一次翻译响应
type Response struct {
	Text      string `json:"text"`
	Model     string `json:"model,omitempty"`
	TokensIn  int    `json:"tokens_in,omitempty"`
	TokensOut int    `json:"tokens_out,omitempty"`
}

// 错误代码常量
const (
	CodeRateLimit   = "rate_limit"
	CodeTimeout     = "timeout"
	CodeServerError = "server_error"
	CodeNetwork     = "network_error"
	CodeAuth        = "auth_error"
	CodeBadRequest  = "bad_request"
	CodeBadResponse = "bad_response"
)

// Error 提供商错误
type Error struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// IsRetryable 判断错误是否值得重试
func (e *Error) IsRetryable() bool {
	switch e.Code {
	case CodeRateLimit, CodeTimeout, CodeServerError, CodeNetwork:
		return true
	default:
		return false
	}
}

// NewError 创建提供商错误
func NewError(code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// ErrorFromStatus 将 HTTP 状态码归类为提供商错误
func ErrorFromStatus(status int, message string) *Error {
	var code string
	switch {
	case status == http.StatusTooManyRequests:
		code = CodeRateLimit
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		code = CodeTimeout
	case status >= 500:
		code = CodeServerError
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		code = CodeAuth
	default:
		code = CodeBadRequest
	}
	return &Error{
		Code:    code,
		Message: message,
		Details: map[string]interface{}{"status": status},
	}
}
