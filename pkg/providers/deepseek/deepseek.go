package deepseek

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/nerdneilsfield/go-dict-translator/pkg/providers"
	openai "github.com/sashabaranov/go-openai"
)

// DefaultEndpoint DeepSeek 的 OpenAI 兼容接口地址
const DefaultEndpoint = "https://api.deepseek.com/v1"

// Config DeepSeek配置
type Config struct {
	providers.BaseConfig
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	cfg := Config{BaseConfig: providers.DefaultConfig()}
	cfg.Model = "deepseek-chat"
	cfg.APIEndpoint = DefaultEndpoint
	return cfg
}

// Provider DeepSeek提供商，走 OpenAI 兼容协议
type Provider struct {
	config Config
	client *openai.Client
}

var _ providers.Provider = (*Provider)(nil)

// New 创建新的DeepSeek提供商
func New(config Config) *Provider {
	if config.APIEndpoint == "" {
		config.APIEndpoint = DefaultEndpoint
	}
	if config.Timeout <= 0 {
		config.Timeout = providers.DefaultConfig().Timeout
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	// go-openai 的 API 路径以斜杠开头，去掉尾部斜杠避免双斜杠
	clientConfig.BaseURL = strings.TrimSuffix(config.APIEndpoint, "/")
	clientConfig.HTTPClient = &http.Client{Timeout: config.Timeout}

	return &Provider{
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
	}
}

// Name 获取提供商名称
func (p *Provider) Name() string {
	return "deepseek"
}

// Model 获取当前模型名称
func (p *Provider) Model() string {
	return p.config.Model
}

// Translate 执行翻译
func (p *Provider) Translate(ctx context.Context, req *providers.Request) (*providers.Response, error) {
	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleUser,
			Content: req.Text,
		},
	}
	if req.Instructions != "" {
		messages = append([]openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: req.Instructions,
			},
		}, messages...)
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       p.config.Model,
		Messages:    messages,
		Temperature: p.config.Temperature,
		Stream:      false,
	}
	if p.config.MaxTokens > 0 {
		chatReq.MaxTokens = p.config.MaxTokens
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, translateError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, providers.NewError(providers.CodeBadResponse, "deepseek returned no choices")
	}

	return &providers.Response{
		Text:      resp.Choices[0].Message.Content,
		Model:     resp.Model,
		TokensIn:  resp.Usage.PromptTokens,
		TokensOut: resp.Usage.CompletionTokens,
	}, nil
}

// translateError 把 go-openai 的错误映射到统一错误码
func translateError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return providers.ErrorFromStatus(apiErr.HTTPStatusCode, apiErr.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return providers.ErrorFromStatus(reqErr.HTTPStatusCode, reqErr.Error())
	}

	return providers.NewError(providers.CodeNetwork, err.Error())
}
