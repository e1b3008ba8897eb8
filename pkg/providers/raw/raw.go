package raw

import (
	"context"

	"github.com/nerdneilsfield/go-dict-translator/pkg/providers"
)

// Provider Raw 提供商实现（跳过翻译，直接返回原文）。
// 用于调试分段、术语标记和还原，不产生任何网络请求。
type Provider struct{}

var _ providers.Provider = (*Provider)(nil)

// New 创建新的 Raw 提供商
func New() *Provider {
	return &Provider{}
}

// Name 获取提供商名称
func (p *Provider) Name() string {
	return "raw"
}

// Model 获取当前模型名称
func (p *Provider) Model() string {
	return "raw"
}

// Translate 执行翻译（直接返回原文）
func (p *Provider) Translate(ctx context.Context, req *providers.Request) (*providers.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &providers.Response{
		Text:      req.Text,
		Model:     "raw",
		TokensIn:  0,
		TokensOut: 0,
	}, nil
}
