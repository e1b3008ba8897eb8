package factory

import (
	"fmt"
	"sort"

	"github.com/nerdneilsfield/go-dict-translator/pkg/providers"
	"github.com/nerdneilsfield/go-dict-translator/pkg/providers/deepseek"
	"github.com/nerdneilsfield/go-dict-translator/pkg/providers/ollama"
	"github.com/nerdneilsfield/go-dict-translator/pkg/providers/openai"
	"github.com/nerdneilsfield/go-dict-translator/pkg/providers/raw"
)

// builders 提供商名称到构造函数的映射
var builders = map[string]func(providers.BaseConfig) providers.Provider{
	"deepseek": createDeepSeek,
	"openai":   createOpenAI,
	"ollama":   createOllama,
	"raw":      createRaw,
	"none":     createRaw,
}

// New 根据名称和基础配置创建提供商
func New(name string, base providers.BaseConfig) (providers.Provider, error) {
	build, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("unsupported provider type: %s (available: %v)", name, Names())
	}
	return build(base), nil
}

// Names 列出支持的提供商名称
func Names() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func createDeepSeek(base providers.BaseConfig) providers.Provider {
	cfg := deepseek.DefaultConfig()
	cfg.BaseConfig = mergeBase(cfg.BaseConfig, base)
	return deepseek.New(cfg)
}

func createOpenAI(base providers.BaseConfig) providers.Provider {
	cfg := openai.DefaultConfig()
	cfg.BaseConfig = mergeBase(cfg.BaseConfig, base)
	return openai.New(cfg)
}

func createOllama(base providers.BaseConfig) providers.Provider {
	cfg := ollama.DefaultConfig()
	cfg.BaseConfig = mergeBase(cfg.BaseConfig, base)
	return ollama.New(cfg)
}

func createRaw(providers.BaseConfig) providers.Provider {
	return raw.New()
}

// mergeBase 用显式设置的字段覆盖默认值
func mergeBase(def, override providers.BaseConfig) providers.BaseConfig {
	if override.APIKey != "" {
		def.APIKey = override.APIKey
	}
	if override.APIEndpoint != "" {
		def.APIEndpoint = override.APIEndpoint
	}
	if override.Model != "" {
		def.Model = override.Model
	}
	if override.Temperature > 0 {
		def.Temperature = override.Temperature
	}
	if override.MaxTokens > 0 {
		def.MaxTokens = override.MaxTokens
	}
	if override.Timeout > 0 {
		def.Timeout = override.Timeout
	}
	if len(override.Headers) > 0 {
		def.Headers = override.Headers
	}
	return def
}
