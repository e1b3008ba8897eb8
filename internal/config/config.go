package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ProviderConfig 保存单个翻译提供商的连接配置
type ProviderConfig struct {
	Model       string  `mapstructure:"model"`
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Timeout     int     `mapstructure:"timeout"` // 请求超时（秒）
}

// Config 保存翻译器的所有配置
type Config struct {
	SourceLang string `mapstructure:"source_lang"` // 留空则按文本内容自动判断
	TargetLang string `mapstructure:"target_lang"` // 留空则按源语言取默认对

	Provider  string                    `mapstructure:"provider"`
	Model     string                    `mapstructure:"model"`
	APIKey    string                    `mapstructure:"api_key"`
	BaseURL   string                    `mapstructure:"base_url"`
	Providers map[string]ProviderConfig `mapstructure:"providers"` // 按提供商名细化的配置

	MaxBatchLength      int    `mapstructure:"max_batch_length"`      // 单批正文的最大字符数
	GuardDelimiter      string `mapstructure:"guard_delimiter"`       // 术语保护定界符
	PreserveFormat      bool   `mapstructure:"preserve_format"`       // 输出时还原段落格式
	Concurrency         int    `mapstructure:"concurrency"`           // 并行翻译请求数
	MaxRetries          int    `mapstructure:"max_retries"`           // 最大重试次数
	RequestTimeout      int    `mapstructure:"request_timeout"`       // 请求超时时间（秒）
	PostProcessMarkdown bool   `mapstructure:"post_process_markdown"` // 翻译后规范化Markdown排版

	UseCache  bool   `mapstructure:"use_cache"`
	CacheDir  string `mapstructure:"cache_dir"`
	RedisAddr string `mapstructure:"redis_addr"` // 非空时用Redis替代文件缓存

	PermanentDict   string   `mapstructure:"permanent_dict"`   // 永久词典文件路径
	OverrideDict    string   `mapstructure:"override_dict"`    // 覆盖词典文件路径
	PredefinedDicts []string `mapstructure:"predefined_dicts"` // 启动时导入的预定义词典

	Debug   bool `mapstructure:"debug"`
	Verbose bool `mapstructure:"verbose"` // 详细模式，显示翻译进度细节
}

// LoadConfig 从文件加载配置
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// 设置默认值
	setDefaults(v)

	// 如果配置路径已指定，则直接使用
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// 查找家目录中的配置文件
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}

		v.AddConfigPath(home)
		v.AddConfigPath(".")
		v.SetConfigName(".dict-translator")
		v.SetConfigType("yaml")
	}

	// 读取环境变量
	v.AutomaticEnv()
	v.SetEnvPrefix("TRANSLATOR")

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		// 如果找不到配置文件，则使用默认值
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// 设置缓存目录（如果未设置）
	if config.CacheDir == "" {
		config.CacheDir = getDefaultCacheDir()
	}

	// 词典默认放在数据目录下，文件缺失时按空词典装载
	if config.PermanentDict == "" {
		config.PermanentDict = filepath.Join(defaultDataDir(), "permanent.json")
	}
	if config.OverrideDict == "" {
		config.OverrideDict = filepath.Join(defaultDataDir(), "override.json")
	}

	return &config, nil
}

// SaveConfig 将配置保存到文件
func SaveConfig(config *Config, configPath string) error {
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		configPath = filepath.Join(home, ".dict-translator.yaml")
	}

	v := viper.New()
	v.SetConfigFile(configPath)

	if err := v.MergeConfigMap(structToMap(config)); err != nil {
		return err
	}

	// 创建父目录（如果不存在）
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	return v.WriteConfig()
}

// NewDefaultConfig 创建一个新的默认配置
func NewDefaultConfig() *Config {
	return &Config{
		Provider:       "deepseek",
		MaxBatchLength: 2000,
		GuardDelimiter: "***",
		PreserveFormat: true,
		Concurrency:    4,
		MaxRetries:     3,
		RequestTimeout: 300,
		UseCache:       true,
		CacheDir:       getDefaultCacheDir(),
		PermanentDict:  filepath.Join(defaultDataDir(), "permanent.json"),
		OverrideDict:   filepath.Join(defaultDataDir(), "override.json"),
	}
}

// Validate 校验配置的关键字段
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("provider must be specified")
	}
	if c.MaxBatchLength <= 0 {
		return fmt.Errorf("max_batch_length must be positive, got %d", c.MaxBatchLength)
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", c.Concurrency)
	}
	if c.GuardDelimiter == "" {
		return fmt.Errorf("guard_delimiter must not be empty")
	}
	return nil
}

// ProviderSettings 返回指定提供商的细化配置，顶层字段优先生效
func (c *Config) ProviderSettings(name string) ProviderConfig {
	pc := c.Providers[name]
	if c.Model != "" {
		pc.Model = c.Model
	}
	if c.APIKey != "" {
		pc.APIKey = c.APIKey
	}
	if c.BaseURL != "" {
		pc.BaseURL = c.BaseURL
	}
	if pc.Timeout == 0 {
		pc.Timeout = c.RequestTimeout
	}
	return pc
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("source_lang", "")
	v.SetDefault("target_lang", "")
	v.SetDefault("provider", "deepseek")
	v.SetDefault("model", "")
	v.SetDefault("api_key", "")
	v.SetDefault("base_url", "")
	v.SetDefault("max_batch_length", 2000)
	v.SetDefault("guard_delimiter", "***")
	v.SetDefault("preserve_format", true)
	v.SetDefault("concurrency", 4)
	v.SetDefault("max_retries", 3)
	v.SetDefault("request_timeout", 300)
	v.SetDefault("post_process_markdown", false)
	v.SetDefault("use_cache", true)
	v.SetDefault("redis_addr", "")
	v.SetDefault("debug", false)
	v.SetDefault("verbose", false)
}

func structToMap(config *Config) map[string]interface{} {
	return map[string]interface{}{
		"source_lang":           config.SourceLang,
		"target_lang":           config.TargetLang,
		"provider":              config.Provider,
		"model":                 config.Model,
		"api_key":               config.APIKey,
		"base_url":              config.BaseURL,
		"providers":             config.Providers,
		"max_batch_length":      config.MaxBatchLength,
		"guard_delimiter":       config.GuardDelimiter,
		"preserve_format":       config.PreserveFormat,
		"concurrency":           config.Concurrency,
		"max_retries":           config.MaxRetries,
		"request_timeout":       config.RequestTimeout,
		"post_process_markdown": config.PostProcessMarkdown,
		"use_cache":             config.UseCache,
		"cache_dir":             config.CacheDir,
		"redis_addr":            config.RedisAddr,
		"permanent_dict":        config.PermanentDict,
		"override_dict":         config.OverrideDict,
		"predefined_dicts":      config.PredefinedDicts,
		"debug":                 config.Debug,
		"verbose":               config.Verbose,
	}
}

func getDefaultCacheDir() string {
	// 优先使用系统缓存目录
	cacheDir, err := os.UserCacheDir()
	if err == nil {
		return filepath.Join(cacheDir, "dict-translator")
	}

	// 如果无法获取系统缓存目录，使用用户主目录
	homeDir, err := os.UserHomeDir()
	if err == nil {
		return filepath.Join(homeDir, ".dict-translator", "cache")
	}

	// 最后的兜底方案
	return "./dict-translator-cache"
}

// defaultDataDir 词典等持久数据的默认目录
func defaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err == nil {
		return filepath.Join(homeDir, ".dict-translator")
	}
	return "./dict-translator-data"
}
