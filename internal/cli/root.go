package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nerdneilsfield/go-dict-translator/internal/config"
	"github.com/nerdneilsfield/go-dict-translator/internal/document"
	"github.com/nerdneilsfield/go-dict-translator/internal/logger"
	"github.com/nerdneilsfield/go-dict-translator/internal/translator"
	"github.com/nerdneilsfield/go-dict-translator/pkg/providers/factory"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// 命令行标志变量
	cfgFile         string
	outputPath      string
	providerName    string
	modelName       string
	sourceLang      string
	targetLang      string
	maxBatchLength  int
	guardDelimiter  string
	preserveFormat  bool
	concurrency     int
	maxRetries      int
	useCache        bool
	cacheDir        string
	redisAddr       string
	permanentDict   string
	overrideDict    string
	predefinedDicts []string
	postProcessMD   bool
	debugMode       bool
	verboseMode     bool // 显示详细日志，同时关闭进度条
	listFormats     bool
	listProviders   bool
)

// NewRootCommand 创建根命令
func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dict-translator [flags] input_file...",
		Short: "dict-translator 是一个带术语保护的文档翻译工具",
		Long: `dict-translator 是一个带术语保护的文档翻译工具。
它把文档切分成段落并分批送往大模型翻译，词典中的术语在送出前
用定界符标记并替换为既定译文，翻译后再摘除定界符，保证专有名词、
人名、地名在整本书中保持一致。

支持的翻译提供商:
  - deepseek: DeepSeek 聊天模型
  - openai: OpenAI GPT 模型
  - ollama: Ollama 本地大语言模型
  - raw: 原样返回（调试用）
  - none: 禁用翻译`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			// 列表类标志不需要文件参数
			if listFormats || listProviders {
				return nil
			}
			if len(args) < 1 {
				return fmt.Errorf("requires at least 1 input file")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if listFormats {
				fmt.Fprintln(out, "支持的文件格式:")
				for _, f := range document.Formats() {
					fmt.Fprintf(out, "  - %s\n", f)
				}
				return nil
			}
			if listProviders {
				fmt.Fprintln(out, "支持的翻译提供商:")
				for _, p := range factory.Names() {
					fmt.Fprintf(out, "  - %s\n", p)
				}
				return nil
			}

			cfg, err := config.LoadConfig(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			updateConfigFromFlags(cmd, cfg)

			log := logger.NewLoggerWithVerbose(cfg.Debug, cfg.Verbose)
			defer func() {
				_ = log.Sync()
			}()

			co, err := translator.New(cfg, log)
			if err != nil {
				return err
			}

			// 多个输入文件时 -o 作为输出目录
			outDir := ""
			if outputPath != "" {
				if info, statErr := os.Stat(outputPath); len(args) > 1 || (statErr == nil && info.IsDir()) {
					outDir = outputPath
					if err := os.MkdirAll(outDir, 0o755); err != nil {
						return fmt.Errorf("create output dir: %w", err)
					}
				}
			}

			failed := 0
			for _, input := range args {
				output := resolveOutputPath(input, outputPath, outDir)
				if _, err := co.TranslateFile(cmd.Context(), input, output); err != nil {
					log.Error("文件翻译失败",
						zap.String("input", input), zap.Error(err))
					failed++
				}
			}

			co.Report().Render(out)

			if failed > 0 {
				return fmt.Errorf("%d of %d file(s) failed", failed, len(args))
			}
			return nil
		},
	}

	addGlobalFlags(rootCmd)

	rootCmd.AddCommand(NewDictCommand())

	return rootCmd
}

// addGlobalFlags 注册全局标志
func addGlobalFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件路径")
	rootCmd.PersistentFlags().StringVarP(&outputPath, "output", "o", "", "输出文件路径，多个输入时作为输出目录")
	rootCmd.PersistentFlags().StringVar(&providerName, "provider", "", "翻译提供商 (deepseek, openai, ollama, raw, none)")
	rootCmd.PersistentFlags().StringVar(&modelName, "model", "", "模型名称")
	rootCmd.PersistentFlags().StringVar(&sourceLang, "source", "", "源语言，留空按文字自动检测")
	rootCmd.PersistentFlags().StringVar(&targetLang, "target", "", "目标语言，留空按源语言推断")
	rootCmd.PersistentFlags().IntVar(&maxBatchLength, "max-batch-length", 2000, "单批最大字符数")
	rootCmd.PersistentFlags().StringVar(&guardDelimiter, "delimiter", "***", "术语保护定界符")
	rootCmd.PersistentFlags().BoolVar(&preserveFormat, "preserve-format", true, "保留文档格式信息")
	rootCmd.PersistentFlags().IntVar(&concurrency, "concurrency", 4, "并发翻译批次数")
	rootCmd.PersistentFlags().IntVar(&maxRetries, "retries", 3, "请求失败重试次数")
	rootCmd.PersistentFlags().BoolVar(&useCache, "cache", true, "是否使用翻译缓存")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "缓存目录路径")
	rootCmd.PersistentFlags().StringVar(&redisAddr, "redis", "", "Redis 地址，设置后改用 Redis 缓存")
	rootCmd.PersistentFlags().StringVar(&permanentDict, "permanent-dict", "", "永久词典文件路径")
	rootCmd.PersistentFlags().StringVar(&overrideDict, "override-dict", "", "覆盖词典文件路径")
	rootCmd.PersistentFlags().StringSliceVar(&predefinedDicts, "predefined", nil, "预置术语包路径，可重复指定")
	rootCmd.PersistentFlags().BoolVar(&postProcessMD, "post-process-markdown", false, "翻译后规范化Markdown输出")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "启用调试模式")
	rootCmd.PersistentFlags().BoolVarP(&verboseMode, "verbose", "v", false, "显示详细日志（包括翻译片段）")
	rootCmd.PersistentFlags().BoolVar(&listFormats, "list-formats", false, "列出支持的文件格式")
	rootCmd.PersistentFlags().BoolVar(&listProviders, "list-providers", false, "列出支持的翻译提供商")
}

// updateConfigFromFlags 用显式给出的命令行标志覆盖配置文件
func updateConfigFromFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("provider") {
		cfg.Provider = providerName
	}
	if cmd.Flags().Changed("model") {
		cfg.Model = modelName
	}
	if cmd.Flags().Changed("source") {
		cfg.SourceLang = sourceLang
	}
	if cmd.Flags().Changed("target") {
		cfg.TargetLang = targetLang
	}
	if cmd.Flags().Changed("max-batch-length") {
		cfg.MaxBatchLength = maxBatchLength
	}
	if cmd.Flags().Changed("delimiter") {
		cfg.GuardDelimiter = guardDelimiter
	}
	if cmd.Flags().Changed("preserve-format") {
		cfg.PreserveFormat = preserveFormat
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency = concurrency
	}
	if cmd.Flags().Changed("retries") {
		cfg.MaxRetries = maxRetries
	}
	if cmd.Flags().Changed("cache") {
		cfg.UseCache = useCache
	}
	if cmd.Flags().Changed("cache-dir") {
		cfg.CacheDir = cacheDir
	}
	if cmd.Flags().Changed("redis") {
		cfg.RedisAddr = redisAddr
	}
	if cmd.Flags().Changed("permanent-dict") {
		cfg.PermanentDict = permanentDict
	}
	if cmd.Flags().Changed("override-dict") {
		cfg.OverrideDict = overrideDict
	}
	if cmd.Flags().Changed("predefined") {
		cfg.PredefinedDicts = predefinedDicts
	}
	if cmd.Flags().Changed("post-process-markdown") {
		cfg.PostProcessMarkdown = postProcessMD
	}
	if cmd.Flags().Changed("debug") {
		cfg.Debug = debugMode
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = verboseMode
	}
}

// resolveOutputPath 计算单个输入文件的输出路径。
// 未指定输出时在原文件名的扩展名前插入 translated 标记。
func resolveOutputPath(input, output, outDir string) string {
	if outDir != "" {
		out := filepath.Join(outDir, filepath.Base(input))
		if filepath.Clean(out) == filepath.Clean(input) {
			out = filepath.Join(outDir, defaultOutputName(filepath.Base(input)))
		}
		return out
	}
	if output != "" {
		return output
	}
	return filepath.Join(filepath.Dir(input), defaultOutputName(filepath.Base(input)))
}

// defaultOutputName 默认输出文件名
func defaultOutputName(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + ".translated" + ext
}
