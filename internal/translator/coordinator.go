package translator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nerdneilsfield/go-dict-translator/internal/config"
	"github.com/nerdneilsfield/go-dict-translator/internal/document"
	"github.com/nerdneilsfield/go-dict-translator/internal/progress"
	"github.com/nerdneilsfield/go-dict-translator/internal/stats"
	"github.com/nerdneilsfield/go-dict-translator/pkg/dictionary"
	"github.com/nerdneilsfield/go-dict-translator/pkg/providers"
	"github.com/nerdneilsfield/go-dict-translator/pkg/providers/factory"
	"github.com/nerdneilsfield/go-dict-translator/pkg/translation"
	"go.uber.org/zap"
)

// Coordinator 翻译协调器：装配提供商、词典与缓存，驱动文件翻译的全过程
type Coordinator struct {
	cfg      *config.Config
	provider providers.Provider
	dict     *dictionary.Store
	cache    translation.Cache
	report   *stats.Report
	logger   *zap.Logger
}

// New 创建翻译协调器
func New(cfg *config.Config, logger *zap.Logger) (*Coordinator, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ps := cfg.ProviderSettings(cfg.Provider)
	provider, err := factory.New(cfg.Provider, providers.BaseConfig{
		APIKey:      ps.APIKey,
		APIEndpoint: ps.BaseURL,
		Model:       ps.Model,
		Temperature: float32(ps.Temperature),
		MaxTokens:   ps.MaxTokens,
		Timeout:     time.Duration(ps.Timeout) * time.Second,
	})
	if err != nil {
		return nil, err
	}

	dict := dictionary.NewStore(cfg.PermanentDict, cfg.OverrideDict, logger)
	loadPredefined(dict, cfg, logger)

	return &Coordinator{
		cfg:      cfg,
		provider: provider,
		dict:     dict,
		cache:    newCache(cfg, logger),
		report:   stats.NewReport(),
		logger:   logger,
	}, nil
}

// Report 返回本次运行的统计汇总
func (c *Coordinator) Report() *stats.Report {
	return c.report
}

// TranslateFile 翻译单个文件并写出结果
func (c *Coordinator) TranslateFile(ctx context.Context, inputPath, outputPath string) (*stats.DocumentStats, error) {
	start := time.Now()

	reader, err := document.ForPath(inputPath)
	if err != nil {
		return nil, err
	}
	doc, err := reader.Read(inputPath)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	sourceText, translatable := translatableText(doc)
	source, target := ResolveLanguages(c.cfg.SourceLang, c.cfg.TargetLang, sourceText)

	c.logger.Info("开始翻译文件",
		zap.String("input", inputPath),
		zap.String("output", outputPath),
		zap.String("format", reader.Format()),
		zap.String("source", source),
		zap.String("target", target),
		zap.Int("paragraphs", len(doc.Paragraphs)),
		zap.Int("translatable", translatable))

	// 进度条只在安静模式下显示，详细日志会刷掉它
	showBar := !c.cfg.Verbose && !c.cfg.Debug

	var tracker *progress.Tracker
	defer func() {
		if tracker != nil {
			tracker.Done()
		}
	}()
	onProgress := func(completed, total int) {
		if tracker == nil {
			title := "翻译 " + progress.Preview(filepath.Base(inputPath), 30)
			tracker = progress.NewTracker(title, total, showBar)
		}
		tracker.SetCurrent(completed)
	}

	pipeline, err := c.buildPipeline(source, target, onProgress)
	if err != nil {
		return nil, err
	}

	res, err := pipeline.TranslateDocument(ctx, sourceText)
	if err != nil {
		return nil, fmt.Errorf("translate %s: %w", inputPath, err)
	}

	paragraphs, records, missing, extra := spliceTranslations(doc, res.Paragraphs)

	warnings := 0
	if missing > 0 || extra > 0 {
		warnings++
		c.logger.Warn("译文段落数与原文结构不一致，已按位置尽力对齐",
			zap.String("input", inputPath),
			zap.Int("missing", missing),
			zap.Int("extra", extra))
	}
	if res.DanglingDelimiters > 0 {
		warnings++
	}
	if res.NearIdentical {
		warnings++
	}

	outDoc := document.Reconstruct(records, paragraphs, c.cfg.PreserveFormat, c.logger)
	outDoc.FrontMatter = doc.FrontMatter

	writer := c.writerFor(outputPath, reader)
	if err := writer.Write(outputPath, outDoc); err != nil {
		return nil, fmt.Errorf("write document: %w", err)
	}

	if c.cfg.PostProcessMarkdown && writer.Format() == "markdown" {
		if err := document.NormalizeFile(outputPath, c.logger); err != nil {
			c.logger.Warn("Markdown规范化失败，保留原始输出",
				zap.String("output", outputPath), zap.Error(err))
			warnings++
		}
	}

	docStats := stats.DocumentStats{
		Path:         inputPath,
		Format:       reader.Format(),
		SourceLang:   source,
		TargetLang:   target,
		Paragraphs:   len(doc.Paragraphs),
		Characters:   utf8.RuneCountInString(sourceText),
		Batches:      res.BatchCount,
		CacheHits:    res.CacheHits,
		GuardedTerms: res.GuardedTerms,
		TokensIn:     res.TokensIn,
		TokensOut:    res.TokensOut,
		Warnings:     warnings,
		Duration:     time.Since(start),
	}
	c.report.Add(docStats)

	c.logger.Info("文件翻译完成",
		zap.String("run_id", res.RunID),
		zap.String("output", outputPath),
		zap.Int("batches", res.BatchCount),
		zap.Int("cache_hits", res.CacheHits),
		zap.Int("warnings", warnings),
		zap.Duration("duration", docStats.Duration))

	return &docStats, nil
}

// TranslateText 翻译一段文本，返回完整译文
func (c *Coordinator) TranslateText(ctx context.Context, text string) (string, error) {
	source, target := ResolveLanguages(c.cfg.SourceLang, c.cfg.TargetLang, text)

	pipeline, err := c.buildPipeline(source, target, nil)
	if err != nil {
		return "", err
	}

	res, err := pipeline.TranslateDocument(ctx, text)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// buildPipeline 按本次任务的语言对装配翻译管道
func (c *Coordinator) buildPipeline(source, target string, onProgress func(completed, total int)) (*translation.Pipeline, error) {
	opts := translation.DefaultOptions()
	opts.SourceLang = source
	opts.TargetLang = target
	opts.MaxBatchLength = c.cfg.MaxBatchLength
	opts.Delimiter = c.cfg.GuardDelimiter
	opts.Concurrency = c.cfg.Concurrency
	opts.Retry.MaxAttempts = c.cfg.MaxRetries
	opts.OnProgress = onProgress
	return translation.New(c.provider, c.dict, c.cache, opts, c.logger)
}

// writerFor 按输出路径的扩展名选择写出格式，扩展名未注册时沿用输入格式
func (c *Coordinator) writerFor(outputPath string, reader document.Handler) document.Handler {
	if w, err := document.ForPath(outputPath); err == nil {
		return w
	}
	return reader
}

// translatableText 拼出参与翻译的正文。原样段落（代码块、公式等）不进入请求。
func translatableText(doc *document.Document) (string, int) {
	parts := make([]string, 0, len(doc.Paragraphs))
	for i, para := range doc.Paragraphs {
		if i < len(doc.Records) && doc.Records[i].Verbatim {
			continue
		}
		parts = append(parts, para)
	}
	return strings.Join(parts, "\n\n"), len(parts)
}

// spliceTranslations 把译文段落填回文档骨架：原样段落保留原文，其余按顺序
// 换成译文。返回缺少和多出的译文段落数；缺时保留原文，多时追加到末尾。
func spliceTranslations(doc *document.Document, translated []string) ([]string, []document.FormatRecord, int, int) {
	out := make([]string, 0, len(doc.Paragraphs))
	records := make([]document.FormatRecord, 0, len(doc.Paragraphs))
	next, missing := 0, 0

	for i, para := range doc.Paragraphs {
		var rec document.FormatRecord
		if i < len(doc.Records) {
			rec = doc.Records[i]
		}

		if !rec.Verbatim {
			if next < len(translated) {
				para = translated[next]
				next++
			} else {
				missing++
			}
		}
		out = append(out, para)
		records = append(records, rec)
	}

	extra := len(translated) - next
	for ; next < len(translated); next++ {
		out = append(out, translated[next])
		records = append(records, document.FormatRecord{})
	}
	return out, records, missing, extra
}

// loadPredefined 把配置指定的预置术语包并入内存中的永久层。
// 语言对不匹配的包跳过。这里不落盘，持久导入走 dict import 命令。
func loadPredefined(dict *dictionary.Store, cfg *config.Config, logger *zap.Logger) {
	for _, path := range cfg.PredefinedDicts {
		pack, err := dictionary.LoadPredefined(path)
		if err != nil {
			logger.Warn("预置术语包加载失败，跳过",
				zap.String("path", path), zap.Error(err))
			continue
		}
		if cfg.SourceLang != "" && pack.SourceLang != cfg.SourceLang {
			logger.Debug("预置术语包源语言不匹配，跳过",
				zap.String("path", path), zap.String("pack", pack.SourceLang))
			continue
		}
		if cfg.TargetLang != "" && pack.TargetLang != cfg.TargetLang {
			logger.Debug("预置术语包目标语言不匹配，跳过",
				zap.String("path", path), zap.String("pack", pack.TargetLang))
			continue
		}

		added := dict.Preload(pack, dictionary.TierPermanent)
		logger.Info("预置术语包已载入",
			zap.String("path", path), zap.Int("terms", added))
	}
}

// newCache 按配置选择缓存后端，Redis不可用时退回文件缓存
func newCache(cfg *config.Config, logger *zap.Logger) translation.Cache {
	if !cfg.UseCache {
		return nil
	}

	if cfg.RedisAddr != "" {
		url := cfg.RedisAddr
		if !strings.Contains(url, "://") {
			url = "redis://" + url
		}
		cache, err := translation.NewRedisCache(translation.RedisConfig{URL: url})
		if err == nil {
			return cache
		}
		logger.Warn("Redis缓存不可用，退回文件缓存",
			zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}

	return translation.NewFileCache(cfg.CacheDir)
}
