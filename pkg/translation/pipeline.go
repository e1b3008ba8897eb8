package translation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-dict-translator/pkg/dictionary"
	"github.com/nerdneilsfield/go-dict-translator/pkg/providers"
	"github.com/nerdneilsfield/go-dict-translator/pkg/providers/retry"
	"github.com/nerdneilsfield/go-dict-translator/pkg/termguard"
	"github.com/nerdneilsfield/go-dict-translator/pkg/textsplit"
)

// 判定“译文与原文几乎相同”的编辑距离占比上限
const identicalRatio = 0.1

// 编辑距离检查的文本长度上限，超过则只做精确比较
const identicalCheckMaxRunes = 20000

// Options 翻译管道配置
type Options struct {
	// SourceLang 源语言
	SourceLang string
	// TargetLang 目标语言
	TargetLang string
	// MaxBatchLength 单批正文的最大字符数
	MaxBatchLength int
	// Delimiter 术语保护定界符
	Delimiter string
	// Concurrency 并发翻译的批次数
	Concurrency int
	// Retry 重试策略
	Retry retry.Config
	// ExtraInstructions 追加到翻译守则的自定义指令
	ExtraInstructions []string
	// OnProgress 每完成一批调用一次
	OnProgress func(completed, total int)
}

// DefaultOptions 返回默认配置
func DefaultOptions() Options {
	return Options{
		SourceLang:     "Japanese",
		TargetLang:     "Chinese",
		MaxBatchLength: textsplit.DefaultMaxBatchLength,
		Delimiter:      termguard.DefaultDelimiter,
		Concurrency:    4,
		Retry:          retry.DefaultConfig(),
	}
}

// Result 一次文档翻译的结果
type Result struct {
	// RunID 本次翻译的短标识，日志追踪用
	RunID string
	// Text 完整译文
	Text string
	// Paragraphs 译文段落
	Paragraphs []string
	// SourceParagraphs 原文段落
	SourceParagraphs []string
	// BatchCount 批次数
	BatchCount int
	// CacheHits 缓存命中批次数
	CacheHits int
	// GuardedTerms 被保护的术语出现次数
	GuardedTerms int
	// DanglingDelimiters 还原后残留的定界符数量
	DanglingDelimiters int
	// TokensIn 输入token总数
	TokensIn int
	// TokensOut 输出token总数
	TokensOut int
	// Duration 总耗时
	Duration time.Duration
	// NearIdentical 译文与原文几乎相同，模型可能未翻译
	NearIdentical bool
}

// Pipeline 术语保护翻译管道：
// 分段、组批、标记术语、并发翻译、还原术语、按序拼接。
type Pipeline struct {
	provider providers.Provider
	dict     *dictionary.Store
	cache    Cache
	guard    *termguard.Guard
	prompts  *PromptBuilder
	opts     Options
	logger   *zap.Logger
}

// New 创建翻译管道。
// MaxBatchLength 为负数时报错，为零时使用默认值。
func New(provider providers.Provider, dict *dictionary.Store, cache Cache, opts Options, logger *zap.Logger) (*Pipeline, error) {
	if provider == nil {
		return nil, errors.New("translation provider is required")
	}
	if opts.MaxBatchLength < 0 {
		return nil, fmt.Errorf("max batch length must be positive, got %d", opts.MaxBatchLength)
	}
	if opts.MaxBatchLength == 0 {
		opts.MaxBatchLength = textsplit.DefaultMaxBatchLength
	}
	if opts.Delimiter == "" {
		opts.Delimiter = termguard.DefaultDelimiter
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry = retry.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	prompts := NewPromptBuilder(opts.SourceLang, opts.TargetLang, opts.Delimiter)
	for _, instruction := range opts.ExtraInstructions {
		prompts.AddInstruction(instruction)
	}

	return &Pipeline{
		provider: provider,
		dict:     dict,
		cache:    cache,
		guard:    termguard.New(opts.Delimiter),
		prompts:  prompts,
		opts:     opts,
		logger:   logger,
	}, nil
}

// batchStats 单批的统计信息
type batchStats struct {
	cacheHit     bool
	guardedTerms int
	dangling     int
	tokensIn     int
	tokensOut    int
}

// TranslateDocument 翻译整个文档，批次并发执行但结果按原文顺序拼接。
// 任何一批重试耗尽即整体失败。
func (p *Pipeline) TranslateDocument(ctx context.Context, text string) (*Result, error) {
	start := time.Now()
	runID := uuid.New().String()[:8]

	blocks := textsplit.Segment(text)
	result := &Result{
		RunID:            runID,
		SourceParagraphs: textsplit.Contents(blocks),
	}
	if len(blocks) == 0 {
		result.Duration = time.Since(start)
		return result, nil
	}

	merged := map[string]string{}
	if p.dict != nil {
		merged = p.dict.Merged()
	}

	batches := textsplit.BatchBlocks(blocks, p.opts.MaxBatchLength)
	result.BatchCount = len(batches)

	p.logger.Info("开始翻译",
		zap.String("run_id", runID),
		zap.String("provider", p.provider.Name()),
		zap.String("model", p.provider.Model()),
		zap.Int("paragraphs", len(blocks)),
		zap.Int("batches", len(batches)),
		zap.Int("terms", len(merged)),
	)

	type batchResult struct {
		index int
		text  string
		stats batchStats
		err   error
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	resultChan := make(chan batchResult, len(batches))
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, p.opts.Concurrency)

	for i, batch := range batches {
		wg.Add(1)
		go func(idx int, b textsplit.Batch) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			if err := ctx.Err(); err != nil {
				resultChan <- batchResult{index: idx, err: err}
				return
			}

			text, stats, err := p.translateBatch(ctx, b, merged)
			if err != nil {
				err = fmt.Errorf("batch %d: %w", idx+1, err)
				// 一批失败后不再开始新的批次
				cancel()
			}
			resultChan <- batchResult{index: idx, text: text, stats: stats, err: err}
		}(i, batch)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	pieces := make([]string, len(batches))
	var firstErr, cancelErr error
	completed := 0

	for res := range resultChan {
		if res.err != nil {
			if errors.Is(res.err, context.Canceled) || errors.Is(res.err, context.DeadlineExceeded) {
				if cancelErr == nil {
					cancelErr = res.err
				}
			} else if firstErr == nil {
				firstErr = res.err
			}
			continue
		}

		pieces[res.index] = res.text
		completed++

		if res.stats.cacheHit {
			result.CacheHits++
		}
		result.GuardedTerms += res.stats.guardedTerms
		result.DanglingDelimiters += res.stats.dangling
		result.TokensIn += res.stats.tokensIn
		result.TokensOut += res.stats.tokensOut

		if p.opts.OnProgress != nil {
			p.opts.OnProgress(completed, len(batches))
		}
	}

	if firstErr == nil {
		firstErr = cancelErr
	}
	if firstErr != nil {
		p.logger.Error("翻译失败",
			zap.String("run_id", runID),
			zap.Int("completed", completed),
			zap.Int("batches", len(batches)),
			zap.Error(firstErr),
		)
		return nil, firstErr
	}

	full := strings.Join(pieces, "")
	result.Text = full
	result.Paragraphs = textsplit.Contents(textsplit.Segment(full))
	result.Duration = time.Since(start)

	if p.provider.Name() != "raw" && nearIdentical(text, full) {
		result.NearIdentical = true
		p.logger.Warn("译文与原文几乎相同，模型可能未执行翻译",
			zap.String("run_id", runID),
			zap.String("provider", p.provider.Name()),
		)
	}

	p.logger.Info("翻译完成",
		zap.String("run_id", runID),
		zap.Int("batches", len(batches)),
		zap.Int("cache_hits", result.CacheHits),
		zap.Int("guarded_terms", result.GuardedTerms),
		zap.Int("tokens_in", result.TokensIn),
		zap.Int("tokens_out", result.TokensOut),
		zap.Duration("duration", result.Duration),
	)

	return result, nil
}

// translateBatch 翻译单批。
// 批尾的段落分隔符不进入提示词，译毕原样接回，避免相邻批次的段落粘连。
func (p *Pipeline) translateBatch(ctx context.Context, batch textsplit.Batch, merged map[string]string) (string, batchStats, error) {
	var stats batchStats

	trailingSep := batch.Blocks[len(batch.Blocks)-1].TrailingSeparator
	body := strings.TrimSuffix(batch.Text(), trailingSep)

	guarded, replacements := p.guard.Mark(body, merged)
	stats.guardedTerms = len(replacements)

	var cacheKey string
	if p.cache != nil {
		cacheKey = GenerateCacheKey(CacheKey{
			Provider:   p.provider.Name(),
			Model:      p.provider.Model(),
			SourceLang: p.opts.SourceLang,
			TargetLang: p.opts.TargetLang,
			Text:       guarded,
		})
		if cached, ok := p.cache.Get(cacheKey); ok {
			stats.cacheHit = true
			return cached + trailingSep, stats, nil
		}
	}

	instructions := p.prompts.BuildInstructions()
	resp, err := retry.Do(ctx, p.opts.Retry, func(ctx context.Context) (*providers.Response, error) {
		return p.provider.Translate(ctx, &providers.Request{
			Text:           guarded,
			Instructions:   instructions,
			SourceLanguage: p.opts.SourceLang,
			TargetLanguage: p.opts.TargetLang,
		})
	})
	if err != nil {
		return "", stats, err
	}

	stats.tokensIn = resp.TokensIn
	stats.tokensOut = resp.TokensOut

	translated := ExtractTranslation(resp.Text)
	unmarked, dangling := p.guard.Unmark(translated)
	stats.dangling = dangling
	if dangling > 0 {
		p.logger.Warn("译文中残留未配对的定界符",
			zap.Int("count", dangling),
			zap.String("delimiter", p.opts.Delimiter),
		)
	}

	if p.cache != nil {
		if err := p.cache.Set(cacheKey, unmarked); err != nil {
			p.logger.Warn("写入缓存失败", zap.Error(err))
		}
	}

	return unmarked + trailingSep, stats, nil
}

// nearIdentical 判断译文是否与原文几乎相同
func nearIdentical(source, output string) bool {
	src := strings.TrimSpace(source)
	out := strings.TrimSpace(output)
	if src == "" || out == "" {
		return false
	}
	if src == out {
		return true
	}

	n := utf8.RuneCountInString(src)
	if n > identicalCheckMaxRunes {
		return false
	}

	distance := fuzzy.LevenshteinDistance(src, out)
	return float64(distance) <= identicalRatio*float64(n)
}
