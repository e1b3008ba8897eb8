package stats

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

// DocumentStats 单个文档的翻译统计
type DocumentStats struct {
	Path         string
	Format       string
	SourceLang   string
	TargetLang   string
	Paragraphs   int
	Characters   int
	Batches      int
	CacheHits    int
	GuardedTerms int
	TokensIn     int
	TokensOut    int
	Warnings     int
	Duration     time.Duration
}

// Report 一次运行的统计汇总
type Report struct {
	mu   sync.Mutex
	docs []DocumentStats
}

// NewReport 创建统计汇总
func NewReport() *Report {
	return &Report{}
}

// Add 记录一个文档的统计
func (r *Report) Add(doc DocumentStats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = append(r.docs, doc)
}

// Documents 返回已记录文档统计的快照
func (r *Report) Documents() []DocumentStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]DocumentStats, len(r.docs))
	copy(out, r.docs)
	return out
}

// Render 以表格形式输出统计汇总
func (r *Report) Render(w io.Writer) {
	docs := r.Documents()
	if len(docs) == 0 {
		return
	}

	title := color.New(color.FgCyan, color.Bold)
	title.Fprintln(w, "📊 Translation Summary")

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"File", "Lang", "Paras", "Batches", "Cache", "Terms", "Tokens", "Warns", "Duration"})

	var total DocumentStats
	for _, d := range docs {
		warns := strconv.Itoa(d.Warnings)
		if d.Warnings > 0 {
			warns = color.YellowString(warns)
		}
		tw.AppendRow(table.Row{
			filepath.Base(d.Path),
			d.SourceLang + "->" + d.TargetLang,
			d.Paragraphs,
			d.Batches,
			fmt.Sprintf("%d/%d", d.CacheHits, d.Batches),
			d.GuardedTerms,
			d.TokensIn + d.TokensOut,
			warns,
			d.Duration.Round(10 * time.Millisecond),
		})

		total.Paragraphs += d.Paragraphs
		total.Batches += d.Batches
		total.CacheHits += d.CacheHits
		total.GuardedTerms += d.GuardedTerms
		total.TokensIn += d.TokensIn
		total.TokensOut += d.TokensOut
		total.Warnings += d.Warnings
		total.Duration += d.Duration
	}

	if len(docs) > 1 {
		tw.AppendFooter(table.Row{
			"TOTAL", "",
			total.Paragraphs,
			total.Batches,
			fmt.Sprintf("%d/%d", total.CacheHits, total.Batches),
			total.GuardedTerms,
			total.TokensIn + total.TokensOut,
			total.Warnings,
			total.Duration.Round(10 * time.Millisecond),
		})
	}
	tw.Render()
}
