package progress

import (
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/pterm/pterm"
)

// Tracker 单个文档的翻译进度条，按批次粒度推进
type Tracker struct {
	bar *pterm.ProgressbarPrinter
}

// NewTracker 启动进度条。enabled为false或total为0时返回空跟踪器，
// 所有方法退化为空操作。
func NewTracker(title string, total int, enabled bool) *Tracker {
	if !enabled || total <= 0 {
		return &Tracker{}
	}

	bar, err := pterm.DefaultProgressbar.
		WithTotal(total).
		WithTitle(title).
		WithWriter(os.Stderr).
		Start()
	if err != nil {
		return &Tracker{}
	}
	return &Tracker{bar: bar}
}

// SetCurrent 把进度推进到指定的完成批次数
func (t *Tracker) SetCurrent(completed int) {
	if t.bar == nil {
		return
	}
	if delta := completed - t.bar.Current; delta > 0 {
		t.bar.Add(delta)
	}
}

// Done 结束并清理进度条
func (t *Tracker) Done() {
	if t.bar == nil {
		return
	}
	_, _ = t.bar.Stop()
}

// Preview 把文本压成单行并按显示宽度截断，中日韩全角字符按两格计算
func Preview(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = strings.Join(strings.Fields(s), " ")
	return runewidth.Truncate(s, width, "…")
}
