package termguard

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// DefaultDelimiter 默认的术语保护定界符，三字符标记不易出现在译文中
const DefaultDelimiter = "***"

// Replacement 记录一次术语替换。
// Start/End 是原文（未保护文本）中的字符偏移，互不重叠且按升序排列；
// 它们只用于审计，不要求在翻译往返后仍然有效。
type Replacement struct {
	Start       int
	End         int
	Term        string
	Translation string
}

// Guard 术语保护器：把命中词条替换为其既定译文并用定界符包裹，
// 翻译完成后再剥掉定界符，使词条译文原样保留。
type Guard struct {
	delimiter string
	unmarkRE  *regexp2.Regexp
}

// New 创建术语保护器，delimiter 为空时使用 DefaultDelimiter
func New(delimiter string) *Guard {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	quoted := regexp.QuoteMeta(delimiter)
	return &Guard{
		delimiter: delimiter,
		unmarkRE:  regexp2.MustCompile("(?s)"+quoted+"(.*?)"+quoted, 0),
	}
}

// Delimiter 返回当前使用的定界符
func (g *Guard) Delimiter() string {
	return g.delimiter
}

// edit 已发生替换在当前重写文本中的字节区间及其字符数变化
type edit struct {
	rwStart   int
	rwEnd     int
	runeDelta int
}

// Mark 在文本中标记所有命中词条。
// 词条按字符长度从长到短处理，长词条不会被其前缀短词条抢先命中；
// 扫描发生在逐步重写的文本上，同时维护偏移映射，
// 使 Replacement 的位置始终相对原文有效。
// 空字典直接返回原文和空列表。
func (g *Guard) Mark(text string, merged map[string]string) (string, []Replacement) {
	if text == "" || len(merged) == 0 {
		return text, nil
	}

	terms := sortTermsLongestFirst(merged)
	result := text

	var repls []Replacement
	var edits []edit

	for _, term := range terms {
		translation := merged[term]
		guarded := g.delimiter + translation + g.delimiter
		byteDelta := len(guarded) - len(term)
		runeDelta := utf8.RuneCountInString(guarded) - utf8.RuneCountInString(term)

		searchFrom := 0
		for {
			idx := strings.Index(result[searchFrom:], term)
			if idx < 0 {
				break
			}
			pos := searchFrom + idx
			end := pos + len(term)

			if !overlapsAny(edits, pos, end) {
				origStart := originalOffset(result, edits, pos)
				repls = append(repls, Replacement{
					Start:       origStart,
					End:         origStart + utf8.RuneCountInString(term),
					Term:        term,
					Translation: translation,
				})
			}

			result = result[:pos] + guarded + result[end:]
			edits = shiftEdits(edits, pos, end, byteDelta)
			edits = append(edits, edit{rwStart: pos, rwEnd: pos + len(guarded), runeDelta: runeDelta})

			searchFrom = pos + len(guarded)
		}
	}

	sort.Slice(repls, func(i, j int) bool { return repls[i].Start < repls[j].Start })

	return result, repls
}

// Unmark 非贪婪地剥掉成对定界符，恢复纯文本。
// 返回值第二项是剥离后仍残留的定界符个数：后端破坏或吞掉定界符时
// 该跨度无法还原，调用方应记为警告而非失败。
func (g *Guard) Unmark(text string) (string, int) {
	out, err := g.unmarkRE.Replace(text, "$1", -1, -1)
	if err != nil {
		return text, strings.Count(text, g.delimiter)
	}
	return out, strings.Count(out, g.delimiter)
}

// sortTermsLongestFirst 按字符长度降序排列词条，等长时按字典序保证确定性。
// 空词条或空译文的条目不参与标记。
func sortTermsLongestFirst(merged map[string]string) []string {
	terms := make([]string, 0, len(merged))
	for term, translation := range merged {
		if term == "" || translation == "" {
			continue
		}
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		li := utf8.RuneCountInString(terms[i])
		lj := utf8.RuneCountInString(terms[j])
		if li != lj {
			return li > lj
		}
		return terms[i] < terms[j]
	})
	return terms
}

// overlapsAny 判断 [start,end) 是否与任何已有替换区间相交
func overlapsAny(edits []edit, start, end int) bool {
	for _, e := range edits {
		if start < e.rwEnd && end > e.rwStart {
			return true
		}
	}
	return false
}

// originalOffset 把重写文本中的字节位置换算为原文中的字符偏移
func originalOffset(rewritten string, edits []edit, pos int) int {
	runes := utf8.RuneCountInString(rewritten[:pos])
	for _, e := range edits {
		if e.rwEnd <= pos {
			runes -= e.runeDelta
		}
	}
	return runes
}

// shiftEdits 一次替换后修正既有区间：替换点之后的整体平移，
// 包含替换点的右端随之扩展
func shiftEdits(edits []edit, pos, end, byteDelta int) []edit {
	for i := range edits {
		switch {
		case edits[i].rwStart >= end:
			edits[i].rwStart += byteDelta
			edits[i].rwEnd += byteDelta
		case edits[i].rwEnd > pos:
			edits[i].rwEnd += byteDelta
		}
	}
	return edits
}
