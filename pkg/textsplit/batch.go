package textsplit

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxBatchLength 未配置时单批次的最大字符数
const DefaultMaxBatchLength = 2000

// Batch 发送给翻译后端的尺寸受限块组，块内顺序即原文顺序
type Batch struct {
	Blocks []Block
}

// Text 返回批次的完整文本（含各块的尾随分隔符）
func (b Batch) Text() string {
	var sb strings.Builder
	for _, blk := range b.Blocks {
		sb.WriteString(blk.Content)
		sb.WriteString(blk.TrailingSeparator)
	}
	return sb.String()
}

// ContentLength 返回批次内所有块正文的字符数之和
func (b Batch) ContentLength() int {
	total := 0
	for _, blk := range b.Blocks {
		total += utf8.RuneCountInString(blk.Content)
	}
	return total
}

// BatchBlocks 将有序块贪心分组为不超过 maxLength 字符的批次。
// 下一个块放不下时封闭当前批次另起新批；单块本身超限时先封闭当前批次，
// 再对该块做三级边界切分，每个切片各自成批。块顺序始终保持不变。
func BatchBlocks(blocks []Block, maxLength int) []Batch {
	if maxLength <= 0 {
		maxLength = DefaultMaxBatchLength
	}

	var batches []Batch
	var current []Block
	currentLen := 0

	flush := func() {
		if len(current) > 0 {
			batches = append(batches, Batch{Blocks: current})
			current = nil
			currentLen = 0
		}
	}

	for _, blk := range blocks {
		size := utf8.RuneCountInString(blk.Content)

		if size > maxLength {
			flush()
			for _, piece := range splitOversized(blk, maxLength) {
				batches = append(batches, Batch{Blocks: []Block{piece}})
			}
			continue
		}

		if currentLen > 0 && currentLen+size > maxLength {
			flush()
		}

		current = append(current, blk)
		currentLen += size
	}
	flush()

	return batches
}

// splitOversized 把超限块切成若干不超过 maxLength 的切片。
// 在前 maxLength 个字符的窗口里依次尝试：最后一个句末标点之后、
// 最后一个换行符之后，都不存在时在 maxLength 处硬切。
// 位置 0 的边界视为不存在，保证每轮必有进展。
// 原块的尾随分隔符挂在最后一个切片上。
func splitOversized(blk Block, maxLength int) []Block {
	var pieces []Block
	rest := []rune(blk.Content)

	for len(rest) > maxLength {
		window := rest[:maxLength]

		cut := lastBoundary(window, isSentenceEnd)
		if cut == 0 {
			cut = lastBoundary(window, isLineBreak)
		}
		if cut == 0 {
			cut = maxLength
		}

		pieces = append(pieces, Block{Content: string(rest[:cut])})
		rest = rest[cut:]
	}

	if len(rest) > 0 {
		pieces = append(pieces, Block{Content: string(rest)})
	}
	if len(pieces) > 0 {
		pieces[len(pieces)-1].TrailingSeparator = blk.TrailingSeparator
	}

	return pieces
}

// lastBoundary 返回窗口内满足条件的最后一个字符之后的切分位置，找不到返回 0
func lastBoundary(window []rune, match func(rune) bool) int {
	for i := len(window) - 1; i > 0; i-- {
		if match(window[i]) {
			return i + 1
		}
	}
	return 0
}

// isSentenceEnd 判断是否是句子结束符
func isSentenceEnd(r rune) bool {
	return r == '。' || r == '？' || r == '！' || r == '?' || r == '!' || r == '.'
}

func isLineBreak(r rune) bool {
	return r == '\n'
}

// JoinBatches 按顺序拼接所有批次文本，还原分批前的内容
func JoinBatches(batches []Batch) string {
	var sb strings.Builder
	for _, b := range batches {
		sb.WriteString(b.Text())
	}
	return sb.String()
}
