package textsplit

import (
	"strings"
)

// Block 一个连续的非空原文单元，以及紧跟其后的段落分隔符。
// 所有块按顺序拼接 Content+TrailingSeparator 必须還原原文。
type Block struct {
	Content           string
	TrailingSeparator string
}

// Segment 按段落边界（两个及以上连续换行符）切分原文为有序文本块。
// 空白块不单独成块：其内容与分隔符并入前一个存活块的分隔符，
// 没有前驱的空白首块直接丢弃。
func Segment(text string) []Block {
	if text == "" {
		return nil
	}

	raw := splitOnSeparators(text)

	blocks := make([]Block, 0, len(raw))
	for _, b := range raw {
		if strings.TrimSpace(b.Content) == "" {
			if len(blocks) > 0 {
				// 保留原始字节，保证拼接可逆
				blocks[len(blocks)-1].TrailingSeparator += b.Content + b.TrailingSeparator
			}
			continue
		}
		blocks = append(blocks, b)
	}

	return blocks
}

// splitOnSeparators 找出换行符连跑（长度>=2）并在其处切分，连跑本身作为分隔符保留。
func splitOnSeparators(text string) []Block {
	var raw []Block
	start := 0
	i := 0
	n := len(text)

	for i < n {
		if text[i] != '\n' {
			i++
			continue
		}
		j := i + 1
		for j < n && text[j] == '\n' {
			j++
		}
		if j-i >= 2 {
			raw = append(raw, Block{
				Content:           text[start:i],
				TrailingSeparator: text[i:j],
			})
			start = j
		}
		i = j
	}

	if start < n {
		raw = append(raw, Block{Content: text[start:]})
	}

	return raw
}

// Join 按顺序拼接所有块，还原分段前的文本。
func Join(blocks []Block) string {
	var sb strings.Builder
	for _, b := range blocks {
		sb.WriteString(b.Content)
		sb.WriteString(b.TrailingSeparator)
	}
	return sb.String()
}

// Contents 返回所有块的正文列表（不含分隔符）。
func Contents(blocks []Block) []string {
	out := make([]string, len(blocks))
	for i, b := range blocks {
		out[i] = b.Content
	}
	return out
}
