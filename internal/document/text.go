package document

import (
	"fmt"
	"os"
	"strings"

	"github.com/nerdneilsfield/go-dict-translator/internal/textenc"
	"github.com/nerdneilsfield/go-dict-translator/pkg/textsplit"
)

// TextHandler 纯文本读写器
type TextHandler struct{}

// NewTextHandler 创建纯文本读写器
func NewTextHandler() *TextHandler {
	return &TextHandler{}
}

func (h *TextHandler) Format() string {
	return "text"
}

func (h *TextHandler) Extensions() []string {
	return []string{".txt", ".text"}
}

// Read 读取文本文件。自动检测编码，统一换行符后按空行拆分段落。
func (h *TextHandler) Read(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	text := textenc.Decode(data)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	blocks := textsplit.Segment(text)
	doc := &Document{Records: make([]FormatRecord, len(blocks))}
	for _, block := range blocks {
		// 段尾残留的单个换行属于分隔，不属于段落内容
		doc.Paragraphs = append(doc.Paragraphs, strings.TrimRight(block.Content, "\n"))
	}
	return doc, nil
}

// Write 输出UTF-8文本，段落之间以空行分隔。
func (h *TextHandler) Write(path string, doc *Document) error {
	var sb strings.Builder
	for _, para := range doc.Paragraphs {
		sb.WriteString(para)
		sb.WriteString("\n\n")
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
