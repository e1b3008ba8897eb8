package document

import (
	"fmt"
	"os"
	"strings"

	"github.com/Kunde21/markdownfmt/v3"
	"github.com/Kunde21/markdownfmt/v3/markdown"
	mathjax "github.com/litao91/goldmark-mathjax"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
	"go.uber.org/zap"
)

// MarkdownHandler Markdown读写器。
// 逐个顶层块提取原文文本：标题、段落、列表、引用参与翻译，
// 代码块、公式块、HTML块和分隔线原样保留。
type MarkdownHandler struct{}

// NewMarkdownHandler 创建Markdown读写器
func NewMarkdownHandler() *MarkdownHandler {
	return &MarkdownHandler{}
}

func (h *MarkdownHandler) Format() string {
	return "markdown"
}

func (h *MarkdownHandler) Extensions() []string {
	return []string{".md", ".markdown", ".mdown", ".mkd"}
}

// Read 解析Markdown文件。
// front matter由meta扩展从语法树中摘除并原样保存；
// 数学公式块依赖mathjax扩展独立成块，避免被当作普通段落翻译。
func (h *MarkdownHandler) Read(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	src := strings.ReplaceAll(string(data), "\r\n", "\n")
	src = strings.ReplaceAll(src, "\r", "\n")
	source := []byte(src)

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			meta.Meta,
			mathjax.MathJax,
		),
	)
	root := md.Parser().Parse(text.NewReader(source))

	doc := &Document{FrontMatter: rawFrontMatter(src)}
	for node := root.FirstChild(); node != nil; node = node.NextSibling() {
		content, rec := markdownBlock(node, source)
		if content == "" {
			continue
		}
		doc.Paragraphs = append(doc.Paragraphs, content)
		doc.Records = append(doc.Records, rec)
	}
	return doc, nil
}

// Write 重新拼装Markdown：front matter原样在前，标题补回井号前缀，
// 其余块按原文本输出，块间以空行分隔。
func (h *MarkdownHandler) Write(path string, doc *Document) error {
	sections := make([]string, 0, len(doc.Paragraphs)+1)
	if doc.FrontMatter != "" {
		sections = append(sections, doc.FrontMatter)
	}

	for i, para := range doc.Paragraphs {
		var rec FormatRecord
		if i < len(doc.Records) {
			rec = doc.Records[i]
		}
		if level := headingLevel(rec.StyleName); level > 0 && !rec.Verbatim {
			para = strings.Repeat("#", level) + " " + para
		}
		sections = append(sections, para)
	}

	content := strings.Join(sections, "\n\n")
	if content != "" {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// NormalizeFile 用markdownfmt规范化Markdown文件排版
func NormalizeFile(path string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	content, err := os.ReadFile(path)
	if err != nil {
		logger.Error("读取文件失败", zap.String("path", path), zap.Error(err))
		return err
	}

	opts := []markdown.Option{
		markdown.WithCodeFormatters(markdown.GoCodeFormatter),
	}
	res, err := markdownfmt.Process(path, content, opts...)
	if err != nil {
		logger.Error("格式化Markdown失败", zap.String("path", path), zap.Error(err))
		return err
	}

	return os.WriteFile(path, res, 0o644)
}

// markdownBlock 把一个顶层块转成段落内容和格式记录
func markdownBlock(node ast.Node, source []byte) (string, FormatRecord) {
	switch n := node.(type) {
	case *ast.Heading:
		return blockSpan(n, source, false), FormatRecord{StyleName: markdownHeadingStyle(n.Level)}
	case *ast.Paragraph:
		return blockSpan(n, source, false), FormatRecord{StyleName: "p"}
	case *ast.List:
		return blockSpan(n, source, true), FormatRecord{StyleName: "list"}
	case *ast.Blockquote:
		return blockSpan(n, source, true), FormatRecord{StyleName: "blockquote"}
	case *ast.FencedCodeBlock:
		lang := string(n.Language(source))
		body := blockSpan(n, source, false)
		if body != "" {
			body += "\n"
		}
		return "```" + lang + "\n" + body + "```", FormatRecord{StyleName: "code", Verbatim: true}
	case *ast.CodeBlock:
		return blockSpan(n, source, true), FormatRecord{StyleName: "code", Verbatim: true}
	case *mathjax.MathBlock:
		body := blockSpan(n, source, false)
		if body != "" {
			body += "\n"
		}
		return "$$\n" + body + "$$", FormatRecord{StyleName: "math", Verbatim: true}
	case *ast.HTMLBlock:
		return blockSpan(n, source, true), FormatRecord{StyleName: "html", Verbatim: true}
	case *ast.ThematicBreak:
		return "---", FormatRecord{StyleName: "hr", Verbatim: true}
	default:
		return blockSpan(node, source, true), FormatRecord{StyleName: "p"}
	}
}

// blockSpan 取块节点覆盖的原文文本。
// extend为true时扩展到整行边界，找回列表符号和引用前缀这类
// 不在语法树文本段内的行首标记。
func blockSpan(node ast.Node, source []byte, extend bool) string {
	start, stop := -1, -1
	update := func(seg text.Segment) {
		if seg.Start >= seg.Stop {
			return
		}
		if start < 0 || seg.Start < start {
			start = seg.Start
		}
		if seg.Stop > stop {
			stop = seg.Stop
		}
	}

	ast.Walk(node, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if child.Type() == ast.TypeBlock {
			lines := child.Lines()
			for i := 0; i < lines.Len(); i++ {
				update(lines.At(i))
			}
			if hb, ok := child.(*ast.HTMLBlock); ok && hb.HasClosure() {
				update(hb.ClosureLine)
			}
		}
		if t, ok := child.(*ast.Text); ok {
			update(t.Segment)
		}
		return ast.WalkContinue, nil
	})

	if start < 0 {
		return ""
	}
	if extend {
		for start > 0 && source[start-1] != '\n' {
			start--
		}
		for stop < len(source) && source[stop-1] != '\n' {
			stop++
		}
	}
	return strings.TrimRight(string(source[start:stop]), "\n")
}

// rawFrontMatter 截取文件开头的front matter原文，含分隔线
func rawFrontMatter(src string) string {
	lines := strings.SplitAfter(src, "\n")
	if len(lines) < 2 || strings.TrimRight(lines[0], "\n") != "---" {
		return ""
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\n") == "---" {
			return strings.TrimRight(strings.Join(lines[:i+1], ""), "\n")
		}
	}
	return ""
}

func markdownHeadingStyle(level int) string {
	return fmt.Sprintf("h%d", level)
}

// headingLevel 从样式名解析标题级别，非标题样式返回0
func headingLevel(style string) int {
	if len(style) != 2 || style[0] != 'h' {
		return 0
	}
	level := int(style[1] - '0')
	if level < 1 || level > 6 {
		return 0
	}
	return level
}
