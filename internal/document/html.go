package document

import (
	"fmt"
	"html"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// 参与提取的段落级元素
const htmlBlockSelector = "h1, h2, h3, h4, h5, h6, p, li, blockquote, pre"

// HTMLHandler HTML读写器
type HTMLHandler struct{}

// NewHTMLHandler 创建HTML读写器
func NewHTMLHandler() *HTMLHandler {
	return &HTMLHandler{}
}

func (h *HTMLHandler) Format() string {
	return "html"
}

func (h *HTMLHandler) Extensions() []string {
	return []string{".html", ".htm", ".xhtml"}
}

// Read 读取HTML文件。
// 按meta声明的字符集解码后提取段落级元素的文本，标签名记入样式；
// 嵌套时只取最内层的段落级元素，避免同一段文本被收集两次。
func (h *HTMLHandler) Read(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	decoded, err := charset.NewReader(f, "text/html")
	if err != nil {
		return nil, fmt.Errorf("detect charset of %s: %w", path, err)
	}

	gqDoc, err := goquery.NewDocumentFromReader(decoded)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	doc := &Document{}
	gqDoc.Find(htmlBlockSelector).Each(func(_ int, sel *goquery.Selection) {
		if sel.Find(htmlBlockSelector).Length() > 0 {
			return
		}

		tag := goquery.NodeName(sel)
		var content string
		if tag == "pre" {
			content = strings.Trim(sel.Text(), "\n")
		} else {
			content = strings.TrimSpace(sel.Text())
		}
		if content == "" {
			return
		}

		doc.Paragraphs = append(doc.Paragraphs, content)
		doc.Records = append(doc.Records, FormatRecord{
			StyleName: tag,
			Verbatim:  tag == "pre",
		})
	})
	return doc, nil
}

// Write 生成最小HTML文档，段落沿用读取时记录的标签。
// 连续的li包进同一个ul。
func (h *HTMLHandler) Write(path string, doc *Document) error {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n</head>\n<body>\n")

	inList := false
	for i, para := range doc.Paragraphs {
		tag := "p"
		if i < len(doc.Records) {
			tag = htmlTag(doc.Records[i].StyleName)
		}

		if tag == "li" && !inList {
			sb.WriteString("<ul>\n")
			inList = true
		} else if tag != "li" && inList {
			sb.WriteString("</ul>\n")
			inList = false
		}

		sb.WriteString("<" + tag + ">" + html.EscapeString(para) + "</" + tag + ">\n")
	}
	if inList {
		sb.WriteString("</ul>\n")
	}

	sb.WriteString("</body>\n</html>\n")
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// htmlTag 只放行已知的段落级标签，其余一律退回p
func htmlTag(style string) string {
	switch style {
	case "h1", "h2", "h3", "h4", "h5", "h6", "p", "li", "blockquote", "pre":
		return style
	}
	return "p"
}
