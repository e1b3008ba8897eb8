package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const docxContentTypes = xml.Header + `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`

const docxRels = xml.Header + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`

// DocxHandler Word文档读写器，处理WordprocessingML的段落子集
type DocxHandler struct{}

// NewDocxHandler 创建Word文档读写器
func NewDocxHandler() *DocxHandler {
	return &DocxHandler{}
}

func (h *DocxHandler) Format() string {
	return "docx"
}

func (h *DocxHandler) Extensions() []string {
	return []string{".docx"}
}

// Read 读取docx文件。
// 提取正文段落文本，逐段记录样式名、对齐方式和首个run的字体信息；
// 空白段落跳过。
func (h *DocxHandler) Read(path string) (*Document, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer zr.Close()

	var docXML []byte
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("open document.xml: %w", err)
			}
			docXML, err = io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return nil, fmt.Errorf("read document.xml: %w", err)
			}
			break
		}
	}
	if docXML == nil {
		return nil, fmt.Errorf("%s: word/document.xml not found", path)
	}

	var word wordDocument
	if err := xml.Unmarshal(docXML, &word); err != nil {
		return nil, fmt.Errorf("parse document.xml: %w", err)
	}

	doc := &Document{}
	for _, para := range word.Body.Paragraphs {
		text := paragraphText(para)
		if strings.TrimSpace(text) == "" {
			continue
		}
		doc.Paragraphs = append(doc.Paragraphs, text)
		doc.Records = append(doc.Records, paragraphRecord(para))
	}
	return doc, nil
}

// Write 生成最小可用的docx包：content types、包关系和document.xml。
func (h *DocxHandler) Write(path string, doc *Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", docxContentTypes},
		{"_rels/.rels", docxRels},
		{"word/document.xml", buildDocumentXML(doc)},
	}
	for _, part := range parts {
		w, err := zw.Create(part.name)
		if err != nil {
			return fmt.Errorf("create zip entry %s: %w", part.name, err)
		}
		if _, err := w.Write([]byte(part.content)); err != nil {
			return fmt.Errorf("write zip entry %s: %w", part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize %s: %w", path, err)
	}
	return nil
}

func paragraphText(para wordParagraph) string {
	var sb strings.Builder
	for _, run := range para.Runs {
		sb.WriteString(run.Text)
	}
	return sb.String()
}

// paragraphRecord 提取段落格式。字体取首个run的设置代表整段。
func paragraphRecord(para wordParagraph) FormatRecord {
	rec := FormatRecord{}
	if props := para.Properties; props != nil {
		if props.Style != nil {
			rec.StyleName = props.Style.Val
		}
		if props.Align != nil {
			rec.Alignment = alignmentFromDocx(props.Align.Val)
		}
	}
	if len(para.Runs) > 0 {
		rec.Font = runFont(para.Runs[0].Properties)
	}
	return rec
}

func runFont(props *wordRunProps) *FontSpec {
	if props == nil {
		return nil
	}

	font := &FontSpec{
		Bold:      props.Bold.enabled(),
		Italic:    props.Italic.enabled(),
		Underline: props.Underline.enabled(),
	}
	if props.Fonts != nil {
		font.Name = props.Fonts.ASCII
		if font.Name == "" {
			font.Name = props.Fonts.EastAsia
		}
		if font.Name == "" {
			font.Name = props.Fonts.HAnsi
		}
	}
	if props.Size != nil {
		// sz以半磅为单位
		if v, err := strconv.ParseFloat(props.Size.Val, 64); err == nil {
			font.Size = v / 2
		}
	}

	if *font == (FontSpec{}) {
		return nil
	}
	return font
}

func alignmentFromDocx(val string) Alignment {
	switch val {
	case "left", "start":
		return AlignLeft
	case "center":
		return AlignCenter
	case "right", "end":
		return AlignRight
	case "both", "justify", "distribute":
		return AlignJustify
	}
	return AlignDefault
}

func alignmentToDocx(a Alignment) string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	case AlignJustify:
		return "both"
	}
	return ""
}

func buildDocumentXML(doc *Document) string {
	var sb strings.Builder
	sb.WriteString(xml.Header)
	sb.WriteString(`<w:document xmlns:w="` + wordMLNamespace + `"><w:body>`)
	for i, para := range doc.Paragraphs {
		var rec FormatRecord
		if i < len(doc.Records) {
			rec = doc.Records[i]
		}
		writeParagraphXML(&sb, para, rec)
	}
	sb.WriteString(`</w:body></w:document>`)
	return sb.String()
}

func writeParagraphXML(sb *strings.Builder, content string, rec FormatRecord) {
	sb.WriteString("<w:p>")

	var props strings.Builder
	if rec.StyleName != "" {
		props.WriteString(`<w:pStyle w:val="` + escapeXML(rec.StyleName) + `"/>`)
	}
	if jc := alignmentToDocx(rec.Alignment); jc != "" {
		props.WriteString(`<w:jc w:val="` + jc + `"/>`)
	}
	if props.Len() > 0 {
		sb.WriteString("<w:pPr>" + props.String() + "</w:pPr>")
	}

	sb.WriteString("<w:r>")
	if runProps := runPropsXML(rec.Font); runProps != "" {
		sb.WriteString("<w:rPr>" + runProps + "</w:rPr>")
	}
	// 段内换行写成br，XML转义会吃掉裸换行符
	for j, line := range strings.Split(content, "\n") {
		if j > 0 {
			sb.WriteString("<w:br/>")
		}
		sb.WriteString(`<w:t xml:space="preserve">` + escapeXML(line) + `</w:t>`)
	}
	sb.WriteString("</w:r></w:p>")
}

func runPropsXML(font *FontSpec) string {
	if font == nil {
		return ""
	}

	var sb strings.Builder
	if font.Name != "" {
		name := escapeXML(font.Name)
		sb.WriteString(`<w:rFonts w:ascii="` + name + `" w:hAnsi="` + name + `" w:eastAsia="` + name + `"/>`)
	}
	if font.Bold {
		sb.WriteString("<w:b/>")
	}
	if font.Italic {
		sb.WriteString("<w:i/>")
	}
	if font.Size > 0 {
		sb.WriteString(`<w:sz w:val="` + strconv.Itoa(int(font.Size*2)) + `"/>`)
	}
	if font.Underline {
		sb.WriteString(`<w:u w:val="single"/>`)
	}
	return sb.String()
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
