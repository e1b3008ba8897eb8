package document

import (
	"encoding/xml"
	"strings"
)

// WordprocessingML命名空间
const wordMLNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// wordDocument word/document.xml 的根节点
type wordDocument struct {
	XMLName xml.Name `xml:"document"`
	Body    wordBody `xml:"body"`
}

type wordBody struct {
	Paragraphs []wordParagraph `xml:"p"`
}

type wordParagraph struct {
	Properties *wordParaProps `xml:"pPr"`
	Runs       []wordRun      `xml:"r"`
}

type wordParaProps struct {
	Style *wordStyleRef `xml:"pStyle"`
	Align *wordAlignRef `xml:"jc"`
}

type wordStyleRef struct {
	Val string `xml:"val,attr"`
}

type wordAlignRef struct {
	Val string `xml:"val,attr"`
}

type wordRun struct {
	Properties *wordRunProps
	Text       string
}

// UnmarshalXML 按文档顺序拼接run内容。
// t、tab、br交错出现时顺序有意义，结构体分组解码会丢失顺序。
func (r *wordRun) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var text strings.Builder
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "rPr":
				props := &wordRunProps{}
				if err := d.DecodeElement(props, &el); err != nil {
					return err
				}
				r.Properties = props
			case "t":
				var t wordText
				if err := d.DecodeElement(&t, &el); err != nil {
					return err
				}
				text.WriteString(t.Text)
			case "tab":
				text.WriteString("\t")
				if err := d.Skip(); err != nil {
					return err
				}
			case "br":
				text.WriteString("\n")
				if err := d.Skip(); err != nil {
					return err
				}
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			r.Text = text.String()
			return nil
		}
	}
}

type wordRunProps struct {
	Bold      *wordToggle  `xml:"b"`
	Italic    *wordToggle  `xml:"i"`
	Underline *wordToggle  `xml:"u"`
	Size      *wordSizeRef `xml:"sz"`
	Fonts     *wordFonts   `xml:"rFonts"`
}

// wordToggle 开关属性。元素存在即为开，val为false/0/none时为关。
type wordToggle struct {
	Val string `xml:"val,attr"`
}

func (t *wordToggle) enabled() bool {
	if t == nil {
		return false
	}
	switch t.Val {
	case "false", "0", "none":
		return false
	}
	return true
}

type wordSizeRef struct {
	Val string `xml:"val,attr"`
}

type wordFonts struct {
	ASCII    string `xml:"ascii,attr"`
	HAnsi    string `xml:"hAnsi,attr"`
	EastAsia string `xml:"eastAsia,attr"`
}

type wordText struct {
	Space string `xml:"http://www.w3.org/XML/1998/namespace space,attr,omitempty"`
	Text  string `xml:",chardata"`
}
