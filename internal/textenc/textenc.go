package textenc

import (
	"bytes"
	"io"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decode 检测字节流编码并转换为UTF-8字符串。
// 依次尝试 UTF-8、BOM、常见中日韩编码与UTF-16；
// 全部失败时原样返回，不视为错误。
func Decode(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	if utf8.Valid(data) {
		return stripUTF8BOM(data)
	}

	if text, ok := decodeUTF16BOM(data); ok {
		return text
	}

	encodings := []encoding.Encoding{
		simplifiedchinese.GBK,
		simplifiedchinese.GB18030,
		traditionalchinese.Big5,
		japanese.ShiftJIS,
		japanese.EUCJP,
		korean.EUCKR,
		charmap.Windows1252,
		charmap.ISO8859_1,
		xunicode.UTF16(xunicode.LittleEndian, xunicode.IgnoreBOM),
		xunicode.UTF16(xunicode.BigEndian, xunicode.IgnoreBOM),
	}

	for _, enc := range encodings {
		dec := enc.NewDecoder()
		res, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), dec))
		if err == nil && utf8.Valid(res) && reasonable(string(res)) {
			return string(res)
		}
	}

	return string(data)
}

func stripUTF8BOM(data []byte) string {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return string(data[3:])
	}
	return string(data)
}

func decodeUTF16BOM(data []byte) (string, bool) {
	if len(data) < 2 {
		return "", false
	}

	var dec *encoding.Decoder
	switch {
	case data[0] == 0xFF && data[1] == 0xFE:
		dec = xunicode.UTF16(xunicode.LittleEndian, xunicode.IgnoreBOM).NewDecoder()
	case data[0] == 0xFE && data[1] == 0xFF:
		dec = xunicode.UTF16(xunicode.BigEndian, xunicode.IgnoreBOM).NewDecoder()
	default:
		return "", false
	}

	res, err := io.ReadAll(transform.NewReader(bytes.NewReader(data[2:]), dec))
	if err != nil || !utf8.Valid(res) {
		return "", false
	}
	return string(res), true
}

// reasonable 检查解码结果是否像正常文本。
// 可打印字符（含空白）占比超过90%才接受，避免误判编码。
func reasonable(text string) bool {
	if len(text) == 0 {
		return false
	}

	printable := 0
	total := 0
	for _, r := range text {
		total++
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			printable++
		}
	}

	return float64(printable)/float64(total) > 0.9
}
