package textenc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeUTF8(t *testing.T) {
	assert.Equal(t, "こんにちは世界", Decode([]byte("こんにちは世界")))
	assert.Equal(t, "plain ascii", Decode([]byte("plain ascii")))
}

func TestDecodeEmpty(t *testing.T) {
	assert.Equal(t, "", Decode(nil))
	assert.Equal(t, "", Decode([]byte{}))
}

func TestDecodeUTF8BOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello")...)
	assert.Equal(t, "hello", Decode(data))
}

func TestDecodeUTF16LEBOM(t *testing.T) {
	// "hi" UTF-16 LE，带BOM
	data := []byte{0xFF, 0xFE, 0x68, 0x00, 0x69, 0x00}
	assert.Equal(t, "hi", Decode(data))
}

func TestDecodeUTF16BEBOM(t *testing.T) {
	data := []byte{0xFE, 0xFF, 0x00, 0x68, 0x00, 0x69}
	assert.Equal(t, "hi", Decode(data))
}

func TestDecodeGBK(t *testing.T) {
	// "中文" 的 GBK 编码
	data := []byte{0xD6, 0xD0, 0xCE, 0xC4}
	assert.Equal(t, "中文", Decode(data))
}

func TestDecodeKeepsLineEndings(t *testing.T) {
	// 编码转换不改写换行符，由上层决定是否规范化
	assert.Equal(t, "a\r\nb", Decode([]byte("a\r\nb")))
}

func TestReasonable(t *testing.T) {
	assert.True(t, reasonable("普通の文章 with spaces\nand lines"))
	assert.False(t, reasonable(""))
	assert.False(t, reasonable("\x00\x01\x02\x03\x04\x05\x06\x07\x08\x0e"))
}
