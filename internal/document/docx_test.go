package document

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildDocx 用给定的document.xml组装一个最小docx文件
func buildDocx(t *testing.T, documentXML string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	entries := map[string]string{
		"[Content_Types].xml": docxContentTypes,
		"_rels/.rels":         docxRels,
		"word/document.xml":   documentXML,
	}
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	path := filepath.Join(t.TempDir(), "test.docx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestDocxRead(t *testing.T) {
	documentXML := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="` + wordMLNamespace + `"><w:body>` +
		`<w:p><w:pPr><w:pStyle w:val="Heading1"/><w:jc w:val="center"/></w:pPr>` +
		`<w:r><w:rPr><w:rFonts w:ascii="MS Mincho"/><w:b/><w:sz w:val="28"/></w:rPr><w:t>タイトル</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>本文</w:t></w:r><w:r><w:t>続き</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>   </w:t></w:r></w:p>` +
		`</w:body></w:document>`

	doc, err := NewDocxHandler().Read(buildDocx(t, documentXML))
	require.NoError(t, err)

	// 纯空白段落不收集，多个run按顺序拼接
	require.Equal(t, []string{"タイトル", "本文続き"}, doc.Paragraphs)
	require.Len(t, doc.Records, 2)

	rec := doc.Records[0]
	assert.Equal(t, "Heading1", rec.StyleName)
	assert.Equal(t, AlignCenter, rec.Alignment)
	require.NotNil(t, rec.Font)
	assert.Equal(t, "MS Mincho", rec.Font.Name)
	assert.True(t, rec.Font.Bold)
	assert.Equal(t, 14.0, rec.Font.Size)

	assert.Empty(t, doc.Records[1].StyleName)
	assert.Nil(t, doc.Records[1].Font)
}

func TestDocxReadBreakAndTab(t *testing.T) {
	documentXML := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="` + wordMLNamespace + `"><w:body>` +
		`<w:p><w:r><w:t>一行目</w:t><w:br/><w:t>二行目</w:t><w:tab/><w:t>続き</w:t></w:r></w:p>` +
		`</w:body></w:document>`

	doc, err := NewDocxHandler().Read(buildDocx(t, documentXML))
	require.NoError(t, err)
	require.Len(t, doc.Paragraphs, 1)
	assert.Equal(t, "一行目\n二行目\t続き", doc.Paragraphs[0])
}

func TestDocxReadToggleOff(t *testing.T) {
	documentXML := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="` + wordMLNamespace + `"><w:body>` +
		`<w:p><w:r><w:rPr><w:b w:val="false"/><w:i w:val="0"/></w:rPr><w:t>平文</w:t></w:r></w:p>` +
		`</w:body></w:document>`

	doc, err := NewDocxHandler().Read(buildDocx(t, documentXML))
	require.NoError(t, err)
	require.Len(t, doc.Records, 1)
	assert.Nil(t, doc.Records[0].Font)
}

func TestDocxReadNotZip(t *testing.T) {
	path := writeTemp(t, "bad.docx", []byte("not a zip archive"))
	_, err := NewDocxHandler().Read(path)
	require.Error(t, err)
}

func TestDocxReadMissingDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("hello.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("hi"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(t.TempDir(), "empty.docx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	_, err = NewDocxHandler().Read(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document.xml not found")
}

func TestDocxWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.docx")
	doc := &Document{
		Paragraphs: []string{"标题", "第一段<特殊&字符>", "居中段"},
		Records: []FormatRecord{
			{StyleName: "Heading1", Font: &FontSpec{Name: "SimSun", Size: 16, Bold: true, Underline: true}},
			{},
			{Alignment: AlignCenter, Font: &FontSpec{Italic: true}},
		},
	}

	h := NewDocxHandler()
	require.NoError(t, h.Write(path, doc))

	back, err := h.Read(path)
	require.NoError(t, err)
	assert.Equal(t, doc.Paragraphs, back.Paragraphs)
	require.Len(t, back.Records, 3)

	assert.Equal(t, "Heading1", back.Records[0].StyleName)
	require.NotNil(t, back.Records[0].Font)
	assert.Equal(t, "SimSun", back.Records[0].Font.Name)
	assert.True(t, back.Records[0].Font.Bold)
	assert.True(t, back.Records[0].Font.Underline)
	assert.Equal(t, 16.0, back.Records[0].Font.Size)

	assert.Nil(t, back.Records[1].Font)

	assert.Equal(t, AlignCenter, back.Records[2].Alignment)
	require.NotNil(t, back.Records[2].Font)
	assert.True(t, back.Records[2].Font.Italic)
}

func TestDocxWriteMultilineParagraph(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.docx")
	doc := &Document{Paragraphs: []string{"一行目\n二行目"}}

	h := NewDocxHandler()
	require.NoError(t, h.Write(path, doc))

	back, err := h.Read(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"一行目\n二行目"}, back.Paragraphs)
}
