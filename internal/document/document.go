// Package document 定义统一的文档模型和各格式的读写器。
// 读取器把输入文件拆解为段落列表和逐段格式记录，
// 写入器按记录把翻译后的段落重新装配成目标文件。
package document

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Alignment 段落对齐方式
type Alignment string

const (
	AlignDefault Alignment = ""
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
	AlignJustify Alignment = "justify"
)

// FontSpec 段落字体信息
type FontSpec struct {
	Name      string
	Size      float64
	Bold      bool
	Italic    bool
	Underline bool
}

// FormatRecord 单个段落的格式记录
type FormatRecord struct {
	// StyleName 样式名，如docx样式、Markdown的h1、HTML的标签名
	StyleName string
	// Alignment 对齐方式
	Alignment Alignment
	// Font 字体信息，nil表示使用默认字体
	Font *FontSpec
	// Verbatim 为true时该段落原样输出，不参与翻译（代码块、公式等）
	Verbatim bool
}

// Document 与具体格式无关的文档模型
type Document struct {
	// FrontMatter 文档头部元数据原文（Markdown front matter），原样保留
	FrontMatter string
	// Paragraphs 段落内容，与Records按下标对应
	Paragraphs []string
	// Records 逐段格式记录
	Records []FormatRecord
}

// Handler 单一格式的读写器
type Handler interface {
	// Format 格式名称
	Format() string
	// Extensions 关联的文件扩展名（带点号）
	Extensions() []string
	// Read 读取文件并解析为文档模型
	Read(path string) (*Document, error)
	// Write 将文档模型写出为目标文件
	Write(path string, doc *Document) error
}

// Registry 格式读写器注册表
type Registry struct {
	mu         sync.RWMutex
	handlers   map[string]Handler
	extensions map[string]string
}

var globalRegistry = &Registry{
	handlers:   make(map[string]Handler),
	extensions: make(map[string]string),
}

// Register 注册读写器到全局注册表
func Register(h Handler) error {
	return globalRegistry.Register(h)
}

// ForPath 根据文件扩展名获取读写器
func ForPath(path string) (Handler, error) {
	return globalRegistry.ForPath(path)
}

// ForFormat 根据格式名获取读写器
func ForFormat(name string) (Handler, error) {
	return globalRegistry.ForFormat(name)
}

// Formats 返回所有已注册的格式名，按字典序排序
func Formats() []string {
	return globalRegistry.Formats()
}

// Register 注册读写器
func (r *Registry) Register(h Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := h.Format()
	if _, exists := r.handlers[name]; exists {
		return fmt.Errorf("format %s already registered", name)
	}

	r.handlers[name] = h
	for _, ext := range h.Extensions() {
		ext = strings.ToLower(strings.TrimPrefix(ext, "."))
		r.extensions[ext] = name
	}
	return nil
}

// ForPath 根据文件扩展名获取读写器
func (r *Registry) ForPath(path string) (Handler, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))

	r.mu.RLock()
	defer r.mu.RUnlock()

	name, exists := r.extensions[ext]
	if !exists {
		return nil, fmt.Errorf("no handler registered for extension: %s", ext)
	}
	return r.handlers[name], nil
}

// ForFormat 根据格式名获取读写器
func (r *Registry) ForFormat(name string) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, exists := r.handlers[name]
	if !exists {
		return nil, fmt.Errorf("no handler registered for format: %s", name)
	}
	return h, nil
}

// Formats 返回所有已注册的格式名
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register(NewTextHandler())
	Register(NewMarkdownHandler())
	Register(NewHTMLHandler())
	Register(NewDocxHandler())
}
