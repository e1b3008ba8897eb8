package translation

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCacheKey(t *testing.T) {
	base := CacheKey{
		Provider:   "deepseek",
		Model:      "deepseek-chat",
		SourceLang: "Japanese",
		TargetLang: "Chinese",
		Text:       "***東京***に行く",
	}

	key1 := GenerateCacheKey(base)
	key2 := GenerateCacheKey(base)
	assert.Equal(t, key1, key2, "相同输入必须得到相同key")
	assert.Len(t, key1, 32)

	// 任一维度不同都必须得到不同key
	variants := []CacheKey{
		{Provider: "openai", Model: base.Model, SourceLang: base.SourceLang, TargetLang: base.TargetLang, Text: base.Text},
		{Provider: base.Provider, Model: "deepseek-reasoner", SourceLang: base.SourceLang, TargetLang: base.TargetLang, Text: base.Text},
		{Provider: base.Provider, Model: base.Model, SourceLang: "English", TargetLang: base.TargetLang, Text: base.Text},
		{Provider: base.Provider, Model: base.Model, SourceLang: base.SourceLang, TargetLang: "English", Text: base.Text},
		{Provider: base.Provider, Model: base.Model, SourceLang: base.SourceLang, TargetLang: base.TargetLang, Text: "other"},
	}
	for _, v := range variants {
		assert.NotEqual(t, key1, GenerateCacheKey(v))
	}
}

func TestMemoryCache(t *testing.T) {
	cache := NewMemoryCache()

	_, ok := cache.Get("missing")
	assert.False(t, ok)

	require.NoError(t, cache.Set("k1", "v1"))
	value, ok := cache.Get("k1")
	assert.True(t, ok)
	assert.Equal(t, "v1", value)

	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Size)

	require.NoError(t, cache.Delete("k1"))
	_, ok = cache.Get("k1")
	assert.False(t, ok)
}

func TestMemoryCacheTTL(t *testing.T) {
	cache := NewMemoryCache()

	require.NoError(t, cache.SetWithTTL("k", "v", 10*time.Millisecond))
	value, ok := cache.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", value)

	time.Sleep(20 * time.Millisecond)
	_, ok = cache.Get("k")
	assert.False(t, ok, "过期条目应按未命中处理")
	assert.Equal(t, int64(0), cache.Stats().Size)
}

func TestMemoryCacheClear(t *testing.T) {
	cache := NewMemoryCache()
	cache.Set("a", "1")
	cache.Set("b", "2")

	require.NoError(t, cache.Clear())
	assert.Equal(t, int64(0), cache.Stats().Size)
	_, ok := cache.Get("a")
	assert.False(t, ok)
}

func TestFileCache(t *testing.T) {
	dir := t.TempDir()
	cache := NewFileCache(dir)

	require.NoError(t, cache.Set("k1", "翻译结果"))

	// 缓存文件落盘
	files, err := filepath.Glob(filepath.Join(dir, "*.cache"))
	require.NoError(t, err)
	assert.Len(t, files, 1)

	value, ok := cache.Get("k1")
	assert.True(t, ok)
	assert.Equal(t, "翻译结果", value)
}

func TestFileCacheSurvivesNewInstance(t *testing.T) {
	dir := t.TempDir()

	first := NewFileCache(dir)
	require.NoError(t, first.Set("k1", "persisted"))

	// 新实例没有内存缓存，只能从文件读回
	second := NewFileCache(dir)
	value, ok := second.Get("k1")
	assert.True(t, ok)
	assert.Equal(t, "persisted", value)
}

func TestFileCacheCorruptFile(t *testing.T) {
	dir := t.TempDir()
	cache := NewFileCache(dir)

	require.NoError(t, cache.Set("k1", "good"))
	files, err := filepath.Glob(filepath.Join(dir, "*.cache"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.NoError(t, os.WriteFile(files[0], []byte("{not json"), 0o644))

	// 绕过内存缓存，从文件读取损坏数据
	fresh := NewFileCache(dir)
	_, ok := fresh.Get("k1")
	assert.False(t, ok, "损坏的缓存文件按未命中处理")
}

func TestFileCacheClear(t *testing.T) {
	dir := t.TempDir()
	cache := NewFileCache(dir)

	cache.Set("a", "1")
	cache.Set("b", "2")
	require.NoError(t, cache.Clear())

	files, err := filepath.Glob(filepath.Join(dir, "*.cache"))
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestNewCache(t *testing.T) {
	t.Run("none returns nil", func(t *testing.T) {
		cache, err := NewCache("none", "", "")
		require.NoError(t, err)
		assert.Nil(t, cache)

		cache, err = NewCache("", "", "")
		require.NoError(t, err)
		assert.Nil(t, cache)
	})

	t.Run("memory", func(t *testing.T) {
		cache, err := NewCache("memory", "", "")
		require.NoError(t, err)
		assert.IsType(t, &MemoryCache{}, cache)
	})

	t.Run("file", func(t *testing.T) {
		cache, err := NewCache("file", t.TempDir(), "")
		require.NoError(t, err)
		assert.IsType(t, &FileCache{}, cache)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := NewCache("carrier-pigeon", "", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported cache type")
	})
}
