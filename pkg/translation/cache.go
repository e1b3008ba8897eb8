package translation

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Cache 翻译结果缓存
type Cache interface {
	// Get 获取缓存，第二个返回值表示是否命中
	Get(key string) (string, bool)
	// Set 设置缓存
	Set(key string, value string) error
	// SetWithTTL 设置带过期时间的缓存
	SetWithTTL(key string, value string, ttl time.Duration) error
	// Delete 删除缓存
	Delete(key string) error
	// Clear 清除所有缓存
	Clear() error
	// Stats 获取缓存统计信息
	Stats() CacheStats
}

// CacheStats 缓存统计信息
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Size   int64 `json:"size"`
}

// CacheKey 缓存key组件。
// 同一批文本在不同提供商、模型或语言对下的结果互不混用。
type CacheKey struct {
	Provider   string
	Model      string
	SourceLang string
	TargetLang string
	Text       string
}

// GenerateCacheKey 生成MD5缓存key
func GenerateCacheKey(key CacheKey) string {
	keyData := fmt.Sprintf("provider:%s|model:%s|src:%s|tgt:%s|text:%s",
		key.Provider, key.Model, key.SourceLang, key.TargetLang, key.Text)
	hash := md5.Sum([]byte(keyData))
	return fmt.Sprintf("%x", hash)
}

// cacheEntry 缓存条目
type cacheEntry struct {
	Value     string        `json:"value"`
	Timestamp time.Time     `json:"timestamp"`
	TTL       time.Duration `json:"ttl,omitempty"`
}

func (e cacheEntry) expired() bool {
	return e.TTL > 0 && time.Since(e.Timestamp) > e.TTL
}

// MemoryCache 内存缓存实现
type MemoryCache struct {
	data  map[string]cacheEntry
	mutex sync.Mutex
	stats CacheStats
}

// NewMemoryCache 创建内存缓存
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		data: make(map[string]cacheEntry),
	}
}

// Get 获取缓存
func (c *MemoryCache) Get(key string) (string, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.data[key]
	if !exists {
		c.stats.Misses++
		return "", false
	}

	if entry.expired() {
		delete(c.data, key)
		c.stats.Size = int64(len(c.data))
		c.stats.Misses++
		return "", false
	}

	c.stats.Hits++
	return entry.Value, true
}

// Set 设置缓存
func (c *MemoryCache) Set(key string, value string) error {
	return c.SetWithTTL(key, value, 0)
}

// SetWithTTL 设置带过期时间的缓存
func (c *MemoryCache) SetWithTTL(key string, value string, ttl time.Duration) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[key] = cacheEntry{
		Value:     value,
		Timestamp: time.Now(),
		TTL:       ttl,
	}
	c.stats.Size = int64(len(c.data))
	return nil
}

// Delete 删除缓存
func (c *MemoryCache) Delete(key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, key)
	c.stats.Size = int64(len(c.data))
	return nil
}

// Clear 清除所有缓存
func (c *MemoryCache) Clear() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data = make(map[string]cacheEntry)
	c.stats = CacheStats{}
	return nil
}

// Stats 获取缓存统计信息
func (c *MemoryCache) Stats() CacheStats {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.stats
}

// FileCache 文件缓存实现，内存缓存作为一级缓存
type FileCache struct {
	basePath string
	memory   *MemoryCache
	mutex    sync.Mutex
	stats    CacheStats
}

// NewFileCache 创建文件缓存。
// 目录无法创建时退化为纯内存缓存。
func NewFileCache(basePath string) *FileCache {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return &FileCache{
			basePath: "",
			memory:   NewMemoryCache(),
		}
	}

	return &FileCache{
		basePath: basePath,
		memory:   NewMemoryCache(),
	}
}

// getFilePath 获取缓存文件路径
func (c *FileCache) getFilePath(key string) string {
	if c.basePath == "" {
		return ""
	}
	hash := md5.Sum([]byte(key))
	return filepath.Join(c.basePath, fmt.Sprintf("%x.cache", hash))
}

func (c *FileCache) addHit() {
	c.mutex.Lock()
	c.stats.Hits++
	c.mutex.Unlock()
}

func (c *FileCache) addMiss() {
	c.mutex.Lock()
	c.stats.Misses++
	c.mutex.Unlock()
}

// Get 获取缓存
func (c *FileCache) Get(key string) (string, bool) {
	if value, ok := c.memory.Get(key); ok {
		c.addHit()
		return value, true
	}

	if c.basePath == "" {
		c.addMiss()
		return "", false
	}

	filePath := c.getFilePath(key)
	data, err := os.ReadFile(filePath)
	if err != nil {
		c.addMiss()
		return "", false
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		c.addMiss()
		return "", false
	}

	if entry.expired() {
		os.Remove(filePath)
		c.addMiss()
		return "", false
	}

	// 回填内存缓存
	c.memory.Set(key, entry.Value)
	c.addHit()
	return entry.Value, true
}

// Set 设置缓存
func (c *FileCache) Set(key string, value string) error {
	return c.SetWithTTL(key, value, 0)
}

// SetWithTTL 设置带过期时间的缓存
func (c *FileCache) SetWithTTL(key string, value string, ttl time.Duration) error {
	if err := c.memory.SetWithTTL(key, value, ttl); err != nil {
		return err
	}

	if c.basePath == "" {
		return nil
	}

	entry := cacheEntry{
		Value:     value,
		Timestamp: time.Now(),
		TTL:       ttl,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	if err := os.WriteFile(c.getFilePath(key), data, 0o644); err != nil {
		return err
	}

	c.mutex.Lock()
	c.stats.Size++
	c.mutex.Unlock()
	return nil
}

// Delete 删除缓存
func (c *FileCache) Delete(key string) error {
	c.memory.Delete(key)

	if c.basePath == "" {
		return nil
	}

	if err := os.Remove(c.getFilePath(key)); err != nil {
		return err
	}

	c.mutex.Lock()
	c.stats.Size--
	c.mutex.Unlock()
	return nil
}

// Clear 清除所有缓存
func (c *FileCache) Clear() error {
	c.memory.Clear()

	if c.basePath == "" {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(c.basePath, "*.cache"))
	if err != nil {
		return err
	}
	for _, file := range files {
		os.Remove(file)
	}

	c.mutex.Lock()
	c.stats = CacheStats{}
	c.mutex.Unlock()
	return nil
}

// Stats 获取缓存统计信息。
// 命中与未命中只在 FileCache 层计数，避免与内层内存缓存重复统计。
func (c *FileCache) Stats() CacheStats {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	size := c.stats.Size
	if c.basePath == "" {
		size = c.memory.Stats().Size
	}
	return CacheStats{
		Hits:   c.stats.Hits,
		Misses: c.stats.Misses,
		Size:   size,
	}
}

// NewCache 根据配置创建缓存实例。
// kind 为 none 或空时返回 nil，表示不使用缓存。
func NewCache(kind, dir, redisURL string) (Cache, error) {
	switch kind {
	case "", "none":
		return nil, nil
	case "memory":
		return NewMemoryCache(), nil
	case "file":
		if dir == "" {
			dir = filepath.Join(os.TempDir(), "dict-translator-cache")
		}
		return NewFileCache(dir), nil
	case "redis":
		return NewRedisCache(RedisConfig{URL: redisURL})
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", kind)
	}
}
