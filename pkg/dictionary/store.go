package dictionary

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
)

// 预定义错误
var (
	// ErrEmptyTerm 词条为空
	ErrEmptyTerm = errors.New("empty term")

	// ErrEmptyTranslation 译文为空
	ErrEmptyTranslation = errors.New("empty translation")

	// ErrTermNotFound 词条不存在
	ErrTermNotFound = errors.New("term not found")

	// ErrUnknownTier 未知的词典层
	ErrUnknownTier = errors.New("unknown dictionary tier")
)

// Tier 词典层：永久层跨文档共享，覆盖层只作用于当前文档
type Tier int

const (
	TierPermanent Tier = iota
	TierOverride
)

// String 返回层名
func (t Tier) String() string {
	switch t {
	case TierPermanent:
		return "permanent"
	case TierOverride:
		return "override"
	default:
		return "unknown"
	}
}

// Entry 一个词条及其既定译文
type Entry struct {
	Term        string `json:"term"`
	Translation string `json:"translation"`
}

// Store 双层术语词典。
// Store 是两个映射的唯一持有者和唯一写入方；
// 读取方只通过 Merged 拿到合并快照，互不共享可变状态。
type Store struct {
	permanentPath string
	overridePath  string
	permanent     map[string]string
	override      map[string]string
	logger        *zap.Logger
}

// NewStore 创建并立即装载双层词典。
// 文件缺失或无法解析时对应层装载为空映射：词典的缺席绝不阻断翻译。
func NewStore(permanentPath, overridePath string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		permanentPath: permanentPath,
		overridePath:  overridePath,
		logger:        logger,
	}
	s.permanent = s.loadFile(permanentPath, TierPermanent)
	s.override = s.loadFile(overridePath, TierOverride)
	return s
}

// loadFile 装载一层词典文件，任何失败都退化为空映射并记录警告
func (s *Store) loadFile(path string, tier Tier) map[string]string {
	if path == "" {
		return map[string]string{}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("词典文件读取失败，按空词典处理",
				zap.String("tier", tier.String()),
				zap.String("path", path),
				zap.Error(err))
		}
		return map[string]string{}
	}

	entries := map[string]string{}
	if err := json.Unmarshal(data, &entries); err != nil {
		// 旧格式：{"dictionary": {...}} 包装一层
		var wrapped struct {
			Dictionary map[string]string `json:"dictionary"`
		}
		if err2 := json.Unmarshal(data, &wrapped); err2 == nil && wrapped.Dictionary != nil {
			return wrapped.Dictionary
		}
		s.logger.Warn("词典文件解析失败，按空词典处理",
			zap.String("tier", tier.String()),
			zap.String("path", path),
			zap.Error(err))
		return map[string]string{}
	}

	return entries
}

// Merged 返回合并视图的快照：永久层 ∪ 覆盖层，重复键以覆盖层为准
func (s *Store) Merged() map[string]string {
	merged := make(map[string]string, len(s.permanent)+len(s.override))
	for term, translation := range s.permanent {
		merged[term] = translation
	}
	for term, translation := range s.override {
		merged[term] = translation
	}
	return merged
}

// Add 向指定层写入词条并立即落盘。
// 空词条或空译文不做任何修改，返回失败指示。
func (s *Store) Add(term, translation string, tier Tier) error {
	if term == "" {
		return ErrEmptyTerm
	}
	if translation == "" {
		return ErrEmptyTranslation
	}

	m, err := s.tierMap(tier)
	if err != nil {
		return err
	}
	m[term] = translation

	return s.Persist(tier)
}

// Remove 从指定层删除词条并立即落盘。
// 空词条或不存在的词条不做任何修改，返回失败指示。
func (s *Store) Remove(term string, tier Tier) error {
	if term == "" {
		return ErrEmptyTerm
	}

	m, err := s.tierMap(tier)
	if err != nil {
		return err
	}
	if _, ok := m[term]; !ok {
		return ErrTermNotFound
	}
	delete(m, term)

	return s.Persist(tier)
}

// Persist 把指定层写回其文件，键按字典序排列保证输出稳定
func (s *Store) Persist(tier Tier) error {
	m, err := s.tierMap(tier)
	if err != nil {
		return err
	}
	path := s.tierPath(tier)
	if path == "" {
		// 未配置路径的层只存在于内存中
		return nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create dictionary dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal dictionary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write dictionary file: %w", err)
	}

	return nil
}

// Entries 返回指定层的词条列表，按词条字典序排列
func (s *Store) Entries(tier Tier) []Entry {
	m, err := s.tierMap(tier)
	if err != nil {
		return nil
	}

	terms := make([]string, 0, len(m))
	for term := range m {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	entries := make([]Entry, 0, len(terms))
	for _, term := range terms {
		entries = append(entries, Entry{Term: term, Translation: m[term]})
	}
	return entries
}

// Count 返回指定层的词条数
func (s *Store) Count(tier Tier) int {
	m, err := s.tierMap(tier)
	if err != nil {
		return 0
	}
	return len(m)
}

func (s *Store) tierMap(tier Tier) (map[string]string, error) {
	switch tier {
	case TierPermanent:
		return s.permanent, nil
	case TierOverride:
		return s.override, nil
	default:
		return nil, ErrUnknownTier
	}
}

func (s *Store) tierPath(tier Tier) string {
	if tier == TierPermanent {
		return s.permanentPath
	}
	return s.overridePath
}
