package dictionary

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Predefined 预置术语包：随项目分发的 TOML 词表，可整体导入某一层
type Predefined struct {
	SourceLang   string            `toml:"source_lang"`
	TargetLang   string            `toml:"target_lang"`
	Translations map[string]string `toml:"translations"`
}

// LoadPredefined 装载预置术语包文件
func LoadPredefined(path string) (*Predefined, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("predefined terms file not found: %s", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read predefined terms file: %w", err)
	}

	p := &Predefined{}
	if err := toml.Unmarshal(content, p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal predefined terms: %w", err)
	}
	if p.SourceLang == "" || p.TargetLang == "" {
		return nil, fmt.Errorf("predefined terms file is missing source_lang or target_lang")
	}

	return p, nil
}

// ImportPredefined 把术语包并入指定层并落盘一次，返回导入的词条数。
// 空词条或空译文跳过，不计入结果。
func (s *Store) ImportPredefined(p *Predefined, tier Tier) (int, error) {
	m, err := s.tierMap(tier)
	if err != nil {
		return 0, err
	}

	imported := 0
	for term, translation := range p.Translations {
		if term == "" || translation == "" {
			continue
		}
		m[term] = translation
		imported++
	}

	if imported > 0 {
		if err := s.Persist(tier); err != nil {
			return imported, err
		}
	}
	return imported, nil
}

// Preload 把术语包并入指定层但不落盘，返回并入的词条数。
// 启动时按配置装载术语包走这里，只影响本次运行，不改词典文件。
func (s *Store) Preload(p *Predefined, tier Tier) int {
	m, err := s.tierMap(tier)
	if err != nil {
		return 0
	}

	loaded := 0
	for term, translation := range p.Translations {
		if term == "" || translation == "" {
			continue
		}
		m[term] = translation
		loaded++
	}
	return loaded
}
