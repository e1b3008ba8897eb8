package dictionary

import (
	"regexp"
	"sort"
	"strings"
)

// 候选来源
const (
	ReasonKatakana  = "katakana"
	ReasonHonorific = "honorific"
	ReasonFrequent  = "frequent"
)

// Candidate 启发式扫描得到的候选术语。
// 候选只是建议：调用方（通常是 CLI）展示给用户，绝不自动入库。
type Candidate struct {
	Term   string
	Count  int
	Reason string
}

var (
	// 片假名连跑，多为外来语和专有名词
	katakanaRE = regexp.MustCompile(`[ァ-ヶー]{2,}`)

	// 敬称后缀前的词，多为人名
	honorificRE = regexp.MustCompile(`[一-龯ぁ-んァ-ヶー]{2,}(さん|くん|君|様|先生|氏)`)

	// 反复出现的汉字连跑
	cjkRunRE = regexp.MustCompile(`[一-龥]{2,10}`)
)

// 高频判定的最低出现次数
const frequentMinCount = 2

// DiscoverTerms 在文本中启发式查找候选术语。
// known 中已有的词条会被跳过。结果按出现次数降序、同次数按词条字典序排列。
func DiscoverTerms(text string, known map[string]string) []Candidate {
	if text == "" {
		return nil
	}

	seen := map[string]*Candidate{}

	note := func(term, reason string, count int) {
		if term == "" {
			return
		}
		if _, ok := known[term]; ok {
			return
		}
		if c, ok := seen[term]; ok {
			if count > c.Count {
				c.Count = count
			}
			return
		}
		seen[term] = &Candidate{Term: term, Count: count, Reason: reason}
	}

	for term, count := range countMatches(katakanaRE.FindAllString(text, -1)) {
		note(term, ReasonKatakana, count)
	}

	for _, m := range honorificRE.FindAllStringSubmatch(text, -1) {
		base := strings.TrimSuffix(m[0], m[1])
		note(base, ReasonHonorific, strings.Count(text, base))
	}

	for term, count := range countMatches(cjkRunRE.FindAllString(text, -1)) {
		if count >= frequentMinCount {
			note(term, ReasonFrequent, count)
		}
	}

	candidates := make([]Candidate, 0, len(seen))
	for _, c := range seen {
		candidates = append(candidates, *c)
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Count != candidates[j].Count {
			return candidates[i].Count > candidates[j].Count
		}
		return candidates[i].Term < candidates[j].Term
	})

	return candidates
}

func countMatches(matches []string) map[string]int {
	counts := map[string]int{}
	for _, m := range matches {
		counts[m]++
	}
	return counts
}
