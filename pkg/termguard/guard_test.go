package termguard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMark_Basic(t *testing.T) {
	g := New("")

	t.Run("Single Term", func(t *testing.T) {
		guarded, repls := g.Mark("東京へ行く", map[string]string{"東京": "北京"})

		assert.Equal(t, "***北京***へ行く", guarded)
		require.Len(t, repls, 1)
		assert.Equal(t, Replacement{Start: 0, End: 2, Term: "東京", Translation: "北京"}, repls[0])
	})

	t.Run("Empty Dictionary", func(t *testing.T) {
		guarded, repls := g.Mark("そのままの文。", nil)

		assert.Equal(t, "そのままの文。", guarded)
		assert.Empty(t, repls)
	})

	t.Run("Empty Text", func(t *testing.T) {
		guarded, repls := g.Mark("", map[string]string{"甲": "乙"})

		assert.Equal(t, "", guarded)
		assert.Empty(t, repls)
	})

	t.Run("No Match", func(t *testing.T) {
		guarded, repls := g.Mark("関係のない文です。", map[string]string{"東京": "北京"})

		assert.Equal(t, "関係のない文です。", guarded)
		assert.Empty(t, repls)
	})
}

func TestMark_LongestFirst(t *testing.T) {
	g := New("")

	// 長い語が前綴の短い語に先取りされないこと
	guarded, repls := g.Mark("日本語です", map[string]string{
		"日本":  "A",
		"日本語": "B",
	})

	assert.Equal(t, "***B***です", guarded)
	require.Len(t, repls, 1)
	assert.Equal(t, "日本語", repls[0].Term)
	assert.Equal(t, "B", repls[0].Translation)
	assert.Equal(t, 0, repls[0].Start)
	assert.Equal(t, 3, repls[0].End)
}

func TestMark_Offsets(t *testing.T) {
	g := New("")

	t.Run("Multiple Terms", func(t *testing.T) {
		guarded, repls := g.Mark("東京と大阪", map[string]string{
			"東京": "北京",
			"大阪": "上海",
		})

		assert.Equal(t, "***北京***と***上海***", guarded)
		require.Len(t, repls, 2)
		// 位置は原文基準で昇順、互いに重ならない
		assert.Equal(t, 0, repls[0].Start)
		assert.Equal(t, 2, repls[0].End)
		assert.Equal(t, "東京", repls[0].Term)
		assert.Equal(t, 3, repls[1].Start)
		assert.Equal(t, 5, repls[1].End)
		assert.Equal(t, "大阪", repls[1].Term)
	})

	t.Run("Repeated Term", func(t *testing.T) {
		_, repls := g.Mark("大阪は大阪", map[string]string{"大阪": "OS"})

		require.Len(t, repls, 2)
		assert.Equal(t, 0, repls[0].Start)
		assert.Equal(t, 2, repls[0].End)
		assert.Equal(t, 3, repls[1].Start)
		assert.Equal(t, 5, repls[1].End)
	})

	t.Run("Sorted And Non Overlapping", func(t *testing.T) {
		text := "冒頭の山田さんが京都で佐藤さんに会った。"
		_, repls := g.Mark(text, map[string]string{
			"山田": "Yamada",
			"佐藤": "Sato",
			"京都": "Kyoto",
		})

		require.Len(t, repls, 3)
		for i := 1; i < len(repls); i++ {
			assert.Greater(t, repls[i].Start, repls[i-1].Start)
			assert.GreaterOrEqual(t, repls[i].Start, repls[i-1].End)
		}
	})
}

func TestMark_TranslationContainsTerm(t *testing.T) {
	g := New("")

	// 译文包含原词条时扫描必须跳过已插入的保护段，不得死循环
	guarded, repls := g.Mark("東京の夜", map[string]string{"東京": "東京都"})

	assert.Equal(t, "***東京都***の夜", guarded)
	require.Len(t, repls, 1)
}

func TestUnmark(t *testing.T) {
	g := New("")

	t.Run("Exact Inverse Of Wrap", func(t *testing.T) {
		for _, s := range []string{"北京", "plain text", "改行\nを含む", ""} {
			wrapped := g.Delimiter() + s + g.Delimiter()
			plain, dangling := g.Unmark(wrapped)
			assert.Equal(t, s, plain)
			assert.Zero(t, dangling)
		}
	})

	t.Run("Multiple Spans", func(t *testing.T) {
		plain, dangling := g.Unmark("***北京***と***上海***へ")

		assert.Equal(t, "北京と上海へ", plain)
		assert.Zero(t, dangling)
	})

	t.Run("No Delimiters", func(t *testing.T) {
		plain, dangling := g.Unmark("ただの訳文です。")

		assert.Equal(t, "ただの訳文です。", plain)
		assert.Zero(t, dangling)
	})

	t.Run("Dangling Delimiter", func(t *testing.T) {
		// 後端が片側の定界符を落とした場合：警告件数を返し、本文は現状維持
		plain, dangling := g.Unmark("壊れた***訳文の残り")

		assert.Equal(t, "壊れた***訳文の残り", plain)
		assert.Equal(t, 1, dangling)
	})

	t.Run("Pair Plus Dangling", func(t *testing.T) {
		plain, dangling := g.Unmark("***北京***のあと***こわれた")

		assert.Equal(t, "北京のあと***こわれた", plain)
		assert.Equal(t, 1, dangling)
	})
}

func TestMarkUnmark_RoundTrip(t *testing.T) {
	g := New("")

	t.Run("Identity Dictionary", func(t *testing.T) {
		// 词条译文与原词相同：往返后得到原文
		text := "日本語の文章を日本語のまま保つ。"
		dict := map[string]string{"日本語": "日本語"}

		guarded, _ := g.Mark(text, dict)
		plain, dangling := g.Unmark(guarded)

		assert.Equal(t, text, plain)
		assert.Zero(t, dangling)
	})

	t.Run("Substituting Dictionary", func(t *testing.T) {
		// 往返结果是译文替换后的文本，定界符全部剥离
		guarded, _ := g.Mark("東京は大きい。", map[string]string{"東京": "北京"})
		plain, dangling := g.Unmark(guarded)

		assert.Equal(t, "北京は大きい。", plain)
		assert.Zero(t, dangling)
		assert.False(t, strings.Contains(plain, g.Delimiter()))
	})
}

func TestGuard_CustomDelimiter(t *testing.T) {
	g := New("@@@")

	guarded, repls := g.Mark("東京へ", map[string]string{"東京": "北京"})

	assert.Equal(t, "@@@北京@@@へ", guarded)
	require.Len(t, repls, 1)

	plain, dangling := g.Unmark(guarded)
	assert.Equal(t, "北京へ", plain)
	assert.Zero(t, dangling)
}

func TestGuard_SkipsEmptyEntries(t *testing.T) {
	g := New("")

	guarded, repls := g.Mark("東京へ行く", map[string]string{
		"":   "ゴミ",
		"東京": "",
	})

	assert.Equal(t, "東京へ行く", guarded)
	assert.Empty(t, repls)
}
