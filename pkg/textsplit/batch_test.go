package textsplit

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blockOf(s string) Block {
	return Block{Content: s}
}

func TestBatchBlocks_Greedy(t *testing.T) {
	t.Run("Three Blocks Of Thirty", func(t *testing.T) {
		// 30+30 > 50，每块各自成批
		blocks := []Block{
			blockOf(strings.Repeat("A", 30)),
			blockOf(strings.Repeat("B", 30)),
			blockOf(strings.Repeat("C", 30)),
		}

		batches := BatchBlocks(blocks, 50)

		require.Len(t, batches, 3)
		for i, batch := range batches {
			assert.Len(t, batch.Blocks, 1, "batch %d", i)
			assert.LessOrEqual(t, batch.ContentLength(), 50)
		}
		assert.Equal(t, blocks[0].Content, batches[0].Blocks[0].Content)
		assert.Equal(t, blocks[1].Content, batches[1].Blocks[0].Content)
		assert.Equal(t, blocks[2].Content, batches[2].Blocks[0].Content)
	})

	t.Run("Blocks Fit Together", func(t *testing.T) {
		blocks := []Block{
			blockOf(strings.Repeat("あ", 20)),
			blockOf(strings.Repeat("い", 20)),
			blockOf(strings.Repeat("う", 20)),
		}

		batches := BatchBlocks(blocks, 45)

		require.Len(t, batches, 2)
		assert.Len(t, batches[0].Blocks, 2)
		assert.Len(t, batches[1].Blocks, 1)
	})

	t.Run("Single Small Block", func(t *testing.T) {
		batches := BatchBlocks([]Block{blockOf("短い")}, 100)

		require.Len(t, batches, 1)
		assert.Equal(t, "短い", batches[0].Blocks[0].Content)
	})

	t.Run("Empty Input", func(t *testing.T) {
		assert.Empty(t, BatchBlocks(nil, 100))
	})
}

func TestBatchBlocks_LengthBound(t *testing.T) {
	// 分批后任何批次都不得超过 maxLength
	blocks := Segment(strings.Repeat("これは文です。\n\n", 40))
	maxLength := 30

	batches := BatchBlocks(blocks, maxLength)

	require.NotEmpty(t, batches)
	for i, batch := range batches {
		assert.LessOrEqual(t, batch.ContentLength(), maxLength, "batch %d", i)
	}
}

func TestBatchBlocks_OversizedBlock(t *testing.T) {
	t.Run("Split At Sentence End", func(t *testing.T) {
		// 窗口内最后一个句末标点之后切分
		content := "一文目です。二文目です。三文目はかなり長い文になっています。"
		blocks := []Block{{Content: content, TrailingSeparator: "\n\n"}}
		maxLength := 15

		batches := BatchBlocks(blocks, maxLength)

		require.Greater(t, len(batches), 1)
		var joined strings.Builder
		for _, batch := range batches {
			require.Len(t, batch.Blocks, 1)
			assert.LessOrEqual(t, batch.ContentLength(), maxLength)
			joined.WriteString(batch.Blocks[0].Content)
		}
		assert.Equal(t, content, joined.String())
		// 第一片应在句号之后结束
		assert.True(t, strings.HasSuffix(batches[0].Blocks[0].Content, "。"),
			"first piece should end at sentence boundary: %q", batches[0].Blocks[0].Content)
		// 尾随分隔符挂在最后一片上
		assert.Equal(t, "\n\n", batches[len(batches)-1].Blocks[0].TrailingSeparator)
	})

	t.Run("Split At Line Break", func(t *testing.T) {
		// 没有句末标点时退回换行符
		content := "一行目の内容\n二行目の内容\n三行目の内容"
		blocks := []Block{blockOf(content)}
		maxLength := 10

		batches := BatchBlocks(blocks, maxLength)

		require.Greater(t, len(batches), 1)
		assert.True(t, strings.HasSuffix(batches[0].Blocks[0].Content, "\n"),
			"first piece should end at line break: %q", batches[0].Blocks[0].Content)
		assert.Equal(t, content, JoinBatches(batches))
	})

	t.Run("Hard Cut", func(t *testing.T) {
		// 标点も改行もない場合は maxLength で強制切断
		content := strings.Repeat("あ", 25)
		batches := BatchBlocks([]Block{blockOf(content)}, 10)

		require.Len(t, batches, 3)
		assert.Equal(t, 10, batches[0].ContentLength())
		assert.Equal(t, 10, batches[1].ContentLength())
		assert.Equal(t, 5, batches[2].ContentLength())
	})

	t.Run("Boundary At Position Zero Ignored", func(t *testing.T) {
		// 先頭だけに句点がある場合、位置 0 の境界は無視して前進する
		content := "。" + strings.Repeat("あ", 20)
		batches := BatchBlocks([]Block{blockOf(content)}, 10)

		require.NotEmpty(t, batches)
		total := 0
		for _, batch := range batches {
			require.Greater(t, batch.ContentLength(), 0)
			assert.LessOrEqual(t, batch.ContentLength(), 10)
			total += batch.ContentLength()
		}
		assert.Equal(t, utf8.RuneCountInString(content), total)
	})

	t.Run("Flushes Current Batch First", func(t *testing.T) {
		blocks := []Block{
			blockOf("短い段落。"),
			blockOf(strings.Repeat("長", 30)),
		}

		batches := BatchBlocks(blocks, 20)

		// 先頭の小さい批次が先に閉じられ、その後に分割片が続く
		require.GreaterOrEqual(t, len(batches), 3)
		assert.Equal(t, "短い段落。", batches[0].Blocks[0].Content)
	})
}

func TestBatchBlocks_PreservesText(t *testing.T) {
	// 全批次の連結はセグメント出力の連結と一致する
	input := "第一段。\n\n第二段はやや長い内容を含みます。\n\n" +
		strings.Repeat("巨大な段落です。", 30) + "\n\n最終段。"
	blocks := Segment(input)

	batches := BatchBlocks(blocks, 40)

	assert.Equal(t, Join(blocks), JoinBatches(batches))
	for i, batch := range batches {
		assert.LessOrEqual(t, batch.ContentLength(), 40, "batch %d", i)
	}
}

func TestBatchBlocks_DefaultMaxLength(t *testing.T) {
	batches := BatchBlocks([]Block{blockOf("内容")}, 0)

	require.Len(t, batches, 1)
}

func TestBatchText(t *testing.T) {
	batch := Batch{Blocks: []Block{
		{Content: "甲", TrailingSeparator: "\n\n"},
		{Content: "乙", TrailingSeparator: ""},
	}}

	assert.Equal(t, "甲\n\n乙", batch.Text())
	assert.Equal(t, 2, batch.ContentLength())
}
