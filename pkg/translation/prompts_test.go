package translation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildInstructions(t *testing.T) {
	pb := NewPromptBuilder("Japanese", "Chinese", "***")
	instructions := pb.BuildInstructions()

	assert.Contains(t, instructions, "from Japanese to Chinese")
	assert.Contains(t, instructions, "wrapped in *** markers")
	assert.Contains(t, instructions, "paragraph structure and line breaks")
	assert.Contains(t, instructions, "Output only the translation")
}

func TestBuildInstructionsCustomDelimiter(t *testing.T) {
	pb := NewPromptBuilder("English", "Chinese", "@@@")
	instructions := pb.BuildInstructions()

	assert.Contains(t, instructions, "@@@")
	assert.NotContains(t, instructions, "***")
}

func TestBuildInstructionsExtra(t *testing.T) {
	pb := NewPromptBuilder("Japanese", "Chinese", "***")
	pb.AddInstruction("Use formal register.")
	pb.AddInstruction("Keep numbers in half-width form.")

	instructions := pb.BuildInstructions()
	assert.Contains(t, instructions, "5. Use formal register.")
	assert.Contains(t, instructions, "6. Keep numbers in half-width form.")
}

func TestExtractTranslation(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{"clean response untouched", "你好，世界", "你好，世界"},
		{"english prefix", "Here is the translation:\n你好", "你好"},
		{"chinese prefix", "译文：你好", "你好"},
		{"code fence", "```\n你好，世界\n```", "你好，世界"},
		{"prefix then fence", "Translation:\n```\n你好\n```", "你好"},
		{"preserves internal blank lines", "第一段\n\n第二段", "第一段\n\n第二段"},
		{"no wrapper keeps whitespace", "  縮こまった本文", "  縮こまった本文"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTranslation(tt.response))
		})
	}
}

func TestExtractTranslationGuardedContentIntact(t *testing.T) {
	response := "Here's the translation:\n***北京***欢迎你"
	result := ExtractTranslation(response)

	assert.Equal(t, "***北京***欢迎你", result)
	assert.Equal(t, 2, strings.Count(result, "***"))
}
