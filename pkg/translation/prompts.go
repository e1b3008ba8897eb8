package translation

import (
	"fmt"
	"strings"
)

// PromptBuilder 提示词构建器
type PromptBuilder struct {
	// 源语言
	SourceLang string
	// 目标语言
	TargetLang string
	// 术语保护定界符
	Delimiter string
	// 额外的指令
	ExtraInstructions []string
}

// NewPromptBuilder 创建提示词构建器
func NewPromptBuilder(sourceLang, targetLang, delimiter string) *PromptBuilder {
	return &PromptBuilder{
		SourceLang:        sourceLang,
		TargetLang:        targetLang,
		Delimiter:         delimiter,
		ExtraInstructions: make([]string, 0),
	}
}

// AddInstruction 添加额外指令
func (pb *PromptBuilder) AddInstruction(instruction string) *PromptBuilder {
	pb.ExtraInstructions = append(pb.ExtraInstructions, instruction)
	return pb
}

// BuildInstructions 构建翻译指令。
// 定界符规则告诉模型已标记的术语译文必须原样保留，
// 否则还原阶段无法剥掉定界符。
func (pb *PromptBuilder) BuildInstructions() string {
	prompt := fmt.Sprintf(`You are a professional translator. Translate the text from %s to %s.

Rules:
1. Translate the text from %s to %s accurately while preserving the original meaning and tone.
2. Any content wrapped in %s markers is already translated. Copy it into your output EXACTLY as-is, including the %s markers themselves. Do not translate, rephrase, or remove it.
3. Preserve the paragraph structure and line breaks of the original text.
4. Output only the translation. Do not add explanations, notes, or commentary.`,
		pb.SourceLang, pb.TargetLang,
		pb.SourceLang, pb.TargetLang,
		pb.Delimiter, pb.Delimiter)

	for i, instruction := range pb.ExtraInstructions {
		prompt += fmt.Sprintf("\n%d. %s", i+5, instruction)
	}

	return prompt
}

// ExtractTranslation 从模型响应中提取纯翻译内容。
// 有些模型会在翻译前后添加说明或代码块标记；
// 没有发现这类包装时原样返回，保留正文自身的空白。
func ExtractTranslation(response string) string {
	prefixes := []string{
		"Here is the translation:",
		"Here's the translation:",
		"Translation:",
		"Translated text:",
		"The translation is:",
		"翻译结果：",
		"译文：",
	}

	result := strings.TrimSpace(response)
	cleaned := false

	for _, prefix := range prefixes {
		if strings.HasPrefix(result, prefix) {
			result = strings.TrimSpace(strings.TrimPrefix(result, prefix))
			cleaned = true
		}
	}

	// 移除包裹整个响应的代码块标记
	if strings.HasPrefix(result, "```") && strings.HasSuffix(result, "```") {
		lines := strings.Split(result, "\n")
		if len(lines) >= 3 {
			result = strings.TrimSpace(strings.Join(lines[1:len(lines)-1], "\n"))
			cleaned = true
		}
	}

	if !cleaned {
		return response
	}
	return result
}
