package document

import "go.uber.org/zap"

// Reconstruct 把译文段落与原文格式记录按位置对齐，生成输出文档。
// 记录数与段落数不一致时记录告警并尽力对齐：多出的段落使用默认格式。
// preserveFormat为false时完全忽略格式记录。
func Reconstruct(records []FormatRecord, paragraphs []string, preserveFormat bool, logger *zap.Logger) *Document {
	if logger == nil {
		logger = zap.NewNop()
	}

	if !preserveFormat {
		return &Document{Paragraphs: paragraphs}
	}

	if len(records) > 0 && len(records) != len(paragraphs) {
		logger.Warn("格式记录数与段落数不一致，按位置尽力对齐",
			zap.Int("records", len(records)),
			zap.Int("paragraphs", len(paragraphs)))
	}

	out := make([]FormatRecord, len(paragraphs))
	for i := range paragraphs {
		if i < len(records) {
			out[i] = records[i]
		}
	}

	return &Document{Paragraphs: paragraphs, Records: out}
}
