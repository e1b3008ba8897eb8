package translator

import "unicode"

// DetectLanguage 按假名与汉字的出现判断文本语言，返回 ja、zh 或 other。
// 日文混用假名和汉字，出现假名即判为日文；只有汉字时判为中文。
func DetectLanguage(text string) string {
	kana, han := 0, 0
	for _, r := range text {
		switch {
		case unicode.In(r, unicode.Hiragana, unicode.Katakana):
			kana++
		case unicode.Is(unicode.Han, r):
			han++
		}
	}

	switch {
	case kana > 0:
		return "ja"
	case han > 0:
		return "zh"
	default:
		return "other"
	}
}

// ResolveLanguages 填补未指定的语言设置。
// 源语言按文本内容检测；目标语言按语言对取默认：日译中、中译日、其余译中。
func ResolveLanguages(source, target, text string) (string, string) {
	if source == "" {
		switch DetectLanguage(text) {
		case "ja":
			source = "Japanese"
		case "zh":
			source = "Chinese"
		default:
			source = "English"
		}
	}

	if target == "" {
		switch source {
		case "Japanese":
			target = "Chinese"
		case "Chinese":
			target = "Japanese"
		default:
			target = "Chinese"
		}
	}
	return source, target
}
