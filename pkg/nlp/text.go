package nlp

import (
	"strings"
)

// Tokens возвращает уникальные токены нормализованного текста.
func Tokens(normalized string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, t := range TokensList(normalized) {
		out[t] = struct{}{}
	}
	return out
}

// TokensList режет нормализованную строку на токены с сохранением порядка.
func TokensList(normalized string) []string {
	if normalized == "" {
		return []string{}
	}
	return strings.Fields(normalized)
}

// ContainsPhrase проверяет наличие фразы (уже нормализованной) как целых слов.
// Пример: "rest api" найдётся в " ... rest api ..." но не в " ... rest apis ..."
func ContainsPhrase(normalizedText, normalizedPhrase string) bool {
	if normalizedPhrase == "" {
		return false
	}
	// границы слов: оборачиваем пробелами
	hay := " " + normalizedText + " "
	needle := " " + normalizedPhrase + " "
	return strings.Contains(hay, needle)
}

// CountWords считает токены текста, входящие в словарь words (целые слова).
func CountWords(text string, words map[string]struct{}) int {
	n := 0
	for _, t := range TokensList(NormalizeText(text)) {
		if _, ok := words[t]; ok {
			n++
		}
	}
	return n
}

// WordSet собирает словарь для CountWords.
func WordSet(words ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[strings.ToLower(w)] = struct{}{}
	}
	return out
}

// ContainsAny проверяет вхождение любой из подстрок без учёта регистра.
func ContainsAny(text string, needles []string) bool {
	lower := strings.ToLower(text)
	for _, n := range needles {
		if n != "" && strings.Contains(lower, strings.ToLower(n)) {
			return true
		}
	}
	return false
}
