package nlp

import (
	"strings"
)

var aliases = map[string][]string{
	"postgres":   {"postgresql"},
	"postgresql": {"postgres"},
	"k8s":        {"kubernetes"},
	"kubernetes": {"k8s"},
	"golang":     {"go"},
	"go":         {"golang"},
	"js":         {"javascript"},
	"javascript": {"js"},
	"ts":         {"typescript"},
	"typescript": {"ts"},
	"rest":       {"rest api"},
	"rest api":   {"rest"},
	"ci cd":      {"cicd"},
	"cicd":       {"ci cd"},
	"aws":        {"amazon web services"},
	"gcp":        {"google cloud"},
	"azure":      {"microsoft azure"},
	"powershell": {"power shell"},
	"vmware":     {"vsphere"},
	"linux":      {"unix"},
}

// SkillVariants возвращает нормализованные варианты навыка (синонимы/алиасы).
func SkillVariants(skill string) []string {
	base := NormalizeSkill(skill)
	if base == "" {
		return []string{}
	}
	var out []string
	seen := map[string]struct{}{}
	add := func(s string) {
		s = NormalizeSkill(s)
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	add(base)
	for _, a := range aliases[base] {
		add(a)
	}

	// Варианты на уровне токенов (для навыков из нескольких слов)
	parts := strings.Split(base, " ")
	if len(parts) > 1 {
		var expanded []string
		for _, p := range parts {
			expanded = append(expanded, TokenVariants(p)[0])
		}
		add(strings.Join(expanded, " "))
	}
	return out
}

// TokenVariants возвращает варианты токена; сам токен идёт первым.
func TokenVariants(token string) []string {
	t := NormalizeSkill(token)
	if t == "" {
		return []string{""}
	}
	out := []string{t}
	for _, a := range aliases[t] {
		if !strings.Contains(a, " ") {
			out = append(out, a)
		}
	}
	return out
}

// HasSkill проверяет, встречается ли любой вариант навыка целой фразой.
func HasSkill(normalizedText, skill string) bool {
	for _, v := range SkillVariants(skill) {
		if ContainsPhrase(normalizedText, v) {
			return true
		}
	}
	return false
}
