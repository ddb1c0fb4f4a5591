package resume

import (
	"regexp"
	"strings"
)

var (
	reDegreeIn  = regexp.MustCompile(`(?i)^(.+?)\s+(?:in|im)\s+(.+)$`)
	reFieldStop = regexp.MustCompile(`\s*(?:\||,|\s[-–—]\s|\(|\d{4}).*$`)
)

// ExtractEducation looks for degree lines inside the education section, or
// in the whole text when no such section exists.
func ExtractEducation(text string) []EducationItem {
	out := []EducationItem{}
	seen := map[string]struct{}{}
	for _, line := range educationSection(text) {
		line = strings.TrimSpace(reBullet.ReplaceAllString(line, ""))
		if line == "" || !hasDegreeKeyword(line) {
			continue
		}
		item := splitDegree(line)
		key := strings.ToLower(item.Degree + "|" + item.Field)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

func educationSection(text string) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	start := -1
	for i, l := range lines {
		if isEducationHeading(l) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return lines
	}
	end := len(lines)
	for i := start; i < len(lines); i++ {
		if isHeading(lines[i]) && !isEducationHeading(lines[i]) {
			end = i
			break
		}
	}
	return lines[start:end]
}

func isEducationHeading(line string) bool {
	l := strings.ToLower(strings.Trim(strings.TrimSpace(line), ":"))
	for _, h := range educationHeadings {
		if l == h {
			return true
		}
	}
	return false
}

func hasDegreeKeyword(line string) bool {
	l := strings.ToLower(line)
	for _, k := range degreeKeywords {
		if strings.Contains(l, k) {
			return true
		}
	}
	return false
}

func splitDegree(line string) EducationItem {
	head := line
	if i := strings.Index(head, "|"); i > 0 {
		head = strings.TrimSpace(head[:i])
	}
	if m := reDegreeIn.FindStringSubmatch(head); m != nil {
		return EducationItem{
			Degree: strings.TrimSpace(m[1]),
			Field:  strings.TrimSpace(reFieldStop.ReplaceAllString(m[2], "")),
		}
	}
	return EducationItem{Degree: strings.TrimSpace(reFieldStop.ReplaceAllString(head, ""))}
}
