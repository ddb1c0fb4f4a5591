package grouping

import (
	"regexp"
	"strings"

	"github.com/artem13815/jobdash/pkg/nlp"
)

var (
	reGenderMarker = regexp.MustCompile(`(?i)\b(?:m/f/d|m/w/d|w/m/d|f/m/x|f/m/d|male/female/diverse)\b|\ball genders\b`)
	reSeniority    = regexp.MustCompile(`(?i)\b(?:junior|senior|lead|principal|staff)\b`)
	reEmptyParens  = regexp.MustCompile(`\(\s*\)|\[\s*\]`)
	reSpaces       = regexp.MustCompile(`\s+`)
)

// NormalizeTitle is the display/grouping form of a title: lower case,
// without seniority words and gender markers.
func NormalizeTitle(title string) string {
	t := nlp.CollapseSpaces(title)
	if t == "" {
		return "unknown"
	}
	t = reGenderMarker.ReplaceAllString(t, "")
	t = reSeniority.ReplaceAllString(t, "")
	t = reEmptyParens.ReplaceAllString(t, "")
	t = reSpaces.ReplaceAllString(t, " ")
	t = strings.Trim(t, " -–|,/")
	if t == "" {
		return "unknown"
	}
	return t
}

// Seniority levels. "lead" is not a level here: in titles it is a role word
// ("Team Lead") and is matched through roleSynonyms.
var seniorityLevels = map[string]string{
	"junior":      "junior",
	"jr":          "junior",
	"entry":       "junior",
	"intern":      "intern",
	"werkstudent": "intern",
	"mid":         "mid",
	"senior":      "senior",
	"sr":          "senior",
	"principal":   "principal",
	"staff":       "staff",
}

var roleSynonyms = [][]string{
	{"developer", "engineer", "programmer", "coder", "entwickler"},
	{"manager", "lead", "director", "head", "leiter"},
	{"administrator", "admin", "sysadmin"},
}

var titleStopwords = map[string]struct{}{
	"and": {}, "und": {}, "of": {}, "for": {}, "the": {}, "in": {}, "im": {},
	"with": {}, "mit": {}, "all": {}, "genders": {}, "gn": {},
}

type titleShape struct {
	level string
	words map[string]struct{}
}

func shapeTitle(title string) titleShape {
	s := titleShape{words: map[string]struct{}{}}
	for _, tok := range nlp.TokensList(nlp.NormalizeText(title)) {
		if lvl, ok := seniorityLevels[tok]; ok {
			if s.level == "" {
				s.level = lvl
			}
			continue
		}
		if len([]rune(tok)) < 2 {
			continue
		}
		if _, stop := titleStopwords[tok]; stop {
			continue
		}
		s.words[tok] = struct{}{}
	}
	return s
}

func roleGroup(word string) int {
	for i, group := range roleSynonyms {
		for _, w := range group {
			if w == word {
				return i
			}
		}
	}
	return -1
}

// similarTitles is the offline title test.
func similarTitles(a, b string) bool {
	sa, sb := shapeTitle(a), shapeTitle(b)
	if sa.level != "" && sb.level != "" && sa.level != sb.level {
		return false
	}
	if len(sa.words) == 0 || len(sb.words) == 0 {
		return len(sa.words) == len(sb.words) && nlp.CollapseSpaces(a) == nlp.CollapseSpaces(b)
	}

	shared := 0
	for w := range sa.words {
		if _, ok := sb.words[w]; ok {
			shared++
		}
	}
	if shared >= 2 || (shared == len(sa.words) && shared == len(sb.words)) {
		return true
	}

	// Role synonyms: "software engineer" ~ "software developer", but the
	// rest of the title still has to agree ("frontend" vs "backend").
	restA, groupsA := splitRoles(sa.words)
	restB, groupsB := splitRoles(sb.words)
	commonRole := false
	for g := range groupsA {
		if _, ok := groupsB[g]; ok {
			commonRole = true
			break
		}
	}
	if !commonRole {
		return false
	}
	if len(restA) == 0 && len(restB) == 0 {
		return true
	}
	for w := range restA {
		if _, ok := restB[w]; ok {
			return true
		}
	}
	return false
}

func splitRoles(words map[string]struct{}) (rest map[string]struct{}, groups map[int]struct{}) {
	rest = map[string]struct{}{}
	groups = map[int]struct{}{}
	for w := range words {
		if g := roleGroup(w); g >= 0 {
			groups[g] = struct{}{}
			continue
		}
		rest[w] = struct{}{}
	}
	return rest, groups
}

// Seniority returns the explicit level named in a title, or "".
func Seniority(title string) string {
	return shapeTitle(title).level
}
