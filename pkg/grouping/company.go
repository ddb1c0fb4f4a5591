package grouping

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/artem13815/jobdash/pkg/nlp"
)

// companyRatio is the minimum edit-distance similarity for two stripped names.
const companyRatio = 0.8

var legalSuffixes = map[string]struct{}{
	"gmbh": {}, "ltd": {}, "inc": {}, "corp": {}, "ag": {}, "se": {}, "plc": {},
	"llc": {}, "co": {}, "kg": {}, "and": {}, "und": {},
}

// NormalizeCompany drops punctuation ("&" included) and legal suffixes.
func NormalizeCompany(name string) string {
	toks := nlp.TokensList(nlp.NormalizeText(name))
	kept := toks[:0]
	for _, t := range toks {
		if _, ok := legalSuffixes[t]; ok {
			continue
		}
		kept = append(kept, t)
	}
	return strings.Join(kept, " ")
}

// similarCompanies is the offline company test. Empty names never match.
func similarCompanies(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	if strings.EqualFold(a, b) {
		return true
	}
	na, nb := NormalizeCompany(a), NormalizeCompany(b)
	if na == "" || nb == "" {
		return false
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return true
	}
	return similarity(na, nb) >= companyRatio
}

// similarity is 1 - distance/maxLen over runes.
func similarity(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := max(la, lb)
	if longest == 0 {
		return 1
	}
	d := levenshtein.ComputeDistance(a, b)
	return 1 - float64(d)/float64(longest)
}
