package resume

import (
	"sort"
	"strings"

	"github.com/artem13815/jobdash/pkg/nlp"
)

// ExtractSkills scans text for the known vocabulary. Long terms match as
// case-insensitive substrings; terms of up to three characters ("r", "go",
// "ai") must appear as whole words.
func ExtractSkills(text string) []string {
	lower := strings.ToLower(text)
	normalized := nlp.NormalizeText(text)
	found := map[string]struct{}{}
	for _, terms := range skillVocabulary {
		for _, term := range terms {
			if containsTerm(lower, normalized, term) {
				found[term] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(found))
	for s := range found {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func containsTerm(lower, normalized, term string) bool {
	if len(term) <= 3 {
		return nlp.ContainsPhrase(normalized, nlp.NormalizeSkill(term))
	}
	return strings.Contains(lower, term)
}

// MatchSkills compares the skills a posting mentions with the profile.
// matching are job skills the candidate has, missing are job skills the
// candidate lacks. Aliases (k8s/kubernetes, postgres/postgresql) count.
func MatchSkills(p CandidateProfile, title, description string) (matching, missing []string) {
	have := nlp.NormalizeText(strings.Join(p.Skills, " | "))
	matching = []string{}
	missing = []string{}
	for _, s := range JobSkills(title, description) {
		if nlp.HasSkill(have, s) {
			matching = append(matching, s)
		} else {
			missing = append(missing, s)
		}
	}
	return matching, missing
}

// JobSkills returns vocabulary terms mentioned by a job posting.
func JobSkills(title, description string) []string {
	return ExtractSkills(title + "\n" + description)
}
