package resume

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"time"
)

var reYearsMention = regexp.MustCompile(`(?i)(\d{1,2})\+?\s*(?:years?|yrs?|jahre?n?)\s+(?:of\s+)?(?:[a-z]+\s+)?(?:experience|erfahrung|berufserfahrung)`)

type monthSpan struct{ from, to int }

// ExtractExperienceYears prefers the parsed job history and falls back to
// "N years of experience" mentions.
func ExtractExperienceYears(text string) int {
	return experienceYearsAt(text, ExtractJobHistory(text), time.Now())
}

func experienceYearsAt(text string, history []HistoryEntry, now time.Time) int {
	if months := HistoryMonths(history, now); months > 0 {
		return int(math.Round(float64(months) / 12))
	}
	return mentionedYears(text)
}

// HistoryMonths sums the months covered by the entries, counting overlapping
// periods once. Entries without two parsable dates or with a non-positive
// span are ignored.
func HistoryMonths(history []HistoryEntry, now time.Time) int {
	spans := make([]monthSpan, 0, len(history))
	for _, h := range history {
		from, ok := monthIndex(h.Start, now)
		if !ok {
			continue
		}
		to, ok := monthIndex(h.End, now)
		if !ok || to <= from {
			continue
		}
		spans = append(spans, monthSpan{from: from, to: to})
	}
	if len(spans) == 0 {
		return 0
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].from < spans[j].from })

	total := 0
	cur := spans[0]
	for _, s := range spans[1:] {
		if s.from <= cur.to {
			if s.to > cur.to {
				cur.to = s.to
			}
			continue
		}
		total += cur.to - cur.from
		cur = s
	}
	total += cur.to - cur.from
	return total
}

func mentionedYears(text string) int {
	best := 0
	for _, m := range reYearsMention.FindAllStringSubmatch(text, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n > best && n < 60 {
			best = n
		}
	}
	return best
}
