package resume

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	maxTasksPerEntry = 10
	taskLookahead    = 25
)

// Building blocks of the position header pattern.
const (
	fieldSep  = `\s*(?:\||@|,|\s[-–—]\s|\s+at\s+|\s+bei\s+)\s*`
	rangeSep  = `\s*(?:to|bis|until|-|–|—)\s*`
	monthWord = `(?:jan|feb|mar|mär|apr|may|mai|jun|jul|aug|sep|oct|okt|nov|dec|dez)[a-zä]*\.?`
	dateExpr  = `(?:\d{1,2}[./-]\d{4}|\d{4}[./-]\d{1,2}|` + monthWord + `\s+\d{4}|\d{4})`
	openEnd   = `(?:present|current|currently|now|today|heute|aktuell|jetzt|ongoing)`
)

var (
	// One pattern for every "TITLE | COMPANY | START TO END | LOCATION" shape.
	reEntry = regexp.MustCompile(`(?i)^(?P<title>[^|@]+?)` + fieldSep +
		`(?P<company>[^|@]+?)` + fieldSep +
		`\(?(?P<start>` + dateExpr + `)` + rangeSep + `(?P<end>` + dateExpr + `|` + openEnd + `)\)?` +
		`(?:` + fieldSep + `(?P<location>.+))?$`)
	reTrailingSep = regexp.MustCompile(`\s*(?:\||@|,|[-–—])\s*$`)
	reBullet      = regexp.MustCompile(`^\s*(?:[•●▪■◦·○*–—-]|\d+[.)])\s+`)

	reMonthYear = regexp.MustCompile(`^(\d{1,2})[./-](\d{4})$`)
	reYearMonth = regexp.MustCompile(`^(\d{4})[./-](\d{1,2})$`)
	reYearOnly  = regexp.MustCompile(`^(\d{4})$`)
	reWordMonth = regexp.MustCompile(`(?i)^(` + monthWord + `)\s+(\d{4})$`)
	reOpenEnd   = regexp.MustCompile(`(?i)^` + openEnd + `$`)
)

var monthNames = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "mär": 3, "apr": 4, "may": 5, "mai": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "okt": 10, "nov": 11, "dec": 12, "dez": 12,
}

const presentMarker = "present"

// ExtractJobHistory scans the text line by line for position headers and the
// bullet lines that follow them. Lines that do not parse are skipped.
func ExtractJobHistory(text string) []HistoryEntry {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := []HistoryEntry{}
	seen := map[string]struct{}{}

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" || reBullet.MatchString(lines[i]) {
			continue
		}
		entry, ok := matchEntry(line)
		consumed := i
		if !ok && reTrailingSep.MatchString(line) && i+1 < len(lines) {
			// wrapped header: "Title |" on one line, the rest on the next
			joined := reTrailingSep.ReplaceAllString(line, "") + " | " + strings.TrimSpace(lines[i+1])
			entry, ok = matchEntry(joined)
			if ok {
				consumed = i + 1
			}
		}
		if !ok {
			continue
		}
		key := strings.ToLower(strings.Join([]string{entry.Title, entry.Company, entry.Start, entry.End}, "\x00"))
		if _, dup := seen[key]; dup {
			i = consumed
			continue
		}
		seen[key] = struct{}{}
		entry.Tasks = collectTasks(lines, consumed+1)
		out = append(out, entry)
		i = consumed
	}
	return out
}

func matchEntry(line string) (HistoryEntry, bool) {
	m := reEntry.FindStringSubmatch(line)
	if m == nil {
		return HistoryEntry{}, false
	}
	get := func(name string) string {
		idx := reEntry.SubexpIndex(name)
		if idx < 0 || idx >= len(m) {
			return ""
		}
		return strings.TrimSpace(m[idx])
	}
	e := HistoryEntry{
		Title:    get("title"),
		Company:  get("company"),
		Start:    normalizeDate(get("start")),
		End:      normalizeDate(get("end")),
		Location: strings.Trim(get("location"), " |,()"),
		Tasks:    []string{},
	}
	if e.Title == "" || e.Company == "" {
		return HistoryEntry{}, false
	}
	return e, true
}

func collectTasks(lines []string, from int) []string {
	tasks := []string{}
	for j := from; j < len(lines) && j < from+taskLookahead && len(tasks) < maxTasksPerEntry; j++ {
		raw := lines[j]
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if reBullet.MatchString(raw) {
			if t := strings.TrimSpace(reBullet.ReplaceAllString(raw, "")); t != "" {
				tasks = append(tasks, t)
			}
			continue
		}
		// next header or section heading ends the block
		if _, ok := matchEntry(line); ok || isHeading(line) || reTrailingSep.MatchString(line) {
			break
		}
		if len(tasks) > 0 {
			break
		}
	}
	return tasks
}

// normalizeDate maps the supported date spellings to "YYYY-MM" or
// "present". Unknown input is returned unchanged.
func normalizeDate(s string) string {
	s = strings.TrimSpace(strings.Trim(s, "()"))
	if s == "" {
		return ""
	}
	if reOpenEnd.MatchString(s) {
		return presentMarker
	}
	if m := reMonthYear.FindStringSubmatch(s); m != nil {
		return formatYM(atoi(m[2]), atoi(m[1]), s)
	}
	if m := reYearMonth.FindStringSubmatch(s); m != nil {
		return formatYM(atoi(m[1]), atoi(m[2]), s)
	}
	if m := reYearOnly.FindStringSubmatch(s); m != nil {
		return formatYM(atoi(m[1]), 1, s)
	}
	if m := reWordMonth.FindStringSubmatch(s); m != nil {
		word := []rune(strings.ToLower(m[1]))
		if len(word) >= 3 {
			if month, ok := monthNames[string(word[:3])]; ok {
				return formatYM(atoi(m[2]), month, s)
			}
		}
	}
	return s
}

func formatYM(year, month int, raw string) string {
	if month < 1 || month > 12 || year < 1950 || year > 2100 {
		return raw
	}
	return fmt.Sprintf("%04d-%02d", year, month)
}

// monthIndex converts a normalized date into a month counter. "present"
// resolves against now.
func monthIndex(s string, now time.Time) (int, bool) {
	if s == presentMarker {
		return now.Year()*12 + int(now.Month()) - 1, true
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, false
	}
	return t.Year()*12 + int(t.Month()) - 1, true
}

func isHeading(line string) bool {
	l := strings.ToLower(strings.Trim(strings.TrimSpace(line), ":"))
	for _, h := range educationHeadings {
		if l == h {
			return true
		}
	}
	for _, h := range otherHeadings {
		if l == h {
			return true
		}
	}
	return false
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
