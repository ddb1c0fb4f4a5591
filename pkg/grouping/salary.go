package grouping

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const num = `(\d+(?:[.,]\d+)*)\s*(k)?`

// Tried in order; the first match wins.
var salaryPatterns = []*regexp.Regexp{
	regexp.MustCompile(num + `\s*[-–]\s*` + num + `.*?(?:€|eur|euro)`),
	regexp.MustCompile(`€\s*` + num + `\s*[-–]\s*€?\s*` + num),
	regexp.MustCompile(`up to\s*€?\s*` + num),
	regexp.MustCompile(`(?:starting from|\bab)\s*€?\s*` + num),
}

// ParseSalaryRange extracts a (min, max) yearly range from free text.
// Single bounds ("up to 70k") yield min == max.
func ParseSalaryRange(text string) (lo, hi float64, ok bool) {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return 0, 0, false
	}
	for _, re := range salaryPatterns {
		m := re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		if len(m) == 5 {
			// "55-65k": the suffix on the upper bound covers both.
			k := m[4] != ""
			lo, okLo := parseAmount(m[1], m[2] != "" || k)
			hi, okHi := parseAmount(m[3], k || m[2] != "")
			if !okLo || !okHi {
				continue
			}
			if lo > hi {
				lo, hi = hi, lo
			}
			return lo, hi, true
		}
		v, okV := parseAmount(m[1], m[2] != "")
		if !okV {
			continue
		}
		return v, v, true
	}
	return 0, 0, false
}

// parseAmount reads "55.000", "55,000" or, with k, "55.5".
func parseAmount(raw string, thousands bool) (float64, bool) {
	var (
		v   float64
		err error
	)
	if thousands {
		v, err = strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
		v *= 1000
	} else {
		v, err = strconv.ParseFloat(strings.NewReplacer(",", "", ".", "").Replace(raw), 64)
	}
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// AverageSalary averages the parsable ranges; nil when there are none.
func AverageSalary(salaries []string) *string {
	var sumLo, sumHi float64
	n := 0
	for _, s := range salaries {
		lo, hi, ok := ParseSalaryRange(s)
		if !ok {
			continue
		}
		sumLo += lo
		sumHi += hi
		n++
	}
	if n == 0 {
		return nil
	}
	out := fmt.Sprintf("€%s - €%s", thousandsSep(int(sumLo/float64(n))), thousandsSep(int(sumHi/float64(n))))
	return &out
}

func thousandsSep(n int) string {
	if n < 0 {
		return "-" + thousandsSep(-n)
	}
	s := strconv.Itoa(n)
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
