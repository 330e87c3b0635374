package querysql

import (
	"regexp"
	"strconv"
	"time"
)

// DateLayout formats expanded date placeholders. The separators are `%`
// so the result matches any separator when used inside a LIKE pattern.
const DateLayout = "2006%01%02"

var (
	offsetDatePattern  = regexp.MustCompile(`@current_date([+-]\d+)`)
	currentDatePattern = regexp.MustCompile(`@current_date`)
	nextDatePattern    = regexp.MustCompile(`@next_date`)
	prevDatePattern    = regexp.MustCompile(`@prev_date`)
)

// ExpandDates substitutes date placeholders in s relative to now.
//
// Forms are tried in this order, and each form replaces only its FIRST
// occurrence:
//
//	@current_date+N / @current_date-N   now shifted by N days
//	@current_date                       now
//	@next_date                          now + 1 day
//	@prev_date                          now - 1 day
//
// Later occurrences of the same form are left as written, so
// "@next_date @next_date" expands the first token only.
func ExpandDates(s string, now time.Time) string {
	s = replaceFirst(offsetDatePattern, s, func(m []string) (string, bool) {
		days, err := strconv.Atoi(m[1])
		if err != nil {
			return "", false
		}
		return now.AddDate(0, 0, days).Format(DateLayout), true
	})
	s = replaceFirst(currentDatePattern, s, func([]string) (string, bool) {
		return now.Format(DateLayout), true
	})
	s = replaceFirst(nextDatePattern, s, func([]string) (string, bool) {
		return now.AddDate(0, 0, 1).Format(DateLayout), true
	})
	s = replaceFirst(prevDatePattern, s, func([]string) (string, bool) {
		return now.AddDate(0, 0, -1).Format(DateLayout), true
	})
	return s
}

// replaceFirst replaces the leftmost match of re using repl. When repl
// declines, s is returned unchanged.
func replaceFirst(re *regexp.Regexp, s string, repl func(groups []string) (string, bool)) string {
	loc := re.FindStringSubmatchIndex(s)
	if loc == nil {
		return s
	}

	groups := make([]string, len(loc)/2)
	for i := range groups {
		if loc[2*i] >= 0 {
			groups[i] = s[loc[2*i]:loc[2*i+1]]
		}
	}

	out, ok := repl(groups)
	if !ok {
		return s
	}
	return s[:loc[0]] + out + s[loc[1]:]
}
