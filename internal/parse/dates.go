package parse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the canonical output format for every date field.
const DateLayout = "2006-01-02"

var (
	isoDateRe = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)
	dmyDateRe = regexp.MustCompile(`(\d{1,2})[.\-/ ](\d{1,2})[.\-/ ](\d{2,4})`)
)

// Date normalizes the first date found in text to YYYY-MM-DD.
//
// Accepted forms are DD.MM.YYYY, DD-MM-YYYY, DD/MM/YYYY and YYYY-MM-DD,
// after digit-confusion repair. Two-digit years map to 20yy below 30 and
// 19yy otherwise. Impossible calendar dates yield ok == false.
func Date(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	text = strings.ReplaceAll(FixDigits(text), ",", ".")

	if m := isoDateRe.FindStringSubmatch(text); m != nil {
		return calendarDate(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	m := dmyDateRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	year := atoi(m[3])
	if len(m[3]) <= 2 {
		year = expandYear(year)
	}
	return calendarDate(year, atoi(m[2]), atoi(m[1]))
}

// Dates returns every valid date found in text, one per line, in line order.
func Dates(text string) []string {
	var out []string
	for _, line := range lines(text) {
		if d, ok := Date(line); ok {
			out = append(out, d)
		}
	}
	return out
}

func expandYear(yy int) int {
	if yy < 30 {
		return 2000 + yy
	}
	return 1900 + yy
}

// calendarDate validates year/month/day by round-tripping through time.Date,
// which would otherwise silently normalize 32.01 to 01.02.
func calendarDate(year, month, day int) (string, bool) {
	if year < 1 || month < 1 || month > 12 || day < 1 {
		return "", false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return "", false
	}
	return t.Format(DateLayout), true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
