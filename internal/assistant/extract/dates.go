package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const isoDate = "2006-01-02"

// relativeDay resolves a keyword to a day offset from now. Longer phrases come first
// so "day after tomorrow" and "this weekend" win over "tomorrow" and "this week".
type relativeDay struct {
	pattern *regexp.Regexp
	offset  func(now time.Time) int
}

var relativeDays = []relativeDay{
	{regexp.MustCompile(`\bday after tomorrow\b`), fixedOffset(2)},
	{regexp.MustCompile(`\btomorrow\b`), fixedOffset(1)},
	{regexp.MustCompile(`\btoday\b`), fixedOffset(0)},
	{regexp.MustCompile(`\bnext weekend\b`), func(now time.Time) int { return daysUntilWeekend(now) + 7 }},
	{regexp.MustCompile(`\bthis weekend\b`), daysUntilWeekend},
	{regexp.MustCompile(`\bnext week\b`), fixedOffset(7)},
	{regexp.MustCompile(`\bthis week\b`), fixedOffset(3)},
}

var weekdayPattern = regexp.MustCompile(`\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

var (
	isoDatePattern = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	// RE2 has no backreferences, so each separator gets its own pattern.
	numericDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`),
		regexp.MustCompile(`\b(\d{1,2})-(\d{1,2})-(\d{4})\b`),
		regexp.MustCompile(`\b(\d{1,2})\.(\d{1,2})\.(\d{4})\b`),
	}
)

func fixedOffset(days int) func(time.Time) int {
	return func(time.Time) int { return days }
}

// daysUntilWeekend is the offset to the coming Saturday; on a Saturday it is a week.
func daysUntilWeekend(now time.Time) int {
	days := (int(time.Saturday) - int(now.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return days
}

// daysUntil is the offset to the next given weekday, never today.
func daysUntil(now time.Time, day time.Weekday) int {
	days := (int(day) - int(now.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return days
}

// ExtractDate resolves relative keywords, then weekday names, then explicit
// YYYY-MM-DD or P1/P2/YYYY dates. It returns "" when nothing matches.
func ExtractDate(text string, now time.Time) string {
	lower := strings.ToLower(text)

	for _, rd := range relativeDays {
		if rd.pattern.MatchString(lower) {
			return now.AddDate(0, 0, rd.offset(now)).Format(isoDate)
		}
	}

	if m := weekdayPattern.FindStringSubmatch(lower); m != nil {
		return now.AddDate(0, 0, daysUntil(now, weekdays[m[1]])).Format(isoDate)
	}

	if m := isoDatePattern.FindStringSubmatch(lower); m != nil {
		if d, ok := buildDate(m[1], m[2], m[3]); ok {
			return d
		}
	}

	for _, pattern := range numericDatePatterns {
		m := pattern.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		first, _ := strconv.Atoi(m[1])
		// Day-first only when the first component cannot be a month.
		day, month := m[2], m[1]
		if first > 12 {
			day, month = m[1], m[2]
		}
		if d, ok := buildDate(m[3], month, day); ok {
			return d
		}
	}

	return ""
}

// buildDate rejects impossible dates such as 2026-02-30 instead of normalising them.
func buildDate(year, month, day string) (string, bool) {
	y, err1 := strconv.Atoi(year)
	m, err2 := strconv.Atoi(month)
	d, err3 := strconv.Atoi(day)
	if err1 != nil || err2 != nil || err3 != nil {
		return "", false
	}
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return "", false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Month() != time.Month(m) || t.Day() != d {
		return "", false
	}
	return t.Format(isoDate), true
}

func maskExplicitDates(lower string) string {
	out := isoDatePattern.ReplaceAllString(lower, " ")
	for _, pattern := range numericDatePatterns {
		out = pattern.ReplaceAllString(out, " ")
	}
	return out
}
