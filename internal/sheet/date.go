package sheet

import (
	"regexp"
	"strings"
	"time"
)

// Email Date headers arrive in several shapes. The strip patterns cut
// timezone suffixes so a single layout can parse the remainder.
var (
	tzOffsetRe  = regexp.MustCompile(`[+-]\d{4}`)
	tzOffsetCut = regexp.MustCompile(`\s*[+-]\d{4}.*$`)
	tzParenCut  = regexp.MustCompile(`\s*\([A-Z]{3,4}\).*$`)
	emailDateRe = regexp.MustCompile(`^\w{3}, \d{1,2} \w{3} \d{4} \d{2}:\d{2}:\d{2}`)
)

const emailDateLayout = "Mon, 2 Jan 2006 15:04:05"

var tzAbbrevs = []string{"GMT", "EDT", "EST", "UTC", "PST", "CST", "PDT"}

// FormatDate converts an email date string to MM-DD-YYYY for the sheet.
// Inputs it cannot parse come back unchanged rather than erroring; a
// raw date in the sheet beats an empty cell.
func FormatDate(s string) string {
	if s == "" {
		return ""
	}
	switch {
	case tzOffsetRe.MatchString(s):
		// "Wed, 3 Sep 2025 14:30:29 +0000" or "... +0000 (UTC)"
		clean := strings.TrimSpace(tzOffsetCut.ReplaceAllString(s, ""))
		if t, err := time.Parse(emailDateLayout, clean); err == nil {
			return t.Format("01-02-2006")
		}
	case hasTZAbbrev(s):
		// "Thu, 11 Sep 2025 18:55:03 (UTC)"
		clean := strings.TrimSpace(tzParenCut.ReplaceAllString(s, ""))
		if t, err := time.Parse(emailDateLayout, clean); err == nil {
			return t.Format("01-02-2006")
		}
	case emailDateRe.MatchString(s):
		if t, err := time.Parse(emailDateLayout, s); err == nil {
			return t.Format("01-02-2006")
		}
	case strings.Contains(s, "-") && strings.Contains(s, ":"):
		// "2025-09-12 21:32:56"
		if t, err := time.Parse("2006-01-02", strings.Fields(s)[0]); err == nil {
			return t.Format("01-02-2006")
		}
	case strings.Contains(s, "-") && len(s) == 10:
		if !strings.HasPrefix(s, "20") {
			return s // already MM-DD-YYYY
		}
		if t, err := time.Parse("2006-01-02", s); err == nil {
			return t.Format("01-02-2006")
		}
	}
	return s
}

func hasTZAbbrev(s string) bool {
	u := strings.ToUpper(s)
	for _, tz := range tzAbbrevs {
		if strings.Contains(u, tz) {
			return true
		}
	}
	return false
}
