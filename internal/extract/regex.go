package extract

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hquach/intern-tracker/internal/types"
)

// The fallback tier is ordered pattern data: the first capture that survives
// cleanup and the stopword check wins. Company and position patterns run over
// lowercased subject+" "+body, which is why the classes stay lowercase.
var companyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:thank you for applying to|your application (?:to|at))\s+([a-z][a-z\s&.-]+?)(?:\s+for|\.|$)`),
	regexp.MustCompile(`(?:at|from|with)\s+([a-z][a-z\s&.-]+?)(?:\s+for|\s+–|\s+-|\s+\||\.|\s+application|$)`),
	regexp.MustCompile(`([a-z][a-z\s&.-]{2,25})\s+(?:application|internship|position|careers|team)`),
	regexp.MustCompile(`application confirmation\s+[–-]\s+([a-z][a-z\s&.-]+)`),
	regexp.MustCompile(`welcome to\s+([a-z][a-z\s&.-]+?)(?:\s|$)`),
	regexp.MustCompile(`([a-z][a-z\s&.-]{3,30})\s+talent\s+team`),
	regexp.MustCompile(`this is to confirm your application to\s+([a-z][a-z\s&.-]+)`),
}

var positionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:for the|for our|for a)\s+([a-z][a-z\s-]{5,40}?)(?:\s+position|\s+role|\s+internship|\.|$)`),
	regexp.MustCompile(`([a-z][a-z\s-]+?)\s+(?:internship|intern)\s+(?:position|role|application)`),
	regexp.MustCompile(`(?:position:|role:|applied for:)\s+([a-z][a-z\s-]+?)(?:\.|$|internship)`),
	regexp.MustCompile(`application for\s+([a-z][a-z\s-]+?)(?:\s+at|\s+with|\.|$)`),
	regexp.MustCompile(`([a-z\s-]+?)\s+(?:summer|fall|spring|winter)\s+(?:intern|internship)`),
	regexp.MustCompile(`(?:software|data|marketing|finance|engineering|product|design)\s+([a-z][a-z\s-]*?)\s+intern`),
	regexp.MustCompile(`intern[:\s-]+([a-z][a-z\s-]+?)(?:\.|$|at)`),
}

// Portal patterns scan the raw body; lowercasing would corrupt the URL, so
// these carry (?i) instead.
var portalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)https?://[^\s]+(?:candidate|portal|application|status|track|hiring|careers|recruit)[^\s]*`),
	regexp.MustCompile(`(?i)https?://[^\s]*(?:workday|greenhouse|lever|bamboohr|smartrecruiters)[^\s]*`),
	regexp.MustCompile(`(?i)https?://[^\s]*(?:apply|jobs|careers)[^\s]*portal[^\s]*`),
	regexp.MustCompile(`(?i)https?://[^\s]*status[^\s]*application[^\s]*`),
}

var (
	anyURL            = regexp.MustCompile(`https?://[^\s]+`)
	trailingNamePunct = regexp.MustCompile(`[.,-]+$`)
	trailingURLPunct  = regexp.MustCompile(`[.,;:!?)]+$`)
)

var portalKeywords = []string{"candidate", "portal", "status", "application", "track", "hiring", "apply"}

var companyStopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "this": true,
	"your": true, "our": true, "team": true, "application": true,
}

var positionStopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "this": true,
	"your": true, "our": true,
}

var commonTLDs = []string{".com", ".org", ".net", ".edu", ".gov"}

// Regex is the fallback extraction tier. It is pure pattern matching:
// deterministic, offline, and independent of any model state. Location stays
// empty here; only the model tier can pull locations reliably.
func Regex(subject, body, sender string) types.ExtractionResult {
	fullText := strings.ToLower(subject + " " + body)
	return types.ExtractionResult{
		Company:            companyFrom(fullText, sender),
		Position:           positionFrom(fullText),
		CandidatePortalURL: portalURLFrom(body),
		Method:             types.MethodRegex,
	}
}

// companyFrom tries the sender domain before the text patterns: the first
// label of careers@acmecorp.com names the company more reliably than
// anything the body offers.
func companyFrom(fullText, sender string) string {
	if at := strings.LastIndex(sender, "@"); at >= 0 {
		domain := strings.ToLower(sender[at+1:])
		usable := false
		for _, tld := range commonTLDs {
			if strings.HasSuffix(domain, tld) {
				usable = true
				break
			}
		}
		if usable && !strings.Contains(domain, "noreply") && !strings.Contains(domain, "careers") {
			label := titleCase(strings.SplitN(domain, ".", 2)[0])
			if len(label) > 2 {
				return label
			}
		}
	}

	for _, re := range companyPatterns {
		for _, m := range re.FindAllStringSubmatch(fullText, -1) {
			candidate := cleanCandidate(m[1])
			if len(candidate) > 3 && !companyStopwords[strings.ToLower(candidate)] {
				return candidate
			}
		}
	}
	return ""
}

func positionFrom(fullText string) string {
	for _, re := range positionPatterns {
		for _, m := range re.FindAllStringSubmatch(fullText, -1) {
			candidate := cleanCandidate(m[1])
			if len(candidate) > 3 && !positionStopwords[strings.ToLower(candidate)] {
				return candidate
			}
		}
	}
	return ""
}

func portalURLFrom(body string) string {
	for _, re := range portalPatterns {
		for _, m := range re.FindAllString(body, -1) {
			url := trailingURLPunct.ReplaceAllString(m, "")
			if len(url) > 10 {
				return url
			}
		}
	}

	// Any URL at all, as long as it looks application-related.
	for _, m := range anyURL.FindAllString(body, -1) {
		url := trailingURLPunct.ReplaceAllString(m, "")
		lower := strings.ToLower(url)
		for _, kw := range portalKeywords {
			if strings.Contains(lower, kw) {
				return url
			}
		}
	}
	return ""
}

func cleanCandidate(s string) string {
	s = strings.TrimSpace(s)
	s = trailingNamePunct.ReplaceAllString(s, "")
	return titleCase(s)
}

func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}
