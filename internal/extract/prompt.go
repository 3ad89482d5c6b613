package extract

import "fmt"

const promptTemplate = `You are an expert information extraction specialist. Your job is to extract ALL possible information from this job application email. DO NOT leave fields blank unless absolutely impossible to determine.

EMAIL TO ANALYZE:
Subject: %s
From: %s
Body: %s

EXTRACTION REQUIREMENTS:
1. COMPANY: Look everywhere, including the subject line, sender email domain, email signature and body text. If you see "careers@microsoft.com", that's Microsoft. If the subject says "Thanks for applying to Google", that's Google.

2. POSITION: Check the subject line first (it often contains the job title), then the body. Look for words like "intern", "engineer", "analyst", "developer". Even partial matches like "Software Eng" are better than blank.

3. LOCATION: Look for city/state mentions, addresses, office locations, "remote work", even company headquarters. If it mentions "San Francisco office" or "NYC team", extract that.

4. PORTAL URL: Find ANY career-related URLs, application tracking links, candidate portals, or links to check application status.

CRITICAL RULES:
- Try MULTIPLE extraction strategies for each field
- Use context clues and make reasonable inferences
- Extract partial information rather than leaving blank
- For company: email domains are often the best source
- For position: subject lines usually contain the role
- For location: look for any geographic mentions

Return ONLY valid JSON (no extra text):
{
    "company": "extracted company name",
    "position": "extracted position title",
    "location": "extracted location or empty string if truly none found",
    "candidate_portal_url": "extracted URL or empty string if none found"
}`

// BuildPrompt renders the extraction prompt for one email. The body is
// truncated to bodyLimit runes to keep token usage predictable.
func BuildPrompt(subject, body, sender string, bodyLimit int) string {
	return fmt.Sprintf(promptTemplate, subject, sender, truncateRunes(body, bodyLimit))
}

// truncateRunes cuts s to at most n runes without splitting a multibyte
// character.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
