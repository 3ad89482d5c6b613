package extract

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Fields are the four values the extraction contract asks the model for.
type Fields struct {
	Company            string `json:"company"`
	Position           string `json:"position"`
	Location           string `json:"location"`
	CandidatePortalURL string `json:"candidate_portal_url"`
}

// ParseReply digs the JSON object out of a raw model reply. Models wrap
// answers in markdown fences or lead with prose despite instructions, so the
// parser peels a ` ```json ` fence, then a bare ` ``` ` fence, then anything
// outside the outermost braces, before unmarshalling. Keys the model omitted
// decode as empty strings.
func ParseReply(raw string) (Fields, error) {
	text := strings.TrimSpace(raw)

	if i := strings.Index(text, "```json"); i >= 0 {
		text = text[i+len("```json"):]
		if j := strings.Index(text, "```"); j >= 0 {
			text = text[:j]
		}
		text = strings.TrimSpace(text)
	} else if len(text) >= 6 && strings.HasPrefix(text, "```") && strings.HasSuffix(text, "```") {
		text = strings.TrimSpace(text[3 : len(text)-3])
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return Fields{}, fmt.Errorf("no JSON object in model reply")
	}

	var f Fields
	if err := json.Unmarshal([]byte(text[start:end+1]), &f); err != nil {
		return Fields{}, fmt.Errorf("decode model reply: %w", err)
	}
	return f, nil
}
