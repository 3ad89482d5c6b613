package types

// Label is the ground-truth classification of a training email.
type Label string

const (
	LabelSubmitted    Label = "Submitted"
	LabelNotSubmitted Label = "Not Submitted"
)

// Extraction method tags for ExtractionResult and ApplicationRecord.
const (
	MethodAI    = "ai"
	MethodRegex = "regex"
)

// RawEmail is a fetched message. Identity is ID; immutable once fetched.
// Date keeps the source-provided string form (email Date headers vary too
// much to normalize at fetch time; the sheet layer formats it on output).
type RawEmail struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	Sender  string `json:"sender"` // "Name <addr>" or bare address
	Body    string `json:"body"`   // MIME-decoded text
	Date    string `json:"date"`
}

// LabeledEmail is a training row: a raw email plus its ground-truth label.
type LabeledEmail struct {
	RawEmail
	Starred   bool  `json:"is_starred"`
	Label     Label `json:"label"`
	Synthetic bool  `json:"synthetic"`
}

// ExtractionResult holds the structured fields pulled from one email.
// Empty string means "not found", never null; the sheet writer substitutes
// placeholders for empty fields.
type ExtractionResult struct {
	Company            string `json:"company"`
	Position           string `json:"position"`
	Location           string `json:"location"`
	CandidatePortalURL string `json:"candidate_portal_url"`
	Method             string `json:"extraction_method"` // "ai" or "regex"
}

// ApplicationRecord is the unit of pipeline output: one per email predicted
// Submitted, never mutated after creation.
type ApplicationRecord struct {
	EmailID            string `json:"email_id"`
	Date               string `json:"date"`
	Company            string `json:"company"`
	Position           string `json:"position"`
	Location           string `json:"location"`
	CandidatePortalURL string `json:"candidate_portal_url"`
	Method             string `json:"extraction_method"`
}
