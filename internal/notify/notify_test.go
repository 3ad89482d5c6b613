package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/hquach/intern-tracker/internal/types"
)

func TestSendRunSummaryDisabledIsNoop(t *testing.T) {
	// No SMTP server configured; Send must return before dialing.
	n := New(Config{Enabled: false}, nil)
	if err := n.SendRunSummary(RunSummary{Submitted: 3}); err != nil {
		t.Fatalf("disabled notifier returned %v", err)
	}
}

func TestSubjectForCounts(t *testing.T) {
	rec := types.ApplicationRecord{EmailID: "1"}
	cases := []struct {
		records []types.ApplicationRecord
		want    string
	}{
		{nil, "Internship Tracker: no new applications"},
		{[]types.ApplicationRecord{rec}, "Internship Tracker: 1 new application"},
		{[]types.ApplicationRecord{rec, rec}, "Internship Tracker: 2 new applications"},
	}
	for _, c := range cases {
		if got := subjectFor(RunSummary{Records: c.records}); got != c.want {
			t.Errorf("subjectFor(%d records) = %q, want %q", len(c.records), got, c.want)
		}
	}
}

func TestBodyForListsApplications(t *testing.T) {
	s := RunSummary{
		Fetched:        10,
		Fresh:          4,
		Submitted:      2,
		AIExtracted:    1,
		RegexExtracted: 1,
		Duration:       1500 * time.Millisecond,
		Records: []types.ApplicationRecord{
			{EmailID: "1", Company: "Initech", Position: "Software Engineer Intern", Date: "2025-09-10"},
			{EmailID: "2", Date: "2025-09-11"},
		},
	}
	body := bodyFor(s)

	for _, want := range []string{
		"Fetched:    10 emails",
		"Submitted:  2",
		"Extraction: 1 model, 1 patterns",
		"Initech | Software Engineer Intern | 09-10-2025",
		"(unknown company) | (unknown position) | 09-11-2025",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
	if strings.Contains(body, "Errors:") {
		t.Errorf("error line present with zero errors:\n%s", body)
	}
}

func TestBodyForReportsErrors(t *testing.T) {
	body := bodyFor(RunSummary{Errors: 2})
	if !strings.Contains(body, "Errors:     2") {
		t.Errorf("body missing error count:\n%s", body)
	}
}
