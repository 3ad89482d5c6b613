package sheet

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/hquach/intern-tracker/internal/types"
)

func TestFormatDate(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"Wed, 3 Sep 2025 14:30:29 +0000", "09-03-2025"},
		{"Thu, 11 Sep 2025 18:55:03 +0000 (UTC)", "09-11-2025"},
		{"Thu, 11 Sep 2025 18:55:03 (UTC)", "09-11-2025"},
		{"Mon, 02 Jun 2025 09:15:00 -0700", "06-02-2025"},
		{"Wed, 3 Sep 2025 14:30:29", "09-03-2025"},
		{"2025-09-12 21:32:56", "09-12-2025"},
		{"2025-01-01", "01-01-2025"},
		// Already sheet-formatted or unparseable input passes through.
		{"09-12-2025", "09-12-2025"},
		{"Wed, 3 Sep 2025 14:30:29 GMT", "Wed, 3 Sep 2025 14:30:29 GMT"},
		{"not a date", "not a date"},
	}
	for _, c := range cases {
		if got := FormatDate(c.in); got != c.want {
			t.Errorf("FormatDate(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func record(id, date, company string) types.ApplicationRecord {
	return types.ApplicationRecord{
		EmailID:  id,
		Date:     date,
		Company:  company,
		Position: "Software Engineer Intern",
		Method:   types.MethodRegex,
	}
}

func readFile(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open sheet: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	return rows
}

func TestAppendCreatesSortedSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.csv")
	w := NewWriter(path)

	records := []types.ApplicationRecord{
		record("1", "2025-09-01", "Initech"),
		record("2", "2025-09-10", "Globex"),
		record("3", "2025-09-05", ""),
	}
	records[2].CandidatePortalURL = "https://example.greenhouse.io/status"
	if err := w.Append(records); err != nil {
		t.Fatalf("Append: %v", err)
	}

	rows := readFile(t, path)
	if !slices.Equal(rows[0], Headers) {
		t.Fatalf("header row = %v", rows[0])
	}
	data := rows[1:]
	if len(data) != 3 {
		t.Fatalf("got %d data rows, want 3", len(data))
	}

	// Newest first within the shared Submitted status.
	wantDates := []string{"09-10-2025", "09-05-2025", "09-01-2025"}
	for i, want := range wantDates {
		if data[i][colDate] != want {
			t.Errorf("row %d date = %q, want %q", i, data[i][colDate], want)
		}
	}

	for i, row := range data {
		if row[colStatus] != "Submitted" {
			t.Errorf("row %d status = %q", i, row[colStatus])
		}
		if row[colCompensation] != placeholder || row[colNotes] != placeholder {
			t.Errorf("row %d manual columns = %q, %q", i, row[colCompensation], row[colNotes])
		}
	}
	if data[1][colCompany] != placeholder {
		t.Errorf("empty company = %q, want placeholder", data[1][colCompany])
	}
	if data[1][colPortalURL] != "https://example.greenhouse.io/status" {
		t.Errorf("portal url = %q", data[1][colPortalURL])
	}
}

func TestAppendPreservesHandEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.csv")
	w := NewWriter(path)

	if err := w.Append([]types.ApplicationRecord{record("1", "2025-09-01", "Initech")}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	// Simulate the user promoting the row and filling in compensation.
	rows, err := w.Rows()
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	rows[0][colStatus] = "Accepted"
	rows[0][colCompensation] = "$45/hr"
	if err := w.writeRows(rows); err != nil {
		t.Fatalf("writeRows: %v", err)
	}

	if err := w.Append([]types.ApplicationRecord{record("2", "2025-09-10", "Globex")}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	data := readFile(t, path)[1:]
	if len(data) != 2 {
		t.Fatalf("got %d rows, want 2", len(data))
	}
	if data[0][colStatus] != "Accepted" || data[0][colCompensation] != "$45/hr" {
		t.Errorf("hand-edited row lost: %v", data[0])
	}
	if data[1][colCompany] != "Globex" {
		t.Errorf("second row = %v", data[1])
	}
}

func TestSortRowsStatusThenDate(t *testing.T) {
	rows := [][]string{
		{"A", "", "Rejected", "", "09-10-2025", "", "", ""},
		{"B", "", "Submitted", "", placeholder, "", "", ""},
		{"C", "", "Submitted", "", "09-01-2025", "", "", ""},
		{"D", "", "Waitlist", "", "09-20-2025", "", "", ""},
		{"E", "", "Accepted", "", "08-01-2025", "", "", ""},
		{"F", "", "Submitted", "", "09-15-2025", "", "", ""},
	}
	sortRows(rows)

	var got []string
	for _, r := range rows {
		got = append(got, r[0])
	}
	want := []string{"E", "F", "C", "B", "A", "D"}
	if !slices.Equal(got, want) {
		t.Errorf("sorted order = %v, want %v", got, want)
	}
}

func TestAppendNothingStillWritesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.csv")
	if err := NewWriter(path).Append(nil); err != nil {
		t.Fatalf("Append: %v", err)
	}
	rows := readFile(t, path)
	if len(rows) != 1 || !slices.Equal(rows[0], Headers) {
		t.Fatalf("fresh sheet = %v", rows)
	}
}
