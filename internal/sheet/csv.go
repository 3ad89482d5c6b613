package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"time"

	"github.com/hquach/intern-tracker/internal/types"
)

// Headers is the fixed column order of the tracking sheet.
var Headers = []string{
	"Company",
	"Position",
	"Status",
	"Location",
	"Date Received",
	"Candidate Portal URL",
	"Compensation",
	"Notes",
}

// Column indexes into a sheet row.
const (
	colCompany = iota
	colPosition
	colStatus
	colLocation
	colDate
	colPortalURL
	colCompensation
	colNotes
)

// placeholder marks cells the user fills in by hand.
const placeholder = "[Please Enter]"

// statusRank orders rows by how much attention they need. Unknown
// statuses (hand-edited cells) sort after the known ones.
var statusRank = map[string]int{
	"Accepted":    1,
	"In Progress": 2,
	"Submitted":   3,
	"Rejected":    4,
}

// Writer maintains a tracking sheet as a CSV file on disk.
type Writer struct {
	path string
}

// NewWriter returns a Writer for the sheet at path. The file is created
// on first Append.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Path returns the sheet file location.
func (w *Writer) Path() string { return w.path }

// Append adds one row per record, re-sorts the whole sheet by status
// then date received (newest first), and rewrites the file atomically.
// Rows edited by hand (status changes, filled-in cells) are preserved.
func (w *Writer) Append(records []types.ApplicationRecord) error {
	rows, err := w.readRows()
	if err != nil {
		return err
	}
	for _, r := range records {
		rows = append(rows, rowFor(r))
	}
	sortRows(rows)
	return w.writeRows(rows)
}

// Rows returns the current data rows (header excluded).
func (w *Writer) Rows() ([][]string, error) {
	return w.readRows()
}

func rowFor(r types.ApplicationRecord) []string {
	return []string{
		orPlaceholder(r.Company),
		orPlaceholder(r.Position),
		"Submitted",
		orPlaceholder(r.Location),
		orPlaceholder(FormatDate(r.Date)),
		orPlaceholder(r.CandidatePortalURL),
		placeholder,
		placeholder,
	}
}

func orPlaceholder(s string) string {
	if s == "" {
		return placeholder
	}
	return s
}

func sortRows(rows [][]string) {
	sort.SliceStable(rows, func(i, j int) bool {
		ri, rj := rankOf(rows[i][colStatus]), rankOf(rows[j][colStatus])
		if ri != rj {
			return ri < rj
		}
		ti, okI := parseSheetDate(rows[i][colDate])
		tj, okJ := parseSheetDate(rows[j][colDate])
		if okI != okJ {
			return okI // dated rows before undated ones
		}
		return ti.After(tj)
	})
}

func rankOf(status string) int {
	if r, ok := statusRank[status]; ok {
		return r
	}
	return 5
}

func parseSheetDate(s string) (time.Time, bool) {
	t, err := time.Parse("01-02-2006", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (w *Writer) readRows() ([][]string, error) {
	f, err := os.Open(w.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open sheet: %w", err)
	}
	defer f.Close()

	all, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	if len(all) > 0 && slices.Equal(all[0], Headers) {
		all = all[1:]
	}
	return all, nil
}

// writeRows replaces the sheet via a temp file so a crash mid-write
// never leaves a truncated sheet behind.
func (w *Writer) writeRows(rows [][]string) error {
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create sheet directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".tracker-*.csv")
	if err != nil {
		return fmt.Errorf("create temp sheet: %w", err)
	}
	cw := csv.NewWriter(tmp)
	if err := cw.Write(Headers); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write sheet header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write sheet rows: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp sheet: %w", err)
	}
	if err := os.Rename(tmp.Name(), w.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace sheet: %w", err)
	}
	return nil
}
