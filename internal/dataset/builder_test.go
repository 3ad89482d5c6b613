package dataset

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/hquach/intern-tracker/internal/types"
)

func labeled(id, subject, body string, label types.Label) types.LabeledEmail {
	return types.LabeledEmail{
		RawEmail: types.RawEmail{ID: id, Subject: subject, Body: body},
		Label:    label,
	}
}

func TestDedupeKeepsFirstOccurrence(t *testing.T) {
	emails := []types.LabeledEmail{
		labeled("1", "same", "body", types.LabelSubmitted),
		labeled("2", "same", "body", types.LabelNotSubmitted),
		labeled("3", "same", "different body", types.LabelSubmitted),
	}
	out := Dedupe(emails)
	if len(out) != 2 {
		t.Fatalf("deduped to %d rows, want 2", len(out))
	}
	if out[0].ID != "1" || out[1].ID != "3" {
		t.Errorf("kept ids %s,%s, want 1,3", out[0].ID, out[1].ID)
	}
}

func TestVerifyLabelsDropsUnknown(t *testing.T) {
	emails := []types.LabeledEmail{
		labeled("1", "a", "b", types.LabelSubmitted),
		labeled("2", "c", "d", "Maybe"),
		labeled("3", "e", "f", types.LabelNotSubmitted),
		labeled("4", "g", "h", ""),
	}
	kept, dropped := VerifyLabels(emails)
	if len(kept) != 2 || dropped != 2 {
		t.Fatalf("kept %d dropped %d, want 2 and 2", len(kept), dropped)
	}
}

func corpus(nPos, nNeg int) []types.LabeledEmail {
	var emails []types.LabeledEmail
	for i := range nPos {
		emails = append(emails, labeled(
			strings.Repeat("p", i+1), "subject", "body", types.LabelSubmitted))
	}
	for i := range nNeg {
		emails = append(emails, labeled(
			strings.Repeat("n", i+1), "subject", "body", types.LabelNotSubmitted))
	}
	return emails
}

func TestSplitStratifiedAndComplete(t *testing.T) {
	emails := corpus(20, 20)
	s, err := Split(emails, 42)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}

	total := len(s.Train) + len(s.Val) + len(s.Test)
	if total != len(emails) {
		t.Fatalf("splits cover %d rows, want %d", total, len(emails))
	}

	for name, set := range map[string][]types.LabeledEmail{
		"train": s.Train, "val": s.Val, "test": s.Test,
	} {
		var pos, neg int
		for _, e := range set {
			if e.Label == types.LabelSubmitted {
				pos++
			} else {
				neg++
			}
		}
		if pos == 0 || neg == 0 {
			t.Errorf("%s set lost a class: %d positive, %d negative", name, pos, neg)
		}
	}

	if len(s.Train) <= len(s.Val) || len(s.Train) <= len(s.Test) {
		t.Errorf("train set (%d) should dominate val (%d) and test (%d)",
			len(s.Train), len(s.Val), len(s.Test))
	}

	// No row may appear in two sets.
	seen := make(map[string]string)
	for name, set := range map[string][]types.LabeledEmail{
		"train": s.Train, "val": s.Val, "test": s.Test,
	} {
		for _, e := range set {
			if prev, ok := seen[e.ID]; ok {
				t.Fatalf("row %s in both %s and %s", e.ID, prev, name)
			}
			seen[e.ID] = name
		}
	}
}

func TestSplitDeterministic(t *testing.T) {
	emails := corpus(10, 10)
	a, err := Split(emails, 42)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	b, err := Split(emails, 42)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	for i := range a.Train {
		if a.Train[i].ID != b.Train[i].ID {
			t.Fatalf("train order differs at %d with the same seed", i)
		}
	}
	for i := range a.Test {
		if a.Test[i].ID != b.Test[i].ID {
			t.Fatalf("test order differs at %d with the same seed", i)
		}
	}
}

func TestSplitRejectsTinyClass(t *testing.T) {
	if _, err := Split(corpus(2, 10), 42); err == nil {
		t.Fatal("expected error for a 2-row class")
	}
}

func TestSyntheticRowShape(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	emails := Synthetic(40, rng)
	if len(emails) != 40 {
		t.Fatalf("generated %d, want 40", len(emails))
	}

	ids := make(map[string]bool)
	for i, e := range emails {
		if !strings.HasPrefix(e.ID, "synthetic_") {
			t.Errorf("row %d id %q lacks synthetic_ prefix", i, e.ID)
		}
		if ids[e.ID] {
			t.Errorf("duplicate id %q", e.ID)
		}
		ids[e.ID] = true
		if !e.Starred || e.Label != types.LabelSubmitted || !e.Synthetic {
			t.Errorf("row %d flags = starred %v label %q synthetic %v", i, e.Starred, e.Label, e.Synthetic)
		}
		if !strings.HasPrefix(e.Sender, "careers@") || !strings.HasSuffix(e.Sender, ".com") {
			t.Errorf("row %d sender %q not a careers address", i, e.Sender)
		}
		if strings.Contains(e.Sender, " ") {
			t.Errorf("row %d sender %q contains spaces", i, e.Sender)
		}
		if e.Subject == "" || e.Body == "" {
			t.Errorf("row %d has empty subject or body", i)
		}
	}
}

func TestSyntheticSeedReproducesText(t *testing.T) {
	a := Synthetic(10, rand.New(rand.NewSource(42)))
	b := Synthetic(10, rand.New(rand.NewSource(42)))
	for i := range a {
		if a[i].Subject != b[i].Subject || a[i].Body != b[i].Body || a[i].Sender != b[i].Sender {
			t.Fatalf("row %d text differs for the same seed", i)
		}
	}
}
