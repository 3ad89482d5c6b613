// Package dataset prepares the labeled corpus for training: duplicate
// removal, label verification, a deterministic stratified split, and a
// synthetic confirmation generator for padding the positive class.
package dataset

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/hquach/intern-tracker/internal/types"
)

// Dedupe drops rows whose (subject, body) pair was already seen, keeping the
// first occurrence. Mailing systems resend the same confirmation freely and
// duplicate rows would leak between the split sets.
func Dedupe(emails []types.LabeledEmail) []types.LabeledEmail {
	type key struct{ subject, body string }
	seen := make(map[key]bool, len(emails))
	out := make([]types.LabeledEmail, 0, len(emails))
	for _, e := range emails {
		k := key{e.Subject, e.Body}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, e)
	}
	return out
}

// VerifyLabels keeps rows with a known label and reports how many were
// dropped.
func VerifyLabels(emails []types.LabeledEmail) (kept []types.LabeledEmail, dropped int) {
	for _, e := range emails {
		if e.Label == types.LabelSubmitted || e.Label == types.LabelNotSubmitted {
			kept = append(kept, e)
		} else {
			dropped++
		}
	}
	return kept, dropped
}

// Splits carves the corpus into train, validation and test sets.
type Splits struct {
	Train []types.LabeledEmail
	Val   []types.LabeledEmail
	Test  []types.LabeledEmail
}

// Split produces a deterministic stratified split, roughly 70/15/15: each
// label is shuffled with the seed and carved separately so class balance
// survives in every set, and no set is left empty. A label with fewer than
// 3 rows cannot reach all three sets and fails instead of silently skewing
// the evaluation.
func Split(emails []types.LabeledEmail, seed int64) (*Splits, error) {
	byLabel := make(map[types.Label][]types.LabeledEmail)
	for _, e := range emails {
		byLabel[e.Label] = append(byLabel[e.Label], e)
	}

	labels := make([]types.Label, 0, len(byLabel))
	for l := range byLabel {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })

	rng := rand.New(rand.NewSource(seed))
	splits := &Splits{}
	for _, label := range labels {
		rows := byLabel[label]
		if len(rows) < 3 {
			return nil, fmt.Errorf("split dataset: label %q has %d rows, need at least 3", label, len(rows))
		}
		rng.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })

		n := len(rows)
		nTest := max(1, int(math.Round(0.15*float64(n))))
		nVal := max(1, int(math.Round(0.15*float64(n))))
		nTrain := n - nVal - nTest

		splits.Train = append(splits.Train, rows[:nTrain]...)
		splits.Val = append(splits.Val, rows[nTrain:nTrain+nVal]...)
		splits.Test = append(splits.Test, rows[nTrain+nVal:]...)
	}

	return splits, nil
}
