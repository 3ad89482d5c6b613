package classify

import (
	"fmt"
	"strings"
)

// ClassMetrics holds precision, recall, F1 and support for one class.
type ClassMetrics struct {
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Report summarizes classifier quality on a held-out set.
type Report struct {
	Accuracy float64
	Negative ClassMetrics // Not Submitted
	Positive ClassMetrics // Submitted
	Macro    ClassMetrics // unweighted mean of the two classes
	Weighted ClassMetrics // mean weighted by class support
}

// Evaluate compares predictions against true labels and computes per-class
// precision, recall and F1. Undefined ratios (zero denominators) report as 0.
func Evaluate(yTrue, yPred []int) (*Report, error) {
	if len(yTrue) != len(yPred) {
		return nil, fmt.Errorf("evaluate: %d labels but %d predictions", len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return nil, fmt.Errorf("evaluate: empty input")
	}

	var tp, fp, tn, fn int
	for i := range yTrue {
		switch {
		case yTrue[i] == 1 && yPred[i] == 1:
			tp++
		case yTrue[i] == 0 && yPred[i] == 1:
			fp++
		case yTrue[i] == 1 && yPred[i] == 0:
			fn++
		default:
			tn++
		}
	}

	r := &Report{
		Accuracy: float64(tp+tn) / float64(len(yTrue)),
		Negative: classMetrics(tn, fn, fp, tn+fp),
		Positive: classMetrics(tp, fp, fn, tp+fn),
	}
	total := r.Negative.Support + r.Positive.Support
	r.Macro = ClassMetrics{
		Precision: (r.Negative.Precision + r.Positive.Precision) / 2,
		Recall:    (r.Negative.Recall + r.Positive.Recall) / 2,
		F1:        (r.Negative.F1 + r.Positive.F1) / 2,
		Support:   total,
	}
	nw := float64(r.Negative.Support) / float64(total)
	pw := float64(r.Positive.Support) / float64(total)
	r.Weighted = ClassMetrics{
		Precision: nw*r.Negative.Precision + pw*r.Positive.Precision,
		Recall:    nw*r.Negative.Recall + pw*r.Positive.Recall,
		F1:        nw*r.Negative.F1 + pw*r.Positive.F1,
		Support:   total,
	}
	return r, nil
}

// classMetrics computes precision/recall/F1 treating the given class as
// positive: correct picks, wrong picks, misses, and true class size.
func classMetrics(correct, wrongPicks, missed, support int) ClassMetrics {
	m := ClassMetrics{Support: support}
	if correct+wrongPicks > 0 {
		m.Precision = float64(correct) / float64(correct+wrongPicks)
	}
	if correct+missed > 0 {
		m.Recall = float64(correct) / float64(correct+missed)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	return m
}

// String renders the report in the usual classification-report layout.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%14s %9s %9s %9s %9s\n", "", "precision", "recall", "f1-score", "support")
	fmt.Fprintf(&b, "%14s %9.2f %9.2f %9.2f %9d\n", "Not Submitted", r.Negative.Precision, r.Negative.Recall, r.Negative.F1, r.Negative.Support)
	fmt.Fprintf(&b, "%14s %9.2f %9.2f %9.2f %9d\n", "Submitted", r.Positive.Precision, r.Positive.Recall, r.Positive.F1, r.Positive.Support)
	fmt.Fprintf(&b, "%14s %9s %9s %9.2f %9d\n", "accuracy", "", "", r.Accuracy, r.Macro.Support)
	fmt.Fprintf(&b, "%14s %9.2f %9.2f %9.2f %9d\n", "macro avg", r.Macro.Precision, r.Macro.Recall, r.Macro.F1, r.Macro.Support)
	fmt.Fprintf(&b, "%14s %9.2f %9.2f %9.2f %9d\n", "weighted avg", r.Weighted.Precision, r.Weighted.Recall, r.Weighted.F1, r.Weighted.Support)
	return b.String()
}
