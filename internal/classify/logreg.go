// Package classify trains and applies the binary Submitted / Not Submitted
// classifier. The model is plain logistic regression fit by deterministic
// full-batch gradient descent: weights start at zero and every run over the
// same rows produces the same artifact.
package classify

import (
	"fmt"
	"math"

	"github.com/hquach/intern-tracker/internal/feature"
)

// Model is a fitted binary linear classifier over sparse feature rows.
type Model struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

// TrainOptions control the gradient descent loop.
type TrainOptions struct {
	Iterations   int     `json:"iterations"`
	LearningRate float64 `json:"learning_rate"`
	L2           float64 `json:"l2"`
}

// DefaultTrainOptions converge comfortably on a few hundred to a few
// thousand L2-normalized rows.
func DefaultTrainOptions() TrainOptions {
	return TrainOptions{Iterations: 1000, LearningRate: 0.5, L2: 1e-3}
}

// Train fits logistic regression with balanced class weights: each sample
// contributes n/(2*n_class) to the gradient, so confirmation emails are not
// drowned out by the larger non-application class. Labels must be 0 or 1 and
// both classes must be present. All rows must share one width.
func Train(rows []feature.Vector, labels []int, opts TrainOptions) (*Model, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("train classifier: no rows")
	}
	if len(rows) != len(labels) {
		return nil, fmt.Errorf("train classifier: %d rows but %d labels", len(rows), len(labels))
	}
	width := rows[0].Width
	for i, r := range rows {
		if r.Width != width {
			return nil, fmt.Errorf("train classifier: row %d has width %d, want %d", i, r.Width, width)
		}
	}

	var pos, neg int
	for i, y := range labels {
		switch y {
		case 0:
			neg++
		case 1:
			pos++
		default:
			return nil, fmt.Errorf("train classifier: label %d at row %d, want 0 or 1", y, i)
		}
	}
	if pos == 0 || neg == 0 {
		return nil, fmt.Errorf("train classifier: need both classes, got %d positive and %d negative rows", pos, neg)
	}

	n := float64(len(rows))
	sampleW := [2]float64{n / (2 * float64(neg)), n / (2 * float64(pos))}

	weights := make([]float64, width)
	grad := make([]float64, width)
	var bias float64

	for range opts.Iterations {
		for j := range grad {
			grad[j] = 0
		}
		var biasGrad float64
		for i, row := range rows {
			p := sigmoid(row.Dot(weights) + bias)
			diff := sampleW[labels[i]] * (p - float64(labels[i]))
			for k, idx := range row.Indices {
				grad[idx] += diff * row.Values[k]
			}
			biasGrad += diff
		}
		scale := opts.LearningRate / n
		for j := range weights {
			weights[j] -= scale * (grad[j] + opts.L2*weights[j])
		}
		bias -= scale * biasGrad
	}

	return &Model{Weights: weights, Bias: bias}, nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// PredictProba returns the positive-class probability for one row. A width
// mismatch means the row came from a different encoder than the one this
// model was trained against; that is a wiring bug and fails fast.
func (m *Model) PredictProba(row feature.Vector) (float64, error) {
	if row.Width != len(m.Weights) {
		return 0, fmt.Errorf("predict: row width %d does not match model width %d", row.Width, len(m.Weights))
	}
	return sigmoid(row.Dot(m.Weights) + m.Bias), nil
}

// Predict applies the 0.5 decision threshold: 1 means Submitted.
func (m *Model) Predict(row feature.Vector) (int, error) {
	p, err := m.PredictProba(row)
	if err != nil {
		return 0, err
	}
	if p >= 0.5 {
		return 1, nil
	}
	return 0, nil
}

// PredictBatch classifies rows in order, failing on the first width mismatch.
func (m *Model) PredictBatch(rows []feature.Vector) ([]int, error) {
	out := make([]int, len(rows))
	for i, row := range rows {
		y, err := m.Predict(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = y
	}
	return out, nil
}
