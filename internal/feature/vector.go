package feature

// Vector is one sparse feature row: parallel index/value slices over a fixed
// column count. Indices are strictly increasing within each segment.
type Vector struct {
	Indices []int
	Values  []float64
	Width   int
}

// Dot computes the dot product against a dense weight slice. The caller
// guarantees len(weights) == v.Width.
func (v Vector) Dot(weights []float64) float64 {
	var sum float64
	for i, idx := range v.Indices {
		sum += v.Values[i] * weights[idx]
	}
	return sum
}

// Dense expands the row into a dense slice.
func (v Vector) Dense() []float64 {
	out := make([]float64, v.Width)
	for i, idx := range v.Indices {
		out[idx] = v.Values[i]
	}
	return out
}
