package verify

// Missing stands in for the value of the shorter sequence in a trailing
// positional difference.
const Missing = "<MISSING>"

// Difference is a position at which the two sequences disagree.
type Difference struct {
	Position int
	Value1   string
	Value2   string
}

// Result is the outcome of Compare.
type Result struct {
	// MissingIn2 lists values occurring more often in the first sequence,
	// once per surplus occurrence, in first-sequence order.
	MissingIn2 []string
	// ExtraIn2 lists values occurring more often in the second sequence.
	ExtraIn2 []string
	// OrderDifferences lists index-aligned mismatches followed by one entry
	// per position past the end of the shorter sequence.
	OrderDifferences []Difference

	Total1    int
	Total2    int
	Identical bool
}

// DiffCount returns the total number of reported differences.
func (r Result) DiffCount() int {
	return len(r.MissingIn2) + len(r.ExtraIn2) + len(r.OrderDifferences)
}

// Compare diffs two value sequences.
func Compare(xs, ys Values) Result {
	r := Result{
		MissingIn2: surplus(xs, ys),
		ExtraIn2:   surplus(ys, xs),
		Total1:     len(xs),
		Total2:     len(ys),
	}

	n := min(len(xs), len(ys))
	for i := 0; i < n; i++ {
		if xs[i] != ys[i] {
			r.OrderDifferences = append(r.OrderDifferences, Difference{Position: i, Value1: xs[i], Value2: ys[i]})
		}
	}
	for i := n; i < len(xs); i++ {
		r.OrderDifferences = append(r.OrderDifferences, Difference{Position: i, Value1: xs[i], Value2: Missing})
	}
	for i := n; i < len(ys); i++ {
		r.OrderDifferences = append(r.OrderDifferences, Difference{Position: i, Value1: Missing, Value2: ys[i]})
	}

	r.Identical = len(r.OrderDifferences) == 0
	return r
}

// surplus returns the occurrences in a beyond their count in b. Each surplus
// occurrence is listed once, at the position where it exceeds b's count.
func surplus(a, b Values) []string {
	remaining := make(map[string]int, len(b))
	for _, v := range b {
		remaining[v]++
	}
	var out []string
	for _, v := range a {
		if remaining[v] > 0 {
			remaining[v]--
			continue
		}
		out = append(out, v)
	}
	return out
}
