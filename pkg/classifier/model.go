package classifier

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/dd0wney/cluso-dyncomm/pkg/parallel"
)

// minParallelRows is the input size below which prediction stays on the
// calling goroutine.
const minParallelRows = 1024

// Model is a fitted forest. It never changes after Fit and is safe for
// concurrent use.
type Model struct {
	classes   []int
	trees     []*tree
	nFeatures int
	workers   int
	fitted    bool
}

// Classes returns the distinct training labels in ascending order.
func (m *Model) Classes() []int {
	m.mustBeFitted()
	return slices.Clone(m.classes)
}

// NumTrees returns the number of trees in the ensemble.
func (m *Model) NumTrees() int {
	m.mustBeFitted()
	return len(m.trees)
}

// Predict returns one label per row of X: the class with the highest mean
// leaf probability across trees, lowest label on ties.
func (m *Model) Predict(X mat.Matrix) ([]int, error) {
	m.mustBeFitted()

	r, c := dims(X)
	out := make([]int, r)
	if r == 0 {
		return out, nil
	}
	if len(m.classes) == 0 {
		return out, nil
	}
	if c != m.nFeatures {
		return nil, fmt.Errorf("%w: model has %d features, input has %d", ErrShapeMismatch, m.nFeatures, c)
	}

	err := parallel.ForEach(m.workers, r, minParallelRows, func(i int) {
		out[i] = m.predictRow(mat.Row(nil, i, X))
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (m *Model) predictRow(x []float64) int {
	votes := make([]float64, len(m.classes))
	for _, t := range m.trees {
		floats.Add(votes, t.leaf(x))
	}
	return m.classes[floats.MaxIdx(votes)]
}

func (m *Model) mustBeFitted() {
	if m == nil || !m.fitted {
		panic(ErrUninitializedModel)
	}
}
