// Package classifier implements the membership classifier: a random forest
// of CART decision trees that maps a node's structural feature vector to a
// community label.
//
// The package encodes the fit-once contract in its types. A Forest holds
// only hyperparameters and cannot predict; Fit returns a Model, which is
// immutable and can only predict.
package classifier

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/dd0wney/cluso-dyncomm/pkg/parallel"
)

// Config holds the forest hyperparameters.
type Config struct {
	Trees           int    // number of trees
	MaxDepth        int    // 0 grows until leaves are pure
	MinSamplesSplit int    // smallest node that may be split
	MinSamplesLeaf  int    // smallest allowed leaf
	MaxFeatures     int    // features tried per split; 0 means floor(sqrt(width))
	NoBootstrap     bool   // train every tree on the full sample
	Seed            uint64 // all randomness derives from this
	Workers         int    // goroutines for fitting and prediction; 0 means GOMAXPROCS
}

// DefaultConfig returns 100 fully grown trees with bootstrap sampling and
// seed 42.
func DefaultConfig() Config {
	return Config{
		Trees:           100,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Seed:            42,
	}
}

func (c Config) withDefaults() Config {
	if c.Trees <= 0 {
		c.Trees = 100
	}
	if c.MinSamplesSplit < 2 {
		c.MinSamplesSplit = 2
	}
	if c.MinSamplesLeaf < 1 {
		c.MinSamplesLeaf = 1
	}
	return c
}

// Forest is an untrained random forest.
type Forest struct {
	cfg Config
}

// NewForest creates an untrained forest.
func NewForest(cfg Config) *Forest {
	return &Forest{cfg: cfg.withDefaults()}
}

// Config returns the effective hyperparameters.
func (f *Forest) Config() Config {
	return f.cfg
}

// Fit trains a model on the rows of X with labels y. Fitting twice on the
// same data with the same Config yields identical models. Empty input yields
// a model that predicts label 0.
func (f *Forest) Fit(X mat.Matrix, y []int) (*Model, error) {
	r, c := dims(X)
	if r != len(y) {
		return nil, fmt.Errorf("%w: %d rows, %d labels", ErrShapeMismatch, r, len(y))
	}
	if r == 0 {
		return &Model{fitted: true}, nil
	}
	if c == 0 {
		return nil, fmt.Errorf("%w: zero-width feature matrix", ErrShapeMismatch)
	}

	classes, encoded, err := encodeLabels(y)
	if err != nil {
		return nil, err
	}

	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = mat.Row(nil, i, X)
	}

	maxFeatures := f.cfg.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = max(1, int(math.Sqrt(float64(c))))
	}
	maxFeatures = min(maxFeatures, c)

	trees := make([]*tree, f.cfg.Trees)
	err = parallel.ForEach(f.cfg.Workers, len(trees), 2, func(i int) {
		g := &grower{
			rows:        rows,
			labels:      encoded,
			nClasses:    len(classes),
			nFeatures:   c,
			maxFeatures: maxFeatures,
			cfg:         f.cfg,
			rng:         rand.New(rand.NewPCG(f.cfg.Seed, uint64(i))),
		}
		trees[i] = g.build()
	})
	if err != nil {
		return nil, err
	}

	return &Model{
		classes:   classes,
		trees:     trees,
		nFeatures: c,
		workers:   f.cfg.Workers,
		fitted:    true,
	}, nil
}

// encodeLabels maps labels to dense class indices over the sorted distinct
// labels.
func encodeLabels(y []int) ([]int, []int, error) {
	classes := slices.Clone(y)
	slices.Sort(classes)
	classes = slices.Compact(classes)
	if classes[0] < 0 {
		return nil, nil, fmt.Errorf("%w: %d", ErrInvalidLabel, classes[0])
	}

	encoded := make([]int, len(y))
	for i, label := range y {
		encoded[i], _ = slices.BinarySearch(classes, label)
	}
	return classes, encoded, nil
}

// dims treats a nil matrix as 0×0.
func dims(X mat.Matrix) (int, int) {
	if X == nil {
		return 0, 0
	}
	if d, ok := X.(*mat.Dense); ok && (d == nil || d.IsEmpty()) {
		return 0, 0
	}
	return X.Dims()
}
