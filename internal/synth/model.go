// Package synth fits a Gaussian-copula model to a normalized dataset and
// samples synthetic rows from it. Per-column marginals are empirical;
// cross-column dependence is captured by the correlation of normal scores.
package synth

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/brianvoe/gofakeit/v6"

	"synth-pump/internal/frame"
)

// Model is a single-table generative model. Fit once, then Sample any
// number of rows. Not safe for concurrent use.
type Model struct {
	rng    *rand.Rand
	faker  *gofakeit.Faker
	cols   []*marginal
	chol   [][]float64
	fitted bool

	// Progress, when set, is invoked once per sampled row.
	Progress func()
}

// New returns a model seeded for reproducible sampling.
func New(seed int64) *Model {
	return &Model{
		rng:   rand.New(rand.NewSource(seed)),
		faker: gofakeit.New(seed),
	}
}

// Fit learns the per-column marginals and the dependence structure from a
// normalized dataset. Columns with raw (un-normalized) kinds are an error.
func (m *Model) Fit(ds *frame.Dataset) error {
	if ds == nil || ds.NumCols() == 0 {
		return errors.New("fit: dataset has no columns")
	}
	if ds.NumRows() == 0 {
		return errors.New("fit: dataset has no rows")
	}
	if err := ds.Validate(); err != nil {
		return fmt.Errorf("fit: %w", err)
	}

	m.cols = m.cols[:0]
	scores := make([][]float64, 0, ds.NumCols())
	for _, c := range ds.Columns {
		marg, s, err := fitMarginal(c)
		if err != nil {
			return fmt.Errorf("fit: %w", err)
		}
		m.cols = append(m.cols, marg)
		scores = append(scores, s)
	}

	corr := shrink(correlation(scores), 0.05)
	chol, ok := cholesky(corr)
	if !ok {
		// near-singular input: fall back to independent columns
		chol = identity(len(m.cols))
	}
	m.chol = chol
	m.fitted = true
	return nil
}

// Sample draws n synthetic rows with the fitted schema.
func (m *Model) Sample(n int) (*frame.Dataset, error) {
	if !m.fitted {
		return nil, errors.New("sample: model has not been fitted")
	}
	if n < 0 {
		return nil, fmt.Errorf("sample: invalid row count %d", n)
	}

	k := len(m.cols)
	out := &frame.Dataset{Columns: make([]*frame.Column, k)}
	for j, marg := range m.cols {
		out.Columns[j] = &frame.Column{
			Name:   marg.name,
			Kind:   marg.kind,
			Values: make([]any, n),
		}
	}

	z := make([]float64, k)
	for i := 0; i < n; i++ {
		for j := range z {
			z[j] = m.rng.NormFloat64()
		}
		for j, marg := range m.cols {
			// w = (L·z)[j], then map through the normal CDF to a uniform
			w := 0.0
			for t := 0; t <= j && t < k; t++ {
				w += m.chol[j][t] * z[t]
			}
			u := normCDF(w)
			out.Columns[j].Values[i] = marg.sample(u, m.rng, m.faker)
		}
		if m.Progress != nil {
			m.Progress()
		}
	}
	return out, nil
}

func identity(k int) [][]float64 {
	l := make([][]float64, k)
	for i := range l {
		l[i] = make([]float64, k)
		l[i][i] = 1
	}
	return l
}
