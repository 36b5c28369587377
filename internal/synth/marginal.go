package synth

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/brianvoe/gofakeit/v6"

	"synth-pump/internal/frame"
)

// category is one observed value with its cumulative frequency upper bound.
type category struct {
	value any
	cum   float64
}

// marginal holds the fitted per-column distribution. Numeric columns keep
// their sorted observed values for empirical-quantile sampling; categorical
// and boolean columns keep a cumulative frequency table.
type marginal struct {
	name     string
	kind     frame.Kind
	meaning  string
	nullRate float64
	sorted   []float64
	cats     []category
}

// fitMarginal builds the marginal for one normalized column and returns the
// per-row standard normal scores used for the dependence fit.
func fitMarginal(c *frame.Column) (*marginal, []float64, error) {
	if !c.Kind.Normalized() {
		return nil, nil, fmt.Errorf("column %s has unsupported kind %s", c.Name, c.Kind)
	}

	m := &marginal{name: c.Name, kind: c.Kind}
	rows := len(c.Values)
	scores := make([]float64, rows)

	switch c.Kind {
	case frame.Float, frame.Int:
		var observed []float64
		missing := 0
		numeric := make([]float64, rows)
		seen := make([]bool, rows)
		for i, v := range c.Values {
			var f float64
			switch x := v.(type) {
			case float64:
				f = x
			case int64:
				f = float64(x)
			default:
				return nil, nil, fmt.Errorf("column %s: cell %d is %T, expected numeric", c.Name, i, v)
			}
			if math.IsNaN(f) {
				missing++
				continue
			}
			numeric[i] = f
			seen[i] = true
			observed = append(observed, f)
		}
		sort.Float64s(observed)
		m.sorted = observed
		if rows > 0 {
			m.nullRate = float64(missing) / float64(rows)
		}
		n := float64(len(observed))
		for i := range scores {
			if !seen[i] || n == 0 {
				scores[i] = 0
				continue
			}
			// midpoint rank of the value among the observed sample
			lo := sort.SearchFloat64s(observed, numeric[i])
			hi := sort.Search(len(observed), func(j int) bool { return observed[j] > numeric[i] })
			u := (float64(lo+hi) / 2.0) / n
			scores[i] = invNorm(u)
		}

	case frame.Bool, frame.Object:
		counts := make(map[any]int, 8)
		var order []any
		for _, v := range c.Values {
			if _, ok := counts[v]; !ok {
				order = append(order, v)
			}
			counts[v]++
		}
		cum := 0.0
		bounds := make(map[any][2]float64, len(order))
		for _, v := range order {
			lo := cum
			cum += float64(counts[v]) / float64(rows)
			m.cats = append(m.cats, category{value: v, cum: cum})
			bounds[v] = [2]float64{lo, cum}
		}
		for i, v := range c.Values {
			b := bounds[v]
			scores[i] = invNorm((b[0] + b[1]) / 2)
		}
		if c.Kind == frame.Object {
			m.meaning = AnalyzeMeaning(c.Name)
		}
	}

	return m, scores, nil
}

// quantile interpolates the empirical quantile at u in [0,1].
func quantile(sorted []float64, u float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	pos := u * float64(n-1)
	lo := int(math.Floor(pos))
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[lo+1]*frac
}

// sample draws one cell from the marginal given a copula uniform.
func (m *marginal) sample(u float64, rng *rand.Rand, faker *gofakeit.Faker) any {
	switch m.kind {
	case frame.Float:
		if m.nullRate > 0 && rng.Float64() < m.nullRate {
			return math.NaN()
		}
		return quantile(m.sorted, u)
	case frame.Int:
		return int64(math.Round(quantile(m.sorted, u)))
	default: // Bool, Object
		if m.kind == frame.Object && Fabricated(m.meaning) {
			return fabricate(m.meaning, faker)
		}
		for _, cat := range m.cats {
			if u <= cat.cum {
				return cat.value
			}
		}
		if len(m.cats) == 0 {
			return nil
		}
		return m.cats[len(m.cats)-1].value
	}
}

// fabricate produces a fresh fake value for a PII-shaped column.
func fabricate(meaning string, faker *gofakeit.Faker) string {
	switch meaning {
	case "email":
		return faker.Email()
	case "phone":
		return faker.Phone()
	case "name":
		return faker.Name()
	case "address":
		return faker.Address().Address
	case "city":
		return faker.City()
	case "country":
		return faker.Country()
	case "zipcode":
		return faker.Zip()
	case "url":
		return faker.URL()
	case "ip":
		return faker.IPv4Address()
	case "user":
		return faker.Username()
	default:
		return faker.Word()
	}
}
