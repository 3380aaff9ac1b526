package statistics

import (
	"math"
	"math/rand"
	"sort"
)

// Summary is the digest of a stream of values.
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
}

// Running accumulates count, mean and variance in one pass (Welford) and
// keeps a bounded reservoir sample for quantiles. The zero value is not
// usable; call NewRunning.
type Running struct {
	n        int
	mean, m2 float64
	min, max float64

	reservoir []float64
	capacity  int
	rng       *rand.Rand
}

// DefaultReservoirSize bounds the memory used for quantile estimates.
const DefaultReservoirSize = 4096

// NewRunning returns an accumulator with the default reservoir size.
func NewRunning() *Running {
	return NewRunningWithSeed(DefaultReservoirSize, -1)
}

// NewRunningWithSeed is like NewRunning but fixes the reservoir size and
// sampling seed. A negative seed uses a non-deterministic source.
func NewRunningWithSeed(capacity int, seed int64) *Running {
	if capacity < 1 {
		capacity = 1
	}
	var rng *rand.Rand
	if seed >= 0 {
		rng = rand.New(rand.NewSource(seed))
	} else {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Running{
		min:       math.Inf(1),
		max:       math.Inf(-1),
		reservoir: make([]float64, 0, min(capacity, 256)),
		capacity:  capacity,
		rng:       rng,
	}
}

// Add records x. Non-finite values are ignored.
func (r *Running) Add(x float64) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return
	}
	r.n++
	d := x - r.mean
	r.mean += d / float64(r.n)
	r.m2 += d * (x - r.mean)
	r.min = math.Min(r.min, x)
	r.max = math.Max(r.max, x)

	// Algorithm R: every value seen so far is in the sample with equal
	// probability capacity/n.
	if len(r.reservoir) < r.capacity {
		r.reservoir = append(r.reservoir, x)
		return
	}
	if j := r.rng.Intn(r.n); j < r.capacity {
		r.reservoir[j] = x
	}
}

// Count returns the number of values added.
func (r *Running) Count() int { return r.n }

// Mean returns the arithmetic mean, or 0 when empty.
func (r *Running) Mean() float64 { return r.mean }

// StdDev returns the population standard deviation, or 0 when empty.
func (r *Running) StdDev() float64 {
	if r.n == 0 {
		return 0
	}
	return math.Sqrt(r.m2 / float64(r.n))
}

// Quantile estimates the q-quantile (0 ≤ q ≤ 1) from the reservoir using
// linear interpolation. It is exact while Count ≤ the reservoir size.
func (r *Running) Quantile(q float64) float64 {
	if len(r.reservoir) == 0 {
		return 0
	}
	sorted := append([]float64(nil), r.reservoir...)
	sort.Float64s(sorted)
	q = math.Max(0, math.Min(1, q))
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Summary returns the digest. Min and Max are 0 when empty.
func (r *Running) Summary() Summary {
	if r.n == 0 {
		return Summary{}
	}
	return Summary{
		Count:  r.n,
		Mean:   r.mean,
		StdDev: r.StdDev(),
		Min:    r.min,
		Max:    r.max,
		Median: r.Quantile(0.5),
	}
}
