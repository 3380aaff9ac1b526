package statistics

import (
	"math"
	"testing"
)

func TestRunning_Empty(t *testing.T) {
	r := NewRunning()
	s := r.Summary()
	if s != (Summary{}) {
		t.Errorf("expected zero summary for empty input, got %+v", s)
	}
	if r.Quantile(0.5) != 0 {
		t.Errorf("expected 0 quantile for empty input")
	}
}

func TestRunning_KnownValues(t *testing.T) {
	r := NewRunningWithSeed(100, 42)
	for _, v := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		r.Add(v)
	}
	s := r.Summary()
	if s.Count != 8 {
		t.Errorf("expected count 8, got %d", s.Count)
	}
	if math.Abs(s.Mean-5) > 1e-12 {
		t.Errorf("expected mean 5, got %f", s.Mean)
	}
	if math.Abs(s.StdDev-2) > 1e-12 {
		t.Errorf("expected std dev 2, got %f", s.StdDev)
	}
	if s.Min != 2 || s.Max != 9 {
		t.Errorf("expected range [2, 9], got [%f, %f]", s.Min, s.Max)
	}
	if math.Abs(s.Median-4.5) > 1e-12 {
		t.Errorf("expected median 4.5, got %f", s.Median)
	}
}

func TestRunning_IgnoresNonFinite(t *testing.T) {
	r := NewRunningWithSeed(10, 1)
	r.Add(math.NaN())
	r.Add(math.Inf(1))
	r.Add(3)
	if r.Count() != 1 || r.Mean() != 3 {
		t.Errorf("expected only the finite value to count, got n=%d mean=%f", r.Count(), r.Mean())
	}
}

func TestRunning_ReservoirIsBounded(t *testing.T) {
	r := NewRunningWithSeed(64, 7)
	for i := 1; i <= 10000; i++ {
		r.Add(float64(i))
	}
	if len(r.reservoir) != 64 {
		t.Fatalf("expected reservoir of 64, got %d", len(r.reservoir))
	}
	if math.Abs(r.Mean()-5000.5) > 1e-9 {
		t.Errorf("expected exact mean 5000.5, got %f", r.Mean())
	}
	// A uniform sample of 1..10000 should put the median well inside the range.
	if m := r.Quantile(0.5); m < 2500 || m > 7500 {
		t.Errorf("median estimate %f is implausible", m)
	}
	if q := r.Quantile(2); q > 10000 {
		t.Errorf("quantile must clamp q, got %f", q)
	}
}
