// Package refdata holds the elemental reference data used by the descriptor
// engine: the periodic table and the pairwise mixing and fusion enthalpy
// tables. Everything here is immutable once loaded.
package refdata

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
)

// ErrReferenceData is returned when a reference table is missing or malformed.
var ErrReferenceData = errors.New("refdata: reference data unavailable")

// Position is an element's place in the periodic table. Display only.
type Position struct {
	Row   int    `json:"row"`
	Col   int    `json:"col"`
	Group string `json:"group"`
}

// Element is one row of the periodic table. A property missing from the
// source file is NaN.
type Element struct {
	Symbol       string
	Position     Position
	AtomicNumber int
	AtomicWeight float64 // g/mol
	AtomicRadius float64 // Å
	AtomicVolume float64 // cm³/mol
	MeltingPoint float64 // K
	NValence     float64
}

// Complete reports whether every numeric property is present.
func (e Element) Complete() bool {
	for _, v := range []float64{e.AtomicWeight, e.AtomicRadius, e.AtomicVolume, e.MeltingPoint, e.NValence} {
		if math.IsNaN(v) {
			return false
		}
	}
	return true
}

// PairwiseTable maps an unordered element pair to a scalar.
type PairwiseTable struct {
	values map[string]map[string]float64
}

// NewPairwiseTable copies values into a table. NaN entries are dropped so
// that they read as absent.
func NewPairwiseTable(values map[string]map[string]float64) *PairwiseTable {
	t := &PairwiseTable{values: make(map[string]map[string]float64, len(values))}
	for a, row := range values {
		for b, v := range row {
			if math.IsNaN(v) {
				continue
			}
			if t.values[a] == nil {
				t.values[a] = make(map[string]float64, len(row))
			}
			t.values[a][b] = v
		}
	}
	return t
}

// Lookup returns the value for {a, b}, trying (a, b) then (b, a).
func (t *PairwiseTable) Lookup(a, b string) (float64, bool) {
	if t == nil {
		return 0, false
	}
	if v, ok := t.values[a][b]; ok {
		return v, true
	}
	v, ok := t.values[b][a]
	return v, ok
}

// Len returns the number of stored entries.
func (t *PairwiseTable) Len() int {
	if t == nil {
		return 0
	}
	n := 0
	for _, row := range t.values {
		n += len(row)
	}
	return n
}

// Store is the loaded reference dataset. It is safe for concurrent reads.
type Store struct {
	elements map[string]Element
	ordered  []Element
	mixing   *PairwiseTable
	fusion   *PairwiseTable
}

// NewStore builds a Store from already decoded data.
func NewStore(elements []Element, mixing, fusion *PairwiseTable) (*Store, error) {
	if len(elements) == 0 {
		return nil, fmt.Errorf("%w: periodic table is empty", ErrReferenceData)
	}
	s := &Store{
		elements: make(map[string]Element, len(elements)),
		mixing:   mixing,
		fusion:   fusion,
	}
	if s.mixing == nil {
		s.mixing = NewPairwiseTable(nil)
	}
	if s.fusion == nil {
		s.fusion = NewPairwiseTable(nil)
	}
	for _, e := range elements {
		if e.Symbol == "" {
			return nil, fmt.Errorf("%w: element without symbol", ErrReferenceData)
		}
		if _, dup := s.elements[e.Symbol]; dup {
			return nil, fmt.Errorf("%w: duplicate element %s", ErrReferenceData, e.Symbol)
		}
		s.elements[e.Symbol] = e
		s.ordered = append(s.ordered, e)
	}
	slices.SortFunc(s.ordered, func(a, b Element) int {
		if c := cmp.Compare(a.AtomicNumber, b.AtomicNumber); c != 0 {
			return c
		}
		return cmp.Compare(a.Symbol, b.Symbol)
	})
	return s, nil
}

// Element returns the element with the given symbol.
func (s *Store) Element(symbol string) (Element, bool) {
	e, ok := s.elements[symbol]
	return e, ok
}

// Has reports whether symbol is in the periodic table.
func (s *Store) Has(symbol string) bool {
	_, ok := s.elements[symbol]
	return ok
}

// AtomicWeight satisfies composition.AtomicWeights.
func (s *Store) AtomicWeight(symbol string) (float64, bool) {
	e, ok := s.elements[symbol]
	if !ok || math.IsNaN(e.AtomicWeight) || e.AtomicWeight <= 0 {
		return 0, false
	}
	return e.AtomicWeight, true
}

// Elements returns all elements ordered by atomic number.
func (s *Store) Elements() []Element {
	return slices.Clone(s.ordered)
}

// Mixing returns the mixing enthalpy table (kJ/mol).
func (s *Store) Mixing() *PairwiseTable { return s.mixing }

// Fusion returns the fusion enthalpy table.
func (s *Store) Fusion() *PairwiseTable { return s.fusion }
