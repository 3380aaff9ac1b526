package refdata

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/mdlhea/heapp/internal/validation"
)

// File names inside a reference data directory.
const (
	PeriodicTableFile  = "periodic_table.json"
	MixingEnthalpyFile = "mixing_enthalpy_data.json"
	FusionEnthalpyFile = "fusion_enthalpy_data.json"
)

//go:embed data/*.json
var embedded embed.FS

var defaultStore = sync.OnceValues(func() (*Store, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReferenceData, err)
	}
	return LoadFS(sub)
})

// Default returns the built-in dataset of common HEA elements.
func Default() (*Store, error) {
	return defaultStore()
}

// LoadDir loads the three reference tables from dir.
func LoadDir(dir string) (*Store, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReferenceData, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrReferenceData, dir)
	}
	return LoadFS(os.DirFS(dir))
}

// LoadFS loads the reference tables from fsys. A missing or malformed file
// is reported as ErrReferenceData.
func LoadFS(fsys fs.FS) (*Store, error) {
	elements, err := loadPeriodicTable(fsys)
	if err != nil {
		return nil, err
	}
	mixing, err := loadPairwise(fsys, MixingEnthalpyFile)
	if err != nil {
		return nil, err
	}
	fusion, err := loadPairwise(fsys, FusionEnthalpyFile)
	if err != nil {
		return nil, err
	}
	return NewStore(elements, mixing, fusion)
}

type rawElement struct {
	Position   *Position `json:"position"`
	Properties struct {
		AtomicNumber quantity `json:"atomic_number"`
		AtomicWeight quantity `json:"atomic_weight"`
		AtomicRadius quantity `json:"atomic_radius"`
		AtomicVolume quantity `json:"atomic_volume"`
		MeltingPoint quantity `json:"melting_point"`
		NValence     quantity `json:"nvalence"`
	} `json:"properties"`
}

func loadPeriodicTable(fsys fs.FS) ([]Element, error) {
	data, err := readTable(fsys, PeriodicTableFile, validation.ValidatePeriodicTableBytes)
	if err != nil {
		return nil, err
	}
	var raw map[string]rawElement
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrReferenceData, PeriodicTableFile, err)
	}
	elements := make([]Element, 0, len(raw))
	for symbol, r := range raw {
		e := Element{
			Symbol:       symbol,
			AtomicWeight: r.Properties.AtomicWeight.value(),
			AtomicRadius: r.Properties.AtomicRadius.value(),
			AtomicVolume: r.Properties.AtomicVolume.value(),
			MeltingPoint: r.Properties.MeltingPoint.value(),
			NValence:     r.Properties.NValence.value(),
		}
		if z := r.Properties.AtomicNumber.value(); !math.IsNaN(z) {
			e.AtomicNumber = int(z)
		}
		if r.Position != nil {
			e.Position = *r.Position
		}
		elements = append(elements, e)
	}
	return elements, nil
}

func loadPairwise(fsys fs.FS, name string) (*PairwiseTable, error) {
	data, err := readTable(fsys, name, validation.ValidatePairwiseBytes)
	if err != nil {
		return nil, err
	}
	var raw map[string]map[string]quantity
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrReferenceData, name, err)
	}
	values := make(map[string]map[string]float64, len(raw))
	for a, row := range raw {
		values[a] = make(map[string]float64, len(row))
		for b, q := range row {
			values[a][b] = q.value()
		}
	}
	return NewPairwiseTable(values), nil
}

func readTable(fsys fs.FS, name string, validate func([]byte) []string) ([]byte, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s not found", ErrReferenceData, name)
		}
		return nil, fmt.Errorf("%w: reading %s: %v", ErrReferenceData, name, err)
	}
	if errs := validate(data); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s: %s", ErrReferenceData, name, strings.Join(errs, "; "))
	}
	return data, nil
}

// quantity accepts a JSON number, a numeric string, "NaN", "" or null.
// Anything but a number reads as NaN.
type quantity struct {
	v  float64
	ok bool
}

func (q quantity) value() float64 {
	if !q.ok {
		return math.NaN()
	}
	return q.v
}

func (q *quantity) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*q = quantity{}
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		s = strings.TrimSpace(str)
		if s == "" || strings.EqualFold(s, "nan") {
			*q = quantity{}
			return nil
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid quantity %s", string(data))
	}
	*q = quantity{v: v, ok: !math.IsNaN(v)}
	return nil
}
