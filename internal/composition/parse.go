package composition

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var formulaToken = regexp.MustCompile(`([A-Z][a-z]?)(\d*\.?\d*)`)

// ParseFormula parses a chemical formula such as "Al0.5CoCrFeNi",
// "Fe20Ni80" or "Fe₂₀Ni₈₀" and renormalizes it to 100 atomic percent. An
// element without a number counts as 1.
func ParseFormula(formula string) (Composition, error) {
	s := plainDigits.Replace(strings.Join(strings.Fields(formula), ""))
	if s == "" {
		return nil, &InputError{Reason: "empty formula"}
	}

	var (
		c    Composition
		errs []error
		pos  int
	)
	index := make(map[string]int)
	for _, m := range formulaToken.FindAllStringSubmatchIndex(s, -1) {
		if m[0] != pos {
			return nil, &InputError{Reason: fmt.Sprintf("unexpected %q in formula %q", s[pos:m[0]], formula)}
		}
		pos = m[1]

		symbol := s[m[2]:m[3]]
		amount := 1.0
		if num := s[m[4]:m[5]]; num != "" {
			v, err := strconv.ParseFloat(num, 64)
			if err != nil || v <= 0 {
				errs = append(errs, &InputError{Element: symbol, Reason: fmt.Sprintf("invalid amount %q", num)})
				continue
			}
			amount = v
		}
		if i, dup := index[symbol]; dup {
			c[i].Percent += amount
			continue
		}
		index[symbol] = len(c)
		c = append(c, Component{Symbol: symbol, Percent: amount})
	}
	if pos != len(s) {
		return nil, &InputError{Reason: fmt.Sprintf("unexpected %q in formula %q", s[pos:], formula)}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return c.Normalize()
}

// ParsePairs parses "Sym=value" arguments in order. Values are returned as
// given; callers convert them with Convert.
func ParsePairs(args []string) (Composition, error) {
	var (
		c    Composition
		errs []error
	)
	for _, arg := range args {
		for _, field := range strings.Split(arg, ",") {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			symbol, value, ok := strings.Cut(field, "=")
			symbol = strings.TrimSpace(symbol)
			if !ok || symbol == "" {
				errs = append(errs, &InputError{Reason: fmt.Sprintf("expected Symbol=value, got %q", field)})
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if err != nil {
				errs = append(errs, &InputError{Element: symbol, Reason: fmt.Sprintf("invalid value %q", value)})
				continue
			}
			c = append(c, Component{Symbol: symbol, Percent: v})
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if len(c) == 0 {
		return nil, &InputError{Reason: "no elements given"}
	}
	return c, nil
}
