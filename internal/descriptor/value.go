package descriptor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindNotApplicable Kind = iota
	KindNumeric
	KindLabel
)

// NotApplicableLabel is how a missing model result is rendered and matched.
const NotApplicableLabel = "N/A"

// Value is a descriptor entry: a number, a label with an optional
// annotation, or not applicable. The zero Value is not applicable.
type Value struct {
	kind  Kind
	num   float64
	label string
	note  string
}

// Numeric wraps a number.
func Numeric(v float64) Value { return Value{kind: KindNumeric, num: v} }

// Label wraps a classification label such as "SS".
func Label(s string) Value { return Value{kind: KindLabel, label: s} }

// AnnotatedLabel wraps a label with a note that is displayed but is not
// part of its class.
func AnnotatedLabel(s, note string) Value { return Value{kind: KindLabel, label: s, note: note} }

// NotApplicable is the value of a model whose preconditions are not met.
func NotApplicable() Value { return Value{} }

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// Applicable reports whether v holds a number or a label.
func (v Value) Applicable() bool { return v.kind != KindNotApplicable }

// Float returns the number held by a numeric value.
func (v Value) Float() (float64, bool) { return v.num, v.kind == KindNumeric }

// Note returns the annotation of a label, if any.
func (v Value) Note() string { return v.note }

// Class is the comparable part of the value: the bare label, "N/A", or the
// shortest decimal form of a number.
func (v Value) Class() string {
	switch v.kind {
	case KindNumeric:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindLabel:
		return v.label
	default:
		return NotApplicableLabel
	}
}

// String renders the value for display; annotated labels read
// "SS (Tₐₙ: 1081.2 K)".
func (v Value) String() string {
	if v.kind == KindLabel && v.note != "" {
		return fmt.Sprintf("%s (%s)", v.label, v.note)
	}
	return v.Class()
}

type annotated struct {
	Label string `json:"label"`
	Note  string `json:"note"`
}

// MarshalJSON encodes not applicable as null, numbers as numbers, plain
// labels as strings and annotated labels as {"label","note"} objects.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumeric:
		return json.Marshal(v.num)
	case KindLabel:
		if v.note != "" {
			return json.Marshal(annotated{Label: v.label, Note: v.note})
		}
		return json.Marshal(v.label)
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = NotApplicable()
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Label(s)
	case len(data) > 0 && data[0] == '{':
		var a annotated
		if err := json.Unmarshal(data, &a); err != nil {
			return err
		}
		*v = AnnotatedLabel(a.Label, a.Note)
	default:
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("descriptor: invalid value %s", data)
		}
		*v = Numeric(f)
	}
	return nil
}
