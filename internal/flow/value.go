package flow

import (
	"strconv"
)

// Value is a validated slot answer
type Value struct {
	Kind   Kind
	Number float64
	Text   string
	Flag   bool
}

// String renders the value the way the pricing engine expects it
func (v Value) String() string {
	switch v.Kind {
	case KindNumber, KindInteger:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Flag)
	default:
		return v.Text
	}
}

// Display renders the value the way the user answered it
func (v Value) Display() string {
	if v.Kind == KindBool {
		if v.Flag {
			return AnswerYes
		}
		return AnswerNo
	}
	return v.String()
}

// Values holds the answers of one flow session keyed by slot key
type Values map[string]Value

// Clone returns an independent copy
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Strings returns every answer in its pricing engine form
func (v Values) Strings() map[string]string {
	out := make(map[string]string, len(v))
	for k, val := range v {
		out[k] = val.String()
	}
	return out
}

// Has reports whether the slot is set
func (v Values) Has(key string) bool {
	_, ok := v[key]
	return ok
}

// Text returns the stringified value of a slot
func (v Values) Text(key string) (string, bool) {
	val, ok := v[key]
	if !ok {
		return "", false
	}
	return val.String(), true
}

// Flag returns the value of a bool slot
func (v Values) Flag(key string) (bool, bool) {
	val, ok := v[key]
	if !ok || val.Kind != KindBool {
		return false, false
	}
	return val.Flag, true
}
