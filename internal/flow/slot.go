package flow

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/futig/garage-bot/internal/entity"
)

// Kind is the type of answer a slot accepts
type Kind string

const (
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
	KindChoice  Kind = "choice"
	KindBool    Kind = "bool"
)

// Answers accepted by bool slots; the first entry of each pair is shown on the keyboard
const (
	AnswerYes = "Да"
	AnswerNo  = "Нет"
)

var (
	yesAnswers = []string{"да", "yes"}
	noAnswers  = []string{"нет", "no"}
)

// Reason explains why an answer was rejected
type Reason string

const (
	ReasonNotNumber   Reason = "not_number"
	ReasonNotPositive Reason = "not_positive"
	ReasonNotWhole    Reason = "not_whole"
	ReasonNotInMenu   Reason = "not_in_menu"
	ReasonNotYesNo    Reason = "not_yes_no"
)

// InputError is returned for answers the user has to correct
type InputError struct {
	Slot   string
	Reason Reason
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid answer for %q: %s", e.Slot, e.Reason)
}

func (e *InputError) Unwrap() error {
	return entity.ErrInvalidInput
}

// Condition gates a slot on the answer to an earlier slot
type Condition struct {
	Slot   string `yaml:"slot"`
	Equals string `yaml:"equals,omitempty"` // Defaults to "true"
}

// Holds reports whether the precondition slot is set and matches
func (c *Condition) Holds(values Values) bool {
	if c == nil {
		return true
	}

	v, ok := values[c.Slot]
	if !ok {
		return false
	}

	want := c.Equals
	if want == "" {
		want = "true"
	}

	return fold(v.String()) == fold(want)
}

// Slot is one question of the flow
type Slot struct {
	Key       string     `yaml:"key"`
	Prompt    string     `yaml:"prompt"`
	Kind      Kind       `yaml:"kind"`
	Choices   []string   `yaml:"choices,omitempty"`
	AllowZero bool       `yaml:"allow_zero,omitempty"`
	When      *Condition `yaml:"when,omitempty"`
}

// Label is the prompt without its trailing punctuation
func (s *Slot) Label() string {
	return strings.TrimRight(strings.TrimSpace(s.Prompt), ":? ")
}

// Menu returns the options offered with the question, nil for free input
func (s *Slot) Menu() []string {
	switch s.Kind {
	case KindChoice:
		return s.Choices
	case KindBool:
		return []string{AnswerYes, AnswerNo}
	default:
		return nil
	}
}

// Parse validates a raw answer against the slot type
func (s *Slot) Parse(raw string) (Value, error) {
	text := strings.TrimSpace(raw)

	switch s.Kind {
	case KindNumber, KindInteger:
		return s.parseNumber(text)
	case KindChoice:
		for _, choice := range s.Choices {
			if fold(choice) == fold(text) {
				return Value{Kind: KindChoice, Text: choice}, nil
			}
		}
		return Value{}, s.reject(ReasonNotInMenu)
	case KindBool:
		switch {
		case slices.Contains(yesAnswers, fold(text)):
			return Value{Kind: KindBool, Flag: true}, nil
		case slices.Contains(noAnswers, fold(text)):
			return Value{Kind: KindBool, Flag: false}, nil
		}
		return Value{}, s.reject(ReasonNotYesNo)
	default:
		return Value{}, fmt.Errorf("slot %q: unsupported kind %q", s.Key, s.Kind)
	}
}

func (s *Slot) parseNumber(text string) (Value, error) {
	normalized := strings.ReplaceAll(text, " ", "")
	normalized = strings.ReplaceAll(normalized, ",", ".")

	n, err := strconv.ParseFloat(normalized, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return Value{}, s.reject(ReasonNotNumber)
	}

	if n < 0 || (n == 0 && !s.AllowZero) {
		return Value{}, s.reject(ReasonNotPositive)
	}

	if s.Kind == KindInteger && n != math.Trunc(n) {
		return Value{}, s.reject(ReasonNotWhole)
	}

	return Value{Kind: s.Kind, Number: n}, nil
}

func (s *Slot) reject(reason Reason) error {
	return &InputError{Slot: s.Key, Reason: reason}
}

// fold normalizes user text for comparisons
func fold(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, "ё", "е")
}

