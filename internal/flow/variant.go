// Package flow holds the slot engine of the pricing dialog. It is pure:
// session storage and pricing calls live in the quote usecase.
package flow

import (
	"fmt"

	"github.com/futig/garage-bot/internal/entity"
	"github.com/futig/garage-bot/internal/pricing"
)

// Variant is one slot table together with its payload mapping
type Variant struct {
	Name         string          `yaml:"name"`
	Title        string          `yaml:"title"`
	Slots        []Slot          `yaml:"slots"`
	DocumentSlot string          `yaml:"document_slot"`
	Mapping      pricing.Mapping `yaml:"mapping"`
}

// Validate checks that the table is internally consistent
func (v *Variant) Validate() error {
	if v.Name == "" {
		return fmt.Errorf("variant without name")
	}
	if len(v.Slots) == 0 {
		return fmt.Errorf("variant %s: no slots", v.Name)
	}

	seen := make(map[string]Kind, len(v.Slots))
	for i := range v.Slots {
		s := &v.Slots[i]
		if s.Key == "" {
			return fmt.Errorf("variant %s: slot %d has no key", v.Name, i)
		}
		if _, dup := seen[s.Key]; dup {
			return fmt.Errorf("variant %s: duplicate slot %s", v.Name, s.Key)
		}
		if s.Prompt == "" {
			return fmt.Errorf("variant %s: slot %s has no prompt", v.Name, s.Key)
		}

		switch s.Kind {
		case KindNumber, KindInteger, KindBool:
		case KindChoice:
			if len(s.Choices) == 0 {
				return fmt.Errorf("variant %s: choice slot %s has no choices", v.Name, s.Key)
			}
		default:
			return fmt.Errorf("variant %s: slot %s has unknown kind %q", v.Name, s.Key, s.Kind)
		}

		// Preconditions may only look back, so the flow can always make progress
		if s.When != nil {
			if _, ok := seen[s.When.Slot]; !ok {
				return fmt.Errorf("variant %s: slot %s depends on %q which is not asked before it", v.Name, s.Key, s.When.Slot)
			}
		}

		seen[s.Key] = s.Kind
	}

	if v.DocumentSlot != "" {
		kind, ok := seen[v.DocumentSlot]
		if !ok || kind != KindBool {
			return fmt.Errorf("variant %s: document slot %q must be a bool slot", v.Name, v.DocumentSlot)
		}
	}

	if err := v.Mapping.Validate(func(key string) bool {
		_, ok := seen[key]
		return ok
	}); err != nil {
		return fmt.Errorf("variant %s: %w", v.Name, err)
	}

	return nil
}

// Next returns the first slot that still needs an answer
func (v *Variant) Next(values Values) (*Slot, bool) {
	for i := range v.Slots {
		s := &v.Slots[i]
		if values.Has(s.Key) {
			continue
		}
		if !s.When.Holds(values) {
			continue
		}
		return s, true
	}
	return nil, false
}

// Complete reports whether every applicable slot is answered
func (v *Variant) Complete(values Values) bool {
	_, pending := v.Next(values)
	return !pending
}

// Apply validates raw as the answer to the next slot.
// The returned set is a copy; values is never modified. On success the
// following slot is returned, or nil when the flow is complete.
func (v *Variant) Apply(values Values, raw string) (Values, *Slot, error) {
	current, ok := v.Next(values)
	if !ok {
		return values, nil, entity.ErrFlowComplete
	}

	parsed, err := current.Parse(raw)
	if err != nil {
		return values, current, err
	}

	updated := values.Clone()
	updated[current.Key] = parsed

	next, _ := v.Next(updated)
	return updated, next, nil
}

// GenerateDocument reports whether the user asked for the proposal document
func (v *Variant) GenerateDocument(values Values) bool {
	if v.DocumentSlot == "" {
		return false
	}
	flag, _ := values.Flag(v.DocumentSlot)
	return flag
}

// Payload builds the pricing engine request for a complete value set
func (v *Variant) Payload(values Values) (*entity.PricingRequest, error) {
	return pricing.Build(&v.Mapping, values, v.GenerateDocument(values))
}
