package flow

import (
	"errors"
	"fmt"
	"slices"
)

// ErrMissingAnswer is returned by Replay when an applicable slot has no answer
var ErrMissingAnswer = errors.New("missing answer")

// Replay runs a whole dialog from answers keyed by slot key.
// Answers for slots skipped by their condition are ignored.
func (v *Variant) Replay(answers map[string]string) (Values, error) {
	for key := range answers {
		if !slices.ContainsFunc(v.Slots, func(s Slot) bool { return s.Key == key }) {
			return nil, fmt.Errorf("variant %s has no slot %q", v.Name, key)
		}
	}

	values := Values{}
	for {
		slot, pending := v.Next(values)
		if !pending {
			return values, nil
		}

		raw, ok := answers[slot.Key]
		if !ok {
			return nil, fmt.Errorf("%w for slot %q", ErrMissingAnswer, slot.Key)
		}

		updated, _, err := v.Apply(values, raw)
		if err != nil {
			return nil, err
		}
		values = updated
	}
}
