// Package pricing maps collected slot values onto the pricing engine request.
package pricing

import (
	"fmt"

	"github.com/futig/garage-bot/internal/entity"
)

// Encoding says how a rule turns a slot value into a cell value
type Encoding string

const (
	EncodeValue  Encoding = "value"  // slot value as text
	EncodeConst  Encoding = "const"  // fixed text, no source slot
	EncodeYesNo  Encoding = "yes_no" // bool slot as "Да"/"Нет"
	EncodeLookup Encoding = "lookup" // slot value translated through Lookup
)

const (
	cellYes = "Да"
	cellNo  = "Нет"
)

// Rule maps one source slot onto one engine input cell
type Rule struct {
	Cell    string            `yaml:"cell"`
	Source  string            `yaml:"source,omitempty"`
	Encode  Encoding          `yaml:"encode"`
	Const   string            `yaml:"const,omitempty"`
	Lookup  map[string]string `yaml:"lookup,omitempty"`
	Default *string           `yaml:"default,omitempty"` // Used when the source slot is unset; nil omits the cell
}

// Mapping is the declarative field table of one flow variant
type Mapping struct {
	Cells  []Rule                    `yaml:"cells"`
	Return map[string]entity.CellRef `yaml:"return"`
}

// Values is the read side of a slot set
type Values interface {
	Text(key string) (string, bool)
	Flag(key string) (bool, bool)
}

// Validate checks the table against the slots that exist in the variant
func (m *Mapping) Validate(hasSlot func(key string) bool) error {
	if len(m.Cells) == 0 {
		return fmt.Errorf("mapping has no cells")
	}
	if _, ok := m.Return[TotalField]; !ok {
		return fmt.Errorf("mapping must return %q", TotalField)
	}

	seen := make(map[string]struct{}, len(m.Cells))
	for i, rule := range m.Cells {
		if rule.Cell == "" {
			return fmt.Errorf("rule %d: empty cell", i)
		}
		if _, dup := seen[rule.Cell]; dup {
			return fmt.Errorf("rule %d: duplicate cell %s", i, rule.Cell)
		}
		seen[rule.Cell] = struct{}{}

		switch rule.Encode {
		case EncodeConst:
			if rule.Source != "" {
				return fmt.Errorf("cell %s: const rule must not have a source", rule.Cell)
			}
			continue
		case EncodeValue, EncodeYesNo:
		case EncodeLookup:
			if len(rule.Lookup) == 0 {
				return fmt.Errorf("cell %s: lookup rule without lookup table", rule.Cell)
			}
		default:
			return fmt.Errorf("cell %s: unknown encoding %q", rule.Cell, rule.Encode)
		}

		if rule.Source == "" || !hasSlot(rule.Source) {
			return fmt.Errorf("cell %s: unknown source slot %q", rule.Cell, rule.Source)
		}
	}

	return nil
}
