package pricing

import (
	"fmt"

	"github.com/futig/garage-bot/internal/entity"
)

// TotalField is the key of the price in cells_to_return and in the engine response
const TotalField = "total"

// Build maps slot values onto an engine request. It never mutates its inputs.
func Build(m *Mapping, values Values, generateDocument bool) (*entity.PricingRequest, error) {
	cells := make(map[string]string, len(m.Cells))

	for _, rule := range m.Cells {
		value, ok, err := encode(rule, values)
		if err != nil {
			return nil, err
		}
		if ok {
			cells[rule.Cell] = value
		}
	}

	ret := make(map[string]entity.CellRef, len(m.Return))
	for k, ref := range m.Return {
		ret[k] = ref
	}

	return &entity.PricingRequest{
		InputCells:    cells,
		CellsToReturn: ret,
		GenerateKP:    generateDocument,
	}, nil
}

func encode(rule Rule, values Values) (string, bool, error) {
	if rule.Encode == EncodeConst {
		return rule.Const, true, nil
	}

	text, ok := values.Text(rule.Source)
	if !ok {
		if rule.Default != nil {
			return *rule.Default, true, nil
		}
		return "", false, nil
	}

	switch rule.Encode {
	case EncodeValue:
		return text, true, nil
	case EncodeYesNo:
		flag, isFlag := values.Flag(rule.Source)
		if !isFlag {
			return "", false, fmt.Errorf("cell %s: slot %q is not a yes/no answer", rule.Cell, rule.Source)
		}
		if flag {
			return cellYes, true, nil
		}
		return cellNo, true, nil
	case EncodeLookup:
		if mapped, found := rule.Lookup[text]; found {
			return mapped, true, nil
		}
		if rule.Default != nil {
			return *rule.Default, true, nil
		}
		return "", false, fmt.Errorf("cell %s: no lookup entry for %q", rule.Cell, text)
	default:
		return "", false, fmt.Errorf("cell %s: unknown encoding %q", rule.Cell, rule.Encode)
	}
}
