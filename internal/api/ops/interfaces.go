package ops

import (
	"github.com/futig/garage-bot/internal/flow"
)

type SessionCounter interface {
	Counts() (flows, assistants int)
}

type VariantRegistry interface {
	Get(name string) (*flow.Variant, error)
	Names() []string
}
