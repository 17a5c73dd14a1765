package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/futig/garage-bot/internal/flow"
	"gopkg.in/yaml.v3"
)

// readAnswers loads a YAML mapping of slot key to the answer as typed in chat
func readAnswers(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read answers: %w", err)
	}

	var answers map[string]string
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&answers); err != nil {
		return nil, fmt.Errorf("parse answers %s: %w", path, err)
	}

	return answers, nil
}

// replay runs the answers file through the named variant
func replay(registry *flow.Registry, variant, path string) (*flow.Variant, flow.Values, error) {
	v, err := registry.Get(variant)
	if err != nil {
		return nil, nil, err
	}

	answers, err := readAnswers(path)
	if err != nil {
		return nil, nil, err
	}

	values, err := v.Replay(answers)
	if err != nil {
		return nil, nil, err
	}

	return v, values, nil
}
