package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
)

const basicAnswers = `length: 6
width: 3
height: "2,5"
peak: 3.2
roof: Двускатная
insulation: PIR
need_kp: Да
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)

	err := rootCmd.Execute()
	return stdout.String(), err
}

func writeAnswers(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "answers.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write answers: %v", err)
	}
	return path
}

func TestVariantsCommand(t *testing.T) {
	out, err := execute(t, "variants")
	if err != nil {
		t.Fatalf("variants: %v", err)
	}
	for _, name := range []string{"basic", "compact", "garage", "extra_doors_qty"} {
		if !strings.Contains(out, name) {
			t.Fatalf("output lacks %q:\n%s", name, out)
		}
	}
}

func TestPayloadCommand(t *testing.T) {
	out, err := execute(t, "payload", "basic", writeAnswers(t, basicAnswers))
	if err != nil {
		t.Fatalf("payload: %v", err)
	}

	var req struct {
		InputCells map[string]string `json:"input_cells"`
		GenerateKP bool              `json:"generate_kp"`
	}
	if err := sonic.UnmarshalString(out, &req); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if req.InputCells["G14"] != "2.5" || req.InputCells["C18"] != "Двускатная" || !req.GenerateKP {
		t.Fatalf("request = %+v", req)
	}
}

func TestPayloadCommandRejectsBadAnswers(t *testing.T) {
	tests := []struct {
		name    string
		answers string
	}{
		{"missing slot", "length: 6\n"},
		{"invalid value", strings.Replace(basicAnswers, "width: 3", "width: три", 1)},
		{"not a mapping", "- 6\n- 3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, "payload", "basic", writeAnswers(t, tt.answers)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}

	if _, err := execute(t, "payload", "nope", writeAnswers(t, basicAnswers)); err == nil {
		t.Fatalf("unknown variant accepted")
	}
}

func TestQuoteCommandWithMocks(t *testing.T) {
	t.Setenv("ENABLE_MOCKS", "true")
	t.Setenv("LOG_LEVEL", "error")

	out, err := execute(t, "quote", "basic", writeAnswers(t, basicAnswers))
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	// 450 000 + 6 * 3 * 18 500
	if !strings.Contains(out, "783 000 ₽") {
		t.Fatalf("price missing from output:\n%s", out)
	}
	if !strings.Contains(out, ".pdf") {
		t.Fatalf("document reference missing from output:\n%s", out)
	}
}

func TestQuoteCommandWritesSummary(t *testing.T) {
	t.Setenv("ENABLE_MOCKS", "true")
	t.Setenv("LOG_LEVEL", "error")

	path := filepath.Join(t.TempDir(), "quote.md")
	defer func() { summaryPath = "" }()

	if _, err := execute(t, "quote", "basic", writeAnswers(t, basicAnswers), "--summary", path); err != nil {
		t.Fatalf("quote: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	for _, want := range []string{"# Быстрый расчёт", "| Высота стен (м) | 2.5 |", "783 000 ₽"} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("summary lacks %q:\n%s", want, data)
		}
	}
}
