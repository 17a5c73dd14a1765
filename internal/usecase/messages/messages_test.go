package messages

import (
	"go/parser"
	"go/token"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/futig/garage-bot/internal/flow"
)

func TestRenderPrice(t *testing.T) {
	got := RenderPrice(1234567.4)
	if got != "💰 Стоимость гаража:\n1 234 567 ₽" {
		t.Fatalf("RenderPrice = %q", got)
	}
}

func TestRenderInvalidAnswer(t *testing.T) {
	slot := &flow.Slot{Key: "width", Prompt: "Ширина (м):", Kind: flow.KindNumber}

	got := RenderInvalidAnswer(slot, flow.ReasonNotNumber)
	if !strings.HasPrefix(got, "❌ "+HintNumber) || !strings.HasSuffix(got, "Ширина (м):") {
		t.Fatalf("RenderInvalidAnswer = %q", got)
	}
}

func TestInputHint(t *testing.T) {
	number := &flow.Slot{Kind: flow.KindNumber}
	integer := &flow.Slot{Kind: flow.KindInteger}
	optional := &flow.Slot{Kind: flow.KindInteger, AllowZero: true}

	tests := []struct {
		slot   *flow.Slot
		reason flow.Reason
		want   string
	}{
		{number, flow.ReasonNotNumber, HintNumber},
		{integer, flow.ReasonNotNumber, HintWhole},
		{number, flow.ReasonNotPositive, HintPositive},
		{optional, flow.ReasonNotPositive, HintNonNegative},
		{integer, flow.ReasonNotWhole, HintWhole},
		{&flow.Slot{Kind: flow.KindChoice}, flow.ReasonNotInMenu, HintMenu},
		{&flow.Slot{Kind: flow.KindBool}, flow.ReasonNotYesNo, HintYesNo},
	}

	for _, tt := range tests {
		if got := InputHint(tt.slot, tt.reason); got != tt.want {
			t.Errorf("InputHint(%s, %s) = %q, want %q", tt.slot.Kind, tt.reason, got, tt.want)
		}
	}
}

func TestMainMenu(t *testing.T) {
	menu := MainMenu()
	if len(menu) != 2 || menu[0] != BtnCalculate || menu[1] != BtnManager {
		t.Fatalf("MainMenu = %v", menu)
	}
}

func TestDomainDoesNotImportTransport(t *testing.T) {
	const transport = "github.com/futig/garage-bot/internal/telegram"

	for _, dir := range []string{"../quote", "../assistant", "../../router", "."} {
		files, err := filepath.Glob(filepath.Join(dir, "*.go"))
		if err != nil || len(files) == 0 {
			t.Fatalf("no sources in %s: %v", dir, err)
		}

		for _, file := range files {
			f, err := parser.ParseFile(token.NewFileSet(), file, nil, parser.ImportsOnly)
			if err != nil {
				t.Fatalf("parse %s: %v", file, err)
			}
			for _, imp := range f.Imports {
				path, _ := strconv.Unquote(imp.Path.Value)
				if strings.HasPrefix(path, transport) {
					t.Errorf("%s imports %s", file, path)
				}
			}
		}
	}
}
