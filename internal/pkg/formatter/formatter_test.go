package formatter

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testSummary() *Summary {
	return &Summary{
		Title: "Быстрый расчёт",
		Lines: []Line{
			{Label: "Длина, м", Value: "6"},
			{Label: "Кровля", Value: "Двускатная"},
		},
		Total: "783 000 ₽",
	}
}

func TestForPath(t *testing.T) {
	f := NewFactory("")

	cases := map[string]string{
		"out/quote.md": markdownContentType,
		"quote.PDF":    pdfContentType,
		"a/b/kp.docx":  docxContentType,
	}
	for path, want := range cases {
		got, err := f.ForPath(path)
		if err != nil {
			t.Fatalf("ForPath(%s): %v", path, err)
		}
		if got.ContentType() != want {
			t.Fatalf("ForPath(%s) content type = %s", path, got.ContentType())
		}
	}

	if _, err := f.ForPath("quote.txt"); err == nil {
		t.Fatalf("unsupported extension accepted")
	}
}

func TestMarkdownFormatter(t *testing.T) {
	out, err := NewMarkdownFormatter().Format(testSummary())
	if err != nil {
		t.Fatalf("Format: %v", err)
	}

	text := string(out)
	for _, want := range []string{"# Быстрый расчёт", "| Кровля | Двускатная |", "**Итого: 783 000 ₽**"} {
		if !strings.Contains(text, want) {
			t.Fatalf("markdown lacks %q:\n%s", want, text)
		}
	}
}

func TestPDFFormatter(t *testing.T) {
	out, err := NewPDFFormatter().Format(testSummary())
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF")
	}
}

func TestPDFFormatterAbsoluteFontPath(t *testing.T) {
	font, err := os.ReadFile(pdfFontSystemPath)
	if err != nil {
		t.Skipf("no system font: %v", err)
	}

	fontPath := filepath.Join(t.TempDir(), "summary.ttf")
	if err := os.WriteFile(fontPath, font, 0o644); err != nil {
		t.Fatalf("write font: %v", err)
	}
	t.Setenv(pdfFontEnv, fontPath)

	out, err := NewPDFFormatter().Format(testSummary())
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if !bytes.Contains(out, []byte("/FontFile2")) {
		t.Fatalf("font from %s not embedded", fontPath)
	}
}

func TestPDFFormatterUnreadableFont(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(pdfFontEnv, dir)

	if _, err := NewPDFFormatter().Format(testSummary()); err == nil {
		t.Fatalf("expected an error for font path %s", dir)
	}
}

func TestDOCXFormatterRequiresLicense(t *testing.T) {
	f, err := NewFactory("").ForPath("quote.docx")
	if err != nil {
		t.Fatalf("ForPath: %v", err)
	}

	out, err := f.Format(testSummary())
	if !errors.Is(err, ErrDOCXLicense) {
		t.Fatalf("error = %v, want ErrDOCXLicense", err)
	}
	if out != nil {
		t.Fatalf("output returned without a license: %d bytes", len(out))
	}
}
