package formatter

import (
	"bytes"
	"fmt"
	"os"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfContentType   = "application/pdf"
	pdfFileExtension = ".pdf"

	// Internal gofpdf name of the UTF-8 font
	pdfFontName = "DejaVuSans"

	// Overrides the font lookup below
	pdfFontEnv = "SUMMARY_FONT_PATH"

	// Next to the binary in the container image
	pdfFontRuntimePath = "ttf/DejaVuSans.ttf"

	// Common system location
	pdfFontSystemPath = "/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf"
)

type PDFFormatter struct{}

func NewPDFFormatter() *PDFFormatter {
	return &PDFFormatter{}
}

// resolveFontPath finds a Cyrillic-capable TTF, empty when none is installed
func resolveFontPath() string {
	for _, path := range []string{os.Getenv(pdfFontEnv), pdfFontRuntimePath, pdfFontSystemPath} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func (mf *PDFFormatter) Format(s *Summary) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Core fonts cannot render Cyrillic; they are used only when no TTF is found
	fontName := "Arial"
	if fontPath := resolveFontPath(); fontPath != "" {
		// AddUTF8Font resolves paths against the font dir, so absolute paths are read here
		font, err := os.ReadFile(fontPath)
		if err != nil {
			return nil, fmt.Errorf("read font %s: %w", fontPath, err)
		}
		pdf.AddUTF8FontFromBytes(pdfFontName, "", font)
		pdf.AddUTF8FontFromBytes(pdfFontName, "B", font)
		fontName = pdfFontName
	}

	pdf.SetFont(fontName, "B", 18)
	pdf.MultiCell(0, 9, s.Title, "", "", false)
	pdf.Ln(4)

	pdf.SetFont(fontName, "", 12)
	_, lineHeight := pdf.GetFontSize()
	for _, l := range s.Lines {
		pdf.CellFormat(90, lineHeight*1.6, l.Label, "B", 0, "L", false, 0, "")
		pdf.CellFormat(0, lineHeight*1.6, l.Value, "B", 1, "L", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont(fontName, "B", 14)
	pdf.Cell(0, 10, totalLabel+": "+s.Total)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (mf *PDFFormatter) ContentType() string {
	return pdfContentType
}

func (mf *PDFFormatter) FileExtension() string {
	return pdfFileExtension
}
