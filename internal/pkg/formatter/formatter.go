package formatter

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Line is one labelled row of a summary
type Line struct {
	Label string
	Value string
}

// Summary is a titled list of rows with a highlighted total
type Summary struct {
	Title string
	Lines []Line
	Total string
}

type Formatter interface {
	Format(s *Summary) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct {
	docxLicenseKey string
}

// NewFactory creates a factory; docxLicenseKey is the unidoc metered key, DOCX export fails without it
func NewFactory(docxLicenseKey string) *Factory {
	return &Factory{docxLicenseKey: docxLicenseKey}
}

// ForPath picks a formatter from the file extension of path
func (f *Factory) ForPath(path string) (Formatter, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case markdownFileExtension:
		return NewMarkdownFormatter(), nil
	case docxFileExtension:
		return NewDOCXFormatter(f.docxLicenseKey), nil
	case pdfFileExtension:
		return NewPDFFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported summary format %q, use .md, .pdf or .docx", ext)
	}
}

const totalLabel = "Итого"
