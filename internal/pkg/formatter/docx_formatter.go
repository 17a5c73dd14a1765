package formatter

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/unidoc/unioffice/common/license"
	"github.com/unidoc/unioffice/document"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
)

// ErrDOCXLicense is returned when no unidoc key is configured; unioffice refuses to save without one
var ErrDOCXLicense = errors.New("docx export requires SUMMARY_UNIDOC_LICENSE_KEY")

// The unidoc license is process-wide and is activated once
var (
	licenseOnce sync.Once
	licenseErr  error
)

func activateLicense(key string) error {
	licenseOnce.Do(func() {
		licenseErr = license.SetMeteredKey(key)
	})
	return licenseErr
}

type DOCXFormatter struct {
	licenseKey string
}

func NewDOCXFormatter(licenseKey string) *DOCXFormatter {
	return &DOCXFormatter{licenseKey: licenseKey}
}

func (mf *DOCXFormatter) Format(s *Summary) ([]byte, error) {
	if mf.licenseKey == "" {
		return nil, ErrDOCXLicense
	}
	if err := activateLicense(mf.licenseKey); err != nil {
		return nil, fmt.Errorf("activate unidoc license: %w", err)
	}

	doc := document.New()
	defer doc.Close()

	titlePar := doc.AddParagraph()
	titlePar.SetStyle("Heading1")
	titlePar.AddRun().AddText(s.Title)

	doc.AddParagraph()

	for _, l := range s.Lines {
		par := doc.AddParagraph()
		label := par.AddRun()
		label.Properties().SetBold(true)
		label.AddText(l.Label + ": ")
		par.AddRun().AddText(l.Value)
	}

	doc.AddParagraph()

	totalPar := doc.AddParagraph()
	totalRun := totalPar.AddRun()
	totalRun.Properties().SetBold(true)
	totalRun.AddText(totalLabel + ": " + s.Total)

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (mf *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (mf *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}
