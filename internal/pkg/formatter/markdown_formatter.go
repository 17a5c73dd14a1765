package formatter

import (
	"bytes"
	"fmt"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (mf *MarkdownFormatter) Format(s *Summary) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\n", s.Title)

	if len(s.Lines) > 0 {
		buf.WriteString("| Параметр | Значение |\n|---|---|\n")
		for _, l := range s.Lines {
			fmt.Fprintf(&buf, "| %s | %s |\n", l.Label, l.Value)
		}
		buf.WriteString("\n")
	}

	fmt.Fprintf(&buf, "**%s: %s**\n", totalLabel, s.Total)
	return buf.Bytes(), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}
