// Package export renders reports into the file formats offered by the CLI.
package export

import (
	"fmt"
	"io"

	"github.com/de-tools/repo-atlas/pkg/models/domain"
)

const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatPDF   = "pdf"
)

type Handler interface {
	Handle(report *domain.Report) error
}

// New returns the exporter for format writing to w.
func New(format string, w io.Writer) (Handler, error) {
	switch format {
	case FormatTable:
		return NewTableReporter(w), nil
	case FormatJSON:
		return NewJSONReporter(w), nil
	case FormatYAML:
		return NewYAMLReporter(w), nil
	case FormatPDF:
		return NewPDFReporter(w), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}
