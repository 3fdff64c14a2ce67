package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/repo-atlas/pkg/models/domain"
)

type TableConfig struct {
	NameWidth        int
	ValueWidth       int
	StatusWidth      int
	DescriptionWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		NameWidth:        40,
		ValueWidth:       20,
		StatusWidth:      8,
		DescriptionWidth: 54,
	}
}

// TableReporter renders every section as a fixed-width table.
type TableReporter struct {
	writer io.Writer
	config TableConfig
}

func NewTableReporter(writer io.Writer) *TableReporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &TableReporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

func (c *TableReporter) Handle(report *domain.Report) error {
	funcMap := template.FuncMap{
		"formatRow": func(name string, value interface{}, status string, desc string) string {
			if value == nil {
				value = ""
			}
			return fmt.Sprintf("| %-*s | %-*v | %-*s | %-*s |",
				c.config.NameWidth, truncate(name, c.config.NameWidth),
				c.config.ValueWidth, value,
				c.config.StatusWidth, status,
				c.config.DescriptionWidth, truncate(desc, c.config.DescriptionWidth))
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+",
				strings.Repeat("-", c.config.NameWidth+2),
				strings.Repeat("-", c.config.ValueWidth+2),
				strings.Repeat("-", c.config.StatusWidth+2),
				strings.Repeat("-", c.config.DescriptionWidth+2))
		},
	}

	tmpl := `
{{.Title}}
Generated: {{.GeneratedAt.Format "2006-01-02 15:04:05"}}
{{range .Sections}}
=== {{.Title}} ===
{{range $key, $value := .Summary}}{{$key}}: {{$value}}
{{end}}
{{separator}}
{{formatRow "Name" "Value" "Status" "Description"}}
{{separator}}
{{range .Details}}{{formatRow .Name .Value .Status .Description}}
{{end}}{{separator}}
{{end}}`

	t, err := template.New("report").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, report)
}

func truncate(s string, width int) string {
	if len(s) <= width || width < 4 {
		return s
	}
	return s[:width-3] + "..."
}
