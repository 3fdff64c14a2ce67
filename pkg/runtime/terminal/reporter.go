package terminal

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/template"

	"github.com/fatih/color"

	"github.com/de-tools/repo-atlas/pkg/models/domain"
	"github.com/de-tools/repo-atlas/pkg/services/report"
)

var (
	okColor      = color.New(color.FgGreen, color.Bold).SprintFunc()
	warningColor = color.New(color.FgYellow, color.Bold).SprintFunc()
	failedColor  = color.New(color.FgRed, color.Bold).SprintFunc()
	titleColor   = color.New(color.FgCyan, color.Bold).SprintFunc()
)

// Reporter outputs reports to the console in a colored text form
type Reporter struct {
	writer io.Writer
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer}
}

func (c *Reporter) Handle(r *domain.Report) error {
	funcMap := template.FuncMap{
		"title":  titleColor,
		"status": colorStatus,
		"keys":   sortedKeys,
		"shown":  hasValue,
	}

	tmpl := `{{title .Title}}
Generated: {{.GeneratedAt.Format "2006-01-02 15:04:05"}}
{{range .Sections}}
=== {{title .Title}} ===
{{$summary := .Summary}}{{range keys .Summary}}{{.}}: {{index $summary .}}
{{end}}{{range .Details}}- {{.Name}}{{if shown .Value}}: {{.Value}}{{end}}{{if .Status}} [{{status .Status}}]{{end}}
{{if .Description}}  {{.Description}}
{{end}}{{end}}{{end}}`

	t, err := template.New("report").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, r)
}

func colorStatus(status string) string {
	switch status {
	case report.StatusOK:
		return okColor(status)
	case report.StatusWarning:
		return warningColor(status)
	case report.StatusFailed:
		return failedColor(status)
	default:
		return status
	}
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func hasValue(v interface{}) bool {
	return v != nil && v != ""
}
