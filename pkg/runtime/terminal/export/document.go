package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/de-tools/repo-atlas/pkg/models/domain"
)

// document is the serialized shape of a report shared by the JSON and YAML exporters.
type document struct {
	Title       string    `json:"title" yaml:"title"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	Sections    []section `json:"sections" yaml:"sections"`
}

type section struct {
	Title   string                 `json:"title" yaml:"title"`
	Summary map[string]interface{} `json:"summary,omitempty" yaml:"summary,omitempty"`
	Details []detail               `json:"details" yaml:"details"`
}

type detail struct {
	Name        string      `json:"name" yaml:"name"`
	Value       interface{} `json:"value,omitempty" yaml:"value,omitempty"`
	Status      string      `json:"status,omitempty" yaml:"status,omitempty"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
}

func newDocument(r *domain.Report) document {
	doc := document{
		Title:       r.Title,
		GeneratedAt: r.GeneratedAt,
		Sections:    make([]section, 0, len(r.Sections)),
	}
	for _, s := range r.Sections {
		sec := section{Title: s.Title, Summary: s.Summary, Details: make([]detail, 0, len(s.Details))}
		for _, d := range s.Details {
			sec.Details = append(sec.Details, detail(d))
		}
		doc.Sections = append(doc.Sections, sec)
	}
	return doc
}

type JSONReporter struct {
	writer io.Writer
}

func NewJSONReporter(writer io.Writer) *JSONReporter {
	return &JSONReporter{writer: writer}
}

func (j *JSONReporter) Handle(r *domain.Report) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(newDocument(r)); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

type YAMLReporter struct {
	writer io.Writer
}

func NewYAMLReporter(writer io.Writer) *YAMLReporter {
	return &YAMLReporter{writer: writer}
}

func (y *YAMLReporter) Handle(r *domain.Report) error {
	enc := yaml.NewEncoder(y.writer)
	enc.SetIndent(2)
	if err := enc.Encode(newDocument(r)); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return enc.Close()
}
