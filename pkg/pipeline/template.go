package pipeline

import (
	"strings"
	"text/template"
)

// templateData exposes the previous stage's normalized text to templates.
type templateData struct {
	Text string
}

// Template is a fixed string-substitution producing a stage's input from the
// previous stage's output text. Rendering has no conditional logic: a fixed
// template with fixed input renders byte-identically across runs.
type Template struct {
	raw  string
	tmpl *template.Template
}

// NewTemplate parses a Go text/template that may reference {{ .Text }}.
func NewTemplate(raw string) (*Template, error) {
	tmpl, err := template.New("stage").Parse(raw)
	if err != nil {
		return nil, err
	}
	return &Template{raw: raw, tmpl: tmpl}, nil
}

// MustTemplate parses a template literal, panicking on error. Intended for
// compile-time constants.
func MustTemplate(raw string) *Template {
	t, err := NewTemplate(raw)
	if err != nil {
		panic(err)
	}
	return t
}

// Render substitutes the previous stage's text into the template.
func (t *Template) Render(previousText string) (string, error) {
	var sb strings.Builder
	if err := t.tmpl.Execute(&sb, templateData{Text: previousText}); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// String returns the raw template source.
func (t *Template) String() string {
	return t.raw
}
