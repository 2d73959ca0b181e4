package mail

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// TemplateData is the data a body template is executed with. RecipientName
// and SenderName are the two placeholders every campaign template is expected
// to use.
type TemplateData struct {
	RecipientName  string
	RecipientEmail string
	SenderName     string
	SenderEmail    string
}

// Template is a parsed body template. It is safe to reuse for every contact.
type Template struct {
	tmpl *template.Template
}

var (
	defaultTemplate *Template

	//go:embed templates/default.txt
	defaultTemplateRaw string
)

func init() {
	t, err := parse("default", defaultTemplateRaw)
	if err != nil {
		panic(err)
	}
	defaultTemplate = t
}

func parse(name, text string) (*Template, error) {
	tmpl, err := template.New(name).
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=error").
		Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return &Template{tmpl: tmpl}, nil
}

// DefaultTemplate returns the built-in application letter.
func DefaultTemplate() *Template {
	return defaultTemplate
}

// ParseTemplate parses text as a body template; an empty text selects the
// built-in default. The template is executed once against sample data so
// references to unknown fields are reported before the first send.
func ParseTemplate(text string) (*Template, error) {
	if text == "" {
		return defaultTemplate, nil
	}
	t, err := parse("body", text)
	if err != nil {
		return nil, err
	}
	if _, err := t.Render(TemplateData{
		RecipientName:  "Recipient",
		RecipientEmail: "recipient@example.com",
		SenderName:     "Sender",
		SenderEmail:    "sender@example.com",
	}); err != nil {
		return nil, err
	}
	return t, nil
}

// Render executes the template. Text outside template actions is copied
// verbatim.
func (t *Template) Render(data TemplateData) (string, error) {
	b := bytes.Buffer{}
	if err := t.tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return b.String(), nil
}
