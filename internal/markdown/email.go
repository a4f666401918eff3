package markdown

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
)

//go:embed templates/*.md
var templatesFS embed.FS

// Email is a rendered email template.
type Email struct {
	Subject string
	HTML    string
	Text    string
}

// RenderEmail executes the named template with data and renders it to an
// HTML and a plain text body. The subject comes from the "subject"
// frontmatter key.
func (p *Parser) RenderEmail(name string, data any) (*Email, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/"+name+".md")
	if err != nil {
		return nil, fmt.Errorf("load email template %s: %w", name, err)
	}

	var source bytes.Buffer
	if err := tmpl.Execute(&source, data); err != nil {
		return nil, fmt.Errorf("execute email template %s: %w", name, err)
	}

	html, meta, err := p.ParseWithFrontmatter(source.Bytes())
	if err != nil {
		return nil, fmt.Errorf("render email template %s: %w", name, err)
	}

	subject, _ := meta["subject"].(string)
	if subject == "" {
		return nil, fmt.Errorf("email template %s has no subject", name)
	}

	return &Email{
		Subject: subject,
		HTML:    string(html),
		Text:    string(stripFrontmatter(source.Bytes())),
	}, nil
}
