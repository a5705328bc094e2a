package mailservice

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
)

//go:embed templates/*
var templateFS embed.FS

// NewTemplate parses every embedded template up front.
func NewTemplate() (*Template, error) {
	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	sets := make(map[string]*template.Template, len(names))
	for _, n := range names {
		t, err := template.New("email").ParseFS(templateFS, n)
		if err != nil {
			return nil, fmt.Errorf("could not parse template %s: %w", n, err)
		}
		sets[path.Base(n)] = t
	}

	return &Template{sets: sets}, nil
}

// ParseTemplate renders the subject, plain text body and html body of the named
// template. The data parameter should be a struct with the fields the template uses.
func (tp *Template) ParseTemplate(name string, data any) (*bytes.Buffer, *bytes.Buffer, *bytes.Buffer, error) {
	t, ok := tp.sets[name]
	if !ok {
		return nil, nil, nil, fmt.Errorf("template %q not found", name)
	}

	subject := new(bytes.Buffer)
	err := t.ExecuteTemplate(subject, "subject", data)
	if err != nil {
		return nil, nil, nil, err
	}

	plainBody := new(bytes.Buffer)
	err = t.ExecuteTemplate(plainBody, "plainBody", data)
	if err != nil {
		return nil, nil, nil, err
	}

	htmlBody := new(bytes.Buffer)
	err = t.ExecuteTemplate(htmlBody, "htmlBody", data)
	if err != nil {
		return nil, nil, nil, err
	}

	return subject, plainBody, htmlBody, nil
}
