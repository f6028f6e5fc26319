package replica

import (
	"bytes"
	"embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

var funcs = template.FuncMap{
	"quote": strconv.Quote,
	"quoteList": func(items []string) string {
		quoted := make([]string, len(items))
		for i, s := range items {
			quoted[i] = strconv.Quote(s)
		}
		return strings.Join(quoted, ", ")
	},
	"cell": func(s string) string {
		return strings.ReplaceAll(s, "|", `\|`)
	},
}

// TemplateRenderer renders the embedded replica templates.
type TemplateRenderer struct {
	// templateGetter retrieves template content by name.
	templateGetter func(name string) (string, bool)
}

// NewTemplateRenderer creates a renderer over the given template getter.
func NewTemplateRenderer(getter func(name string) (string, bool)) *TemplateRenderer {
	return &TemplateRenderer{
		templateGetter: getter,
	}
}

// embeddedTemplate returns the content of templates/<name>.tmpl.
func embeddedTemplate(name string) (string, bool) {
	b, err := templatesFS.ReadFile("templates/" + name + ".tmpl")
	if err != nil {
		return "", false
	}
	return string(b), true
}

// Render executes the named template with data.
func (r *TemplateRenderer) Render(name string, data any) ([]byte, error) {
	content, ok := r.templateGetter(name)
	if !ok {
		return nil, fmt.Errorf("template %s not found", name)
	}

	tmpl, err := template.New(name).Funcs(funcs).Parse(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.Bytes(), nil
}
