package messaging

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/django/v3"
)

//go:embed templates/*.django
var templateFS embed.FS

// Template names. Each has a .txt and a .html variant.
const (
	TemplateWelcome       = "welcome"
	TemplatePasswordReset = "password_reset"
	TemplateVerification  = "verification"
)

// Templates renders the account emails from the embedded django templates
type Templates struct {
	engine *django.Engine
	app    string
}

// NewTemplates loads the embedded templates. app is exposed to every
// template as {{ app }}.
func NewTemplates(app string) (*Templates, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("messaging: scope templates: %w", err)
	}

	engine := django.NewFileSystem(http.FS(sub), ".django")
	if err := engine.Load(); err != nil {
		return nil, fmt.Errorf("messaging: load templates: %w", err)
	}

	return &Templates{engine: engine, app: app}, nil
}

// Render returns the text and html bodies of the named template
func (t *Templates) Render(name string, data map[string]any) (text, html string, err error) {
	bind := map[string]any{"app": t.app}
	for k, v := range data {
		bind[k] = v
	}

	var buf bytes.Buffer
	if err := t.engine.Render(&buf, name+".txt", bind); err != nil {
		return "", "", fmt.Errorf("messaging: render %s text: %w", name, err)
	}
	text = buf.String()

	buf.Reset()
	if err := t.engine.Render(&buf, name+".html", bind); err != nil {
		return "", "", fmt.Errorf("messaging: render %s html: %w", name, err)
	}

	return text, buf.String(), nil
}
