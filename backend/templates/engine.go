package templates

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"sync"

	"github.com/gatekeep/shield/backend/utils"
)

//go:embed pages/*.html
var pages embed.FS

// Engine renders the embedded pages for fiber. Each page is parsed together
// with the shared layout.
type Engine struct {
	mu        sync.RWMutex
	templates *template.Template
}

func New() *Engine {
	return &Engine{}
}

func (e *Engine) Load() error {
	tmpl, err := template.New("").Funcs(utils.TemplateFuncs()).ParseFS(pages, "pages/*.html")
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}
	e.mu.Lock()
	e.templates = tmpl
	e.mu.Unlock()
	return nil
}

// Render executes the page called name. Layouts are ignored since every page
// pulls in the layout itself.
func (e *Engine) Render(w io.Writer, name string, data interface{}, _ ...string) error {
	e.mu.RLock()
	tmpl := e.templates
	e.mu.RUnlock()
	if tmpl == nil {
		if err := e.Load(); err != nil {
			return err
		}
		return e.Render(w, name, data)
	}

	page := tmpl.Lookup(name)
	if page == nil {
		return fmt.Errorf("template %q not found", name)
	}
	return page.Execute(w, data)
}
