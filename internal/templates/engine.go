// Package templates renders Liquid templates for reusable email layouts.
// Campaign sends use the plain {{variable}} substitution in the
// personalize package; this engine backs the richer template editor
// surface where loops, conditionals and filters are available.
package templates

import (
	"errors"
	"sync"
	"time"

	"github.com/osteele/liquid"

	"github.com/bde-platform/mailer/internal/domain"
)

// ErrEmptyTemplate is returned when the template source is empty.
var ErrEmptyTemplate = errors.New("template source is empty")

var frenchMonths = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// Engine compiles and renders Liquid templates. Compiled templates are
// cached by source, so repeated previews of the same draft are cheap.
type Engine struct {
	engine *liquid.Engine

	mu    sync.RWMutex
	cache map[string]*liquid.Template
}

// NewEngine creates an engine with the standard Liquid filters plus
// date_fr, which formats a time as "2 septembre 2026".
func NewEngine() *Engine {
	e := liquid.NewEngine()
	e.RegisterFilter("date_fr", func(value any) string {
		t, ok := value.(time.Time)
		if !ok {
			return ""
		}
		return formatFrenchDate(t)
	})
	return &Engine{
		engine: e,
		cache:  make(map[string]*liquid.Template),
	}
}

// Render executes the template against the given bindings.
func (e *Engine) Render(source string, bindings map[string]any) (string, error) {
	tpl, err := e.compile(source)
	if err != nil {
		return "", err
	}
	out, err := tpl.RenderString(bindings)
	if err != nil {
		return "", err
	}
	return out, nil
}

// RenderContact renders the template with the standard contact bindings:
// email, firstName, lastName and the properties map. A nil contact leaves
// the name fields empty.
func (e *Engine) RenderContact(source, email string, contact *domain.Contact) (string, error) {
	bindings := map[string]any{
		"email":      email,
		"firstName":  "",
		"lastName":   "",
		"properties": map[string]string{},
	}
	if contact != nil {
		bindings["firstName"] = contact.FirstName
		bindings["lastName"] = contact.LastName
		if contact.Properties != nil {
			bindings["properties"] = contact.Properties
		}
	}
	return e.Render(source, bindings)
}

// Validate parses the template without rendering it, returning the first
// syntax error found.
func (e *Engine) Validate(source string) error {
	_, err := e.compile(source)
	return err
}

func (e *Engine) compile(source string) (*liquid.Template, error) {
	if source == "" {
		return nil, ErrEmptyTemplate
	}
	e.mu.RLock()
	tpl, ok := e.cache[source]
	e.mu.RUnlock()
	if ok {
		return tpl, nil
	}

	tpl, err := e.engine.ParseString(source)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.cache[source] = tpl
	e.mu.Unlock()
	return tpl, nil
}

func formatFrenchDate(t time.Time) string {
	return t.Format("2") + " " + frenchMonths[t.Month()-1] + " " + t.Format("2006")
}
