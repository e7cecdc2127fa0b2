package templates_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bde-platform/mailer/internal/domain"
	"github.com/bde-platform/mailer/internal/templates"
)

func TestRenderBindings(t *testing.T) {
	e := templates.NewEngine()

	out, err := e.Render("Bonjour {{ name }} !", map[string]any{"name": "Jean"})
	require.NoError(t, err)
	assert.Equal(t, "Bonjour Jean !", out)
}

func TestRenderControlFlow(t *testing.T) {
	e := templates.NewEngine()

	src := "{% if vip %}Accès VIP{% else %}Accès standard{% endif %}"
	out, err := e.Render(src, map[string]any{"vip": true})
	require.NoError(t, err)
	assert.Equal(t, "Accès VIP", out)

	out, err = e.Render(src, map[string]any{"vip": false})
	require.NoError(t, err)
	assert.Equal(t, "Accès standard", out)
}

func TestRenderContact(t *testing.T) {
	e := templates.NewEngine()
	contact := &domain.Contact{
		Email:     "jean@example.com",
		FirstName: "Jean",
		LastName:  "Dupont",
		Properties: map[string]string{
			"promo": "2027",
		},
	}

	out, err := e.RenderContact("{{ firstName }} {{ lastName }} ({{ properties.promo }})", "jean@example.com", contact)
	require.NoError(t, err)
	assert.Equal(t, "Jean Dupont (2027)", out)
}

func TestRenderContactNil(t *testing.T) {
	e := templates.NewEngine()

	out, err := e.RenderContact("Bonjour {{ firstName }}, contact: {{ email }}", "x@example.com", nil)
	require.NoError(t, err)
	assert.Equal(t, "Bonjour , contact: x@example.com", out)
}

func TestDateFrFilter(t *testing.T) {
	e := templates.NewEngine()

	when := time.Date(2026, time.September, 4, 20, 0, 0, 0, time.UTC)
	out, err := e.Render("Rendez-vous le {{ when | date_fr }}", map[string]any{"when": when})
	require.NoError(t, err)
	assert.Equal(t, "Rendez-vous le 4 septembre 2026", out)
}

func TestValidate(t *testing.T) {
	e := templates.NewEngine()

	assert.NoError(t, e.Validate("Bonjour {{ name }}"))
	assert.Error(t, e.Validate("{% if %}"))
	assert.ErrorIs(t, e.Validate(""), templates.ErrEmptyTemplate)
}
