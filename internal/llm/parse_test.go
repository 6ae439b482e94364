package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	type payload struct {
		Kind string `json:"kind"`
	}

	t.Run("bare object", func(t *testing.T) {
		var p payload
		require.True(t, ExtractJSON(`{"kind":"incidencia"}`, &p))
		assert.Equal(t, "incidencia", p.Kind)
	})

	t.Run("markdown fenced", func(t *testing.T) {
		var p payload
		require.True(t, ExtractJSON("```json\n{\"kind\":\"consulta\"}\n```", &p))
		assert.Equal(t, "consulta", p.Kind)
	})

	t.Run("wrapped in prose", func(t *testing.T) {
		var p payload
		require.True(t, ExtractJSON(`Claro, aquí tienes el análisis: {"kind":"urgente"} ¡Espero que ayude!`, &p))
		assert.Equal(t, "urgente", p.Kind)
	})

	t.Run("nested braces balance", func(t *testing.T) {
		var p struct {
			Inner payload `json:"inner"`
		}
		require.True(t, ExtractJSON(`{"inner":{"kind":"incidencia"}} y más texto {roto`, &p))
		assert.Equal(t, "incidencia", p.Inner.Kind)
	})

	t.Run("no json at all", func(t *testing.T) {
		var p payload
		assert.False(t, ExtractJSON("no puedo ayudarte con eso", &p))
	})

	t.Run("unbalanced", func(t *testing.T) {
		var p payload
		assert.False(t, ExtractJSON(`{"kind":"incidencia"`, &p))
	})
}

func TestParseClassification(t *testing.T) {
	t.Run("normalizes fields", func(t *testing.T) {
		c, ok := ParseClassification(`{"query_type":" Incidencia ","incident_type":"TPV","confidence":0.85}`)
		require.True(t, ok)
		assert.Equal(t, "incidencia", c.QueryType)
		assert.Equal(t, "tpv", c.IncidentType)
		assert.InDelta(t, 0.85, c.Confidence, 1e-9)
	})

	t.Run("out of range confidence zeroed", func(t *testing.T) {
		c, ok := ParseClassification(`{"query_type":"incidencia","confidence":1.7}`)
		require.True(t, ok)
		assert.Zero(t, c.Confidence)
	})

	t.Run("missing query type fails", func(t *testing.T) {
		_, ok := ParseClassification(`{"incident_type":"tpv","confidence":0.9}`)
		assert.False(t, ok)
	})

	t.Run("not json fails", func(t *testing.T) {
		_, ok := ParseClassification("es una incidencia del tpv")
		assert.False(t, ok)
	})
}

func TestParseYesNo(t *testing.T) {
	cases := []struct {
		text    string
		yes, ok bool
	}{
		{"sí", true, true},
		{"si, ya funciona", true, true},
		{"Sí, perfecto. ¡Gracias!", true, true},
		{"vale", true, true},
		{"resuelto", true, true},
		{"yes", true, true},

		{"no", false, true},
		{"no, sigue igual", false, true},
		{"sigue sin imprimir", false, true},
		{"el tpv no funciona todavía", false, true},
		{"tampoco", false, true},
		{"nada, igual que antes", false, true},

		// Negatives win over affirmatives in mixed answers.
		{"sí pero no del todo", false, true},

		{"", false, false},
		{"buenos días", false, false},
		{"¿puedes repetir los pasos?", false, false},
		{"la balanza es nueva", false, false},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			yes, ok := ParseYesNo(tc.text)
			assert.Equal(t, tc.ok, ok, "recognized")
			if tc.ok {
				assert.Equal(t, tc.yes, yes, "verdict")
			}
		})
	}
}

func TestRender(t *testing.T) {
	out := Render("Mensaje: {{message}}\nTipos: {{types}}", map[string]string{
		"message": "la balanza no imprime",
		"types":   "balanza, tpv",
	})
	assert.Equal(t, "Mensaje: la balanza no imprime\nTipos: balanza, tpv", out)

	assert.Equal(t, "sin {{hueco}}", Render("sin {{hueco}}", nil), "unknown placeholders stay put")
}

func TestBackoff(t *testing.T) {
	assert.Zero(t, Backoff(time.Second, 0))

	for attempt := 1; attempt <= 6; attempt++ {
		d := Backoff(100*time.Millisecond, attempt)
		base := 100 * time.Millisecond * time.Duration(1<<uint(attempt))
		if base > 30*time.Second {
			base = 30 * time.Second
		}
		assert.GreaterOrEqual(t, d, base-base/4, "attempt %d", attempt)
		assert.LessOrEqual(t, d, base+base/4, "attempt %d", attempt)
	}

	// The exponent saturates instead of overflowing.
	assert.LessOrEqual(t, Backoff(time.Second, 1000), 30*time.Second+8*time.Second)
}
