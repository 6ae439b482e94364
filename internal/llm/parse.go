package llm

import (
	"encoding/json"
	"strings"
)

// Classification is the structure the classify prompt asks the model for.
// The model is free to ignore the instructions, so parsing may fail; callers
// fall back to keyword matching when it does.
type Classification struct {
	QueryType    string  `json:"query_type"`
	IncidentType string  `json:"incident_type"`
	Confidence   float64 `json:"confidence"`
}

// ExtractJSON finds the first balanced {...} block in text and unmarshals it.
// Models habitually wrap JSON in prose or markdown fences; this strips both.
func ExtractJSON(text string, out any) bool {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return false
	}
	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return json.Unmarshal([]byte(text[start:i+1]), out) == nil
			}
		}
	}
	return false
}

// ParseClassification extracts a Classification from a raw model response.
func ParseClassification(text string) (Classification, bool) {
	var c Classification
	if !ExtractJSON(text, &c) {
		return Classification{}, false
	}
	c.QueryType = strings.ToLower(strings.TrimSpace(c.QueryType))
	c.IncidentType = strings.ToLower(strings.TrimSpace(c.IncidentType))
	if c.Confidence < 0 || c.Confidence > 1 {
		c.Confidence = 0
	}
	return c, c.QueryType != ""
}

// ParseYesNo interprets a free-form confirmation answer. The second return is
// false when the answer is neither clearly affirmative nor negative.
func ParseYesNo(text string) (yes bool, ok bool) {
	clean := strings.ToLower(strings.TrimSpace(text))
	if clean == "" {
		return false, false
	}
	for _, phrase := range []string{"sigue igual", "sigue sin", "no funciona"} {
		if strings.Contains(clean, phrase) {
			return false, true
		}
	}
	words := strings.FieldsFunc(clean, func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == '!' || r == '?' || r == '¡' || r == '¿'
	})
	affirmative := map[string]bool{
		"si": true, "sí": true, "yes": true, "vale": true, "correcto": true,
		"funciona": true, "resuelto": true, "solucionado": true, "ok": true, "perfecto": true,
	}
	negative := map[string]bool{
		"no": true, "nada": true, "tampoco": true, "negativo": true,
	}
	for _, w := range words {
		if negative[w] {
			return false, true
		}
	}
	for _, w := range words {
		if affirmative[w] {
			return true, true
		}
	}
	return false, false
}
