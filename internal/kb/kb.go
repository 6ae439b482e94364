// Package kb holds the solution knowledge base and the incident-type catalog.
//
// Both are loaded from a single YAML document. Matching is purely lexical:
// incident types score by keyword hits, solutions by token overlap between the
// free-text description and each problem label. Anything smarter belongs to
// the language model capability, not here.
package kb

import (
	_ "embed"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/unanue/mostrador/pkg/domain"
	"github.com/unanue/mostrador/pkg/ports"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Problem is one known issue within a category.
type Problem struct {
	Label    string `mapstructure:"label"`
	Solution string `mapstructure:"solution"`
}

// IncidentType is one entry of the classification catalog.
type IncidentType struct {
	ID       string   `mapstructure:"-"`
	Name     string   `mapstructure:"name"`
	Keywords []string `mapstructure:"keywords"`
	Urgency  int      `mapstructure:"urgency"`
	Category string   `mapstructure:"category"`
}

type document struct {
	Categories    map[string][]Problem              `mapstructure:"categories"`
	IncidentTypes map[string]map[string]interface{} `mapstructure:"incident_types"`
}

// KB is an immutable, read-only knowledge base. Safe for concurrent use.
type KB struct {
	categories map[string][]Problem
	types      map[string]IncidentType
}

var _ ports.KnowledgeBase = (*KB)(nil)

// Load parses a knowledge-base document from r.
func Load(r io.Reader) (*KB, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read knowledge base: %w", err)
	}
	return Parse(raw)
}

// Parse builds a KB from YAML bytes. The document is decoded loosely first so
// partially hand-edited files fail with a field-level error instead of a
// yaml position.
func Parse(raw []byte) (*KB, error) {
	var loose map[string]interface{}
	if err := yaml.Unmarshal(raw, &loose); err != nil {
		return nil, fmt.Errorf("invalid knowledge base yaml: %w", err)
	}

	var doc document
	if err := mapstructure.Decode(loose, &doc); err != nil {
		return nil, fmt.Errorf("invalid knowledge base document: %w", err)
	}

	kb := &KB{
		categories: make(map[string][]Problem, len(doc.Categories)),
		types:      make(map[string]IncidentType, len(doc.IncidentTypes)),
	}
	for cat, problems := range doc.Categories {
		kb.categories[strings.ToLower(cat)] = problems
	}
	for id, fields := range doc.IncidentTypes {
		var it IncidentType
		if err := mapstructure.Decode(fields, &it); err != nil {
			return nil, fmt.Errorf("invalid incident type %q: %w", id, err)
		}
		it.ID = strings.ToLower(id)
		if it.Name == "" {
			it.Name = it.ID
		}
		if it.Category == "" {
			it.Category = it.ID
		}
		if it.Urgency == 0 {
			it.Urgency = 2
		}
		kb.types[it.ID] = it
	}
	return kb, nil
}

// Default returns the built-in knowledge base.
func Default() *KB {
	kb, err := Parse(defaultsYAML)
	if err != nil {
		// The embedded document is validated by tests; reaching this is a bug.
		panic(fmt.Sprintf("embedded knowledge base invalid: %v", err))
	}
	return kb
}

// FindBestSolution matches freeText against the problem labels of a category
// by token overlap. Returns domain.ErrNoMatch if the category is unknown or
// nothing overlaps.
func (kb *KB) FindBestSolution(_ context.Context, category, freeText string) (*ports.Solution, error) {
	problems, ok := kb.categories[strings.ToLower(strings.TrimSpace(category))]
	if !ok {
		return nil, domain.ErrNoMatch
	}

	queryTokens := tokenize(freeText)
	best := -1
	bestScore := 0.0
	for i, p := range problems {
		score := overlap(queryTokens, tokenize(p.Label))
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return nil, domain.ErrNoMatch
	}
	return &ports.Solution{
		ProblemLabel: problems[best].Label,
		SolutionText: problems[best].Solution,
	}, nil
}

// ClassifyByKeywords scores the text against every incident type's keyword
// list and returns the best match. Score is matched keywords over total
// keywords; zero means nothing matched.
func (kb *KB) ClassifyByKeywords(text string) (IncidentType, float64) {
	lower := strings.ToLower(text)
	var best IncidentType
	bestScore := 0.0
	for _, id := range kb.TypeIDs() {
		it := kb.types[id]
		if len(it.Keywords) == 0 {
			continue
		}
		matches := 0
		for _, kw := range it.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				matches++
			}
		}
		score := float64(matches) / float64(len(it.Keywords))
		if score > bestScore {
			best, bestScore = it, score
		}
	}
	return best, bestScore
}

// Type returns the catalog entry for an incident type id.
func (kb *KB) Type(id string) (IncidentType, bool) {
	it, ok := kb.types[strings.ToLower(id)]
	return it, ok
}

// TypeIDs returns the catalog ids in stable order.
func (kb *KB) TypeIDs() []string {
	ids := make([]string, 0, len(kb.types))
	for id := range kb.types {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Categories returns the known solution categories in stable order.
func (kb *KB) Categories() []string {
	cats := make([]string, 0, len(kb.categories))
	for c := range kb.categories {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats
}

func tokenize(s string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, tok := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !isWordRune(r)
	}) {
		// Two-letter words are mostly articles and prepositions; skipping them
		// keeps "de"/"la" from matching unrelated labels.
		if len(tok) >= 3 {
			tokens[tok] = struct{}{}
		}
	}
	return tokens
}

func isWordRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r >= 'à' && r <= 'ÿ': // accented vowels, ñ
		return true
	}
	return false
}

// overlap is the share of label tokens present in the query.
func overlap(query, label map[string]struct{}) float64 {
	if len(label) == 0 {
		return 0
	}
	hits := 0
	for tok := range label {
		if _, ok := query[tok]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(label))
}
