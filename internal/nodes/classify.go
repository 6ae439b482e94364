package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/unanue/mostrador/internal/llm"
	"github.com/unanue/mostrador/pkg/domain"
)

// classifyPrompt asks the model for a strict JSON verdict. The answer is
// parsed defensively; anything unparsable falls through to keyword matching.
const classifyPrompt = `Eres el clasificador de un asistente de soporte IT para empleados de tienda.

Mensaje del empleado:
"{{message}}"

Tipos de incidencia disponibles: {{types}}

Clasifica el mensaje y responde SOLO con un JSON con esta forma exacta:
{"query_type": "incidencia|consulta|urgente", "incident_type": "<uno de los tipos o vacío>", "confidence": 0.0}

- "incidencia": algo está roto o no funciona.
- "consulta": una pregunta general que no requiere reparar nada.
- "urgente": riesgo para personas, seguridad o pérdida de ventas en curso.`

// minConfidence is the floor below which a model verdict is ignored.
const minConfidence = 0.6

// Classify decides whether the employee brings an incident, a general
// question or an urgent situation, and for incidents picks the equipment type.
// The language model verdict is used when confident; otherwise the keyword
// catalog decides. Only when both are silent does it ask the employee again.
type Classify struct {
	caps   Capabilities
	budget int
}

func NewClassify(caps Capabilities, budget int) *Classify {
	return &Classify{caps: caps, budget: budget}
}

func (n *Classify) Step() domain.Step { return domain.StepClassify }

func (n *Classify) Execute(ctx context.Context, st *domain.State) (domain.NodeResult, error) {
	input := strings.TrimSpace(st.LastUserMessage())
	if input == "" {
		return n.clarify(st), nil
	}

	if c, ok := n.askModel(ctx, input); ok && c.Confidence >= minConfidence {
		switch c.QueryType {
		case "incidencia", "incident":
			return n.incident(st, c.IncidentType, input), nil
		case "consulta", "question":
			return n.forward(st, domain.StepSearchKnowledge), nil
		case "urgente", "urgent":
			return domain.EscalateWith("urgent situation reported by employee"), nil
		}
	}

	if it, score := n.caps.Catalog.ClassifyByKeywords(input); score > 0 {
		return n.incident(st, it.ID, input), nil
	}
	if looksLikeQuestion(input) {
		return n.forward(st, domain.StepSearchKnowledge), nil
	}
	return n.clarify(st), nil
}

func (n *Classify) askModel(ctx context.Context, input string) (llm.Classification, bool) {
	if n.caps.Model == nil {
		return llm.Classification{}, false
	}
	raw, err := n.caps.Model.Complete(ctx, classifyPrompt, map[string]string{
		"message": input,
		"types":   strings.Join(n.caps.Catalog.TypeIDs(), ", "),
	})
	if err != nil {
		// The catalog can still classify; the model is an enrichment here.
		n.caps.logger().Warn("classifier model unavailable, using keyword fallback", "error", err)
		return llm.Classification{}, false
	}
	return llm.ParseClassification(raw)
}

// incident records the equipment type and moves on to detail collection. The
// describing message is kept as the initial incident description.
func (n *Classify) incident(st *domain.State, typeID, description string) domain.NodeResult {
	it, known := n.caps.Catalog.Type(typeID)
	if !known {
		it, _ = n.caps.Catalog.ClassifyByKeywords(description)
		if it.ID == "" {
			return n.clarify(st)
		}
	}
	update := &domain.IncidentUpdate{
		Type:        domain.Ptr(it.ID),
		Category:    domain.Ptr(it.Category),
		Priority:    domain.Ptr(it.Urgency),
		Description: domain.Ptr(description),
	}
	return n.forward(st, domain.StepCollectDetails,
		domain.WithUpdate(func(u *domain.Update) { u.Incident = update }))
}

// forward transitions to next, or back to the caller recorded on the routing
// stack when classification was re-entered as a detour.
func (n *Classify) forward(st *domain.State, next domain.Step, opts ...domain.ResultOption) domain.NodeResult {
	if st.NextAction == actionReclassify && len(st.RoutingStack) > 0 {
		opts = append(opts,
			domain.WithNextAction(""),
			domain.WithUpdate(func(u *domain.Update) {
				u.CurrentStep = ""
				u.PopReturn = true
			}))
	}
	return domain.TransitionTo(next, opts...)
}

func (n *Classify) clarify(st *domain.State) domain.NodeResult {
	if st.CurrentStepAttempts()+1 >= n.budget {
		return domain.EscalateWith(fmt.Sprintf("could not classify the request after %d attempts", n.budget))
	}
	return domain.WaitForInput(domain.StepClassify, domain.StepClassify,
		"No he llegado a entender si es una avería o una consulta. ¿Puedes contarme con otras palabras qué ocurre o qué necesitas?",
		domain.DirectionBack,
		domain.WithUpdate(func(u *domain.Update) { u.IncrementAttempts = true }),
	)
}

func looksLikeQuestion(text string) bool {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "?") || strings.Contains(lower, "¿") {
		return true
	}
	for _, w := range []string{"cómo", "como ", "cuál", "cual ", "dónde", "donde ", "horario", "cuándo", "cuando "} {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
