// Package nodes contains the closed set of conversation steps: authenticate,
// classify, collect_details, search_solution, search_knowledge, verify,
// escalate and finalize. Each node reads a state snapshot and returns a
// partial update plus a control decision; capabilities are injected and never
// mutated.
package nodes

import (
	"log/slog"

	"github.com/unanue/mostrador/internal/kb"
	"github.com/unanue/mostrador/internal/logging"
	"github.com/unanue/mostrador/pkg/domain"
	"github.com/unanue/mostrador/pkg/ports"
)

// Catalog is the classification surface of the knowledge base.
type Catalog interface {
	ClassifyByKeywords(text string) (kb.IncidentType, float64)
	Type(id string) (kb.IncidentType, bool)
	TypeIDs() []string
}

// Capabilities are the external collaborators nodes may invoke. All handles
// are read-only from the nodes' perspective.
type Capabilities struct {
	Identity  ports.IdentityStore
	Incidents ports.IncidentStore
	Solutions ports.KnowledgeBase
	Catalog   Catalog
	Model     ports.LanguageModel
	Logger    *slog.Logger
}

func (c Capabilities) logger() *slog.Logger {
	if c.Logger == nil {
		return logging.NewNop()
	}
	return c.Logger
}

// Budgets are the per-node retry budgets for user-correctable situations.
// Classify and verify give up after two unclear answers, matching the tighter
// clarification policy of the intake flow; the rest allow three.
type Budgets struct {
	Authenticate int
	Classify     int
	Collect      int
	Verify       int
}

// DefaultBudgets returns the standard attempt budgets.
func DefaultBudgets() Budgets {
	return Budgets{
		Authenticate: 3,
		Classify:     2,
		Collect:      3,
		Verify:       2,
	}
}

// All builds the full node set wired to the default step table.
func All(caps Capabilities, budgets Budgets) []domain.Node {
	return []domain.Node{
		NewAuthenticate(caps, budgets.Authenticate),
		NewClassify(caps, budgets.Classify),
		NewCollectDetails(caps, budgets.Collect),
		NewSearchSolution(caps),
		NewSearchKnowledge(caps),
		NewVerify(caps, budgets.Verify),
		NewEscalate(caps),
		NewFinalize(caps),
	}
}

// Hints consumed through State.NextAction.
const (
	actionConfirmCategory   = "confirm_category"
	actionDescribe          = "describe"
	actionConfirmResolution = "confirm_resolution"
	actionStoreOnly         = "store_only"
	actionReclassify        = "reclassify"
)

// incidentRecord snapshots the state into the payload filed with the
// incident store.
func incidentRecord(st *domain.State) ports.IncidentRecord {
	return ports.IncidentRecord{
		SessionID:   st.SessionID,
		Employee:    st.Identity.Name,
		Email:       st.Identity.Email,
		Store:       st.Identity.Store,
		Type:        st.Incident.Type,
		Category:    st.Incident.Category,
		Description: st.Incident.Description,
		Priority:    st.Incident.Priority,
	}
}
