package domain

// Step identifies a phase of the conversation. Every step maps 1:1 to a node
// in the router table; the table is the single place new steps are wired in.
type Step string

const (
	StepAuthenticate    Step = "authenticate"
	StepClassify        Step = "classify"
	StepCollectDetails  Step = "collect_details"
	StepSearchSolution  Step = "search_solution"
	StepSearchKnowledge Step = "search_knowledge"
	StepVerify          Step = "verify"
	StepEscalate        Step = "escalate"
	StepFinalize        Step = "finalize"
)

// EntryStep is where every new session begins.
const EntryStep = StepAuthenticate
