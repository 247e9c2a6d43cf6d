package reactor

// Phase is a stage of model resolution. Phases are totally ordered and a
// context's phase only moves forward.
type Phase int

const (
	PhaseInit Phase = iota
	PhaseSourceLinkage
	PhaseStatementDefinition
	PhaseFullDeclaration
	PhaseEffectiveModel
	PhaseFrozen
)

var phaseNames = [...]string{
	PhaseInit:                "INIT",
	PhaseSourceLinkage:       "SOURCE_LINKAGE",
	PhaseStatementDefinition: "STATEMENT_DEFINITION",
	PhaseFullDeclaration:     "FULL_DECLARATION",
	PhaseEffectiveModel:      "EFFECTIVE_MODEL",
	PhaseFrozen:              "FROZEN",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "UNKNOWN"
	}
	return phaseNames[p]
}

// resolutionPhases are the phases completed by sweeping, in order.
var resolutionPhases = []Phase{
	PhaseSourceLinkage,
	PhaseStatementDefinition,
	PhaseFullDeclaration,
	PhaseEffectiveModel,
}
