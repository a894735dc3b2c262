package domain

// RelationshipCandidate is a single verb-linked pair found in one context.
type RelationshipCandidate struct {
	Actor         EntityRef `json:"actor"`
	ActorName     string    `json:"actor_name"`
	Target        EntityRef `json:"target"`
	TargetName    string    `json:"target_name"`
	Verb          string    `json:"verb"`
	RawConfidence float64   `json:"raw_confidence"`
	Context       string    `json:"context"`
}

// AggregatedRelationship folds every candidate sharing (actor, target, verb).
type AggregatedRelationship struct {
	Actor         EntityRef `json:"actor"`
	ActorName     string    `json:"actor_name"`
	Target        EntityRef `json:"target"`
	TargetName    string    `json:"target_name"`
	Verb          string    `json:"verb"`
	Contexts      []string  `json:"contexts"`
	RawConfidence float64   `json:"raw_confidence"`
}

// AddContext unions ctx into the context set and accumulates raw once per
// newly added context.
func (a *AggregatedRelationship) AddContext(ctx string, raw float64) bool {
	if containsString(a.Contexts, ctx) {
		return false
	}
	a.Contexts = append(a.Contexts, ctx)
	a.RawConfidence += raw
	return true
}

// Relationship is the normalized output record.
type Relationship struct {
	Actor      EntityRef `json:"actor"`
	ActorName  string    `json:"actor_name"`
	Target     EntityRef `json:"target"`
	TargetName string    `json:"target_name"`
	Verb       string    `json:"verb"`
	Contexts   []string  `json:"contexts"`
	Confidence int       `json:"confidence"`
}

const (
	MinConfidence     = 1
	MaxConfidence     = 10
	NeutralConfidence = 5
)
