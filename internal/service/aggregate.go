package service

import "github.com/Harshitk-cp/filinggraph/internal/domain"

type relationshipKey struct {
	actor  domain.EntityRef
	target domain.EntityRef
	verb   string
}

// RelationshipAggregator folds candidates sharing (actor, target, verb).
// Output keeps first-seen order.
type RelationshipAggregator struct {
	index map[relationshipKey]*domain.AggregatedRelationship
	order []*domain.AggregatedRelationship
}

func NewRelationshipAggregator() *RelationshipAggregator {
	return &RelationshipAggregator{index: make(map[relationshipKey]*domain.AggregatedRelationship)}
}

// Add accumulates the candidate's raw confidence once per new context; a
// context already recorded for the key adds nothing.
func (a *RelationshipAggregator) Add(c domain.RelationshipCandidate) {
	key := relationshipKey{actor: c.Actor, target: c.Target, verb: c.Verb}
	if rel, ok := a.index[key]; ok {
		rel.AddContext(c.Context, c.RawConfidence)
		return
	}
	rel := &domain.AggregatedRelationship{
		Actor:         c.Actor,
		ActorName:     c.ActorName,
		Target:        c.Target,
		TargetName:    c.TargetName,
		Verb:          c.Verb,
		Contexts:      []string{c.Context},
		RawConfidence: c.RawConfidence,
	}
	a.index[key] = rel
	a.order = append(a.order, rel)
}

func (a *RelationshipAggregator) Relationships() []*domain.AggregatedRelationship {
	return a.order
}

// AggregateRelationships folds all candidates in order.
func AggregateRelationships(candidates []domain.RelationshipCandidate) []*domain.AggregatedRelationship {
	agg := NewRelationshipAggregator()
	for _, c := range candidates {
		agg.Add(c)
	}
	return agg.Relationships()
}
