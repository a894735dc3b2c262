package service

import (
	"math"

	"github.com/Harshitk-cp/filinggraph/internal/domain"
)

// ConfidenceScale maps raw aggregated confidence onto the 1-10 output scale.
// It is fixed by the min and max raw values of one normalization scope.
type ConfidenceScale struct {
	Min   float64
	Max   float64
	empty bool
}

// NewConfidenceScale measures every relationship of every group. All groups
// together form one scope.
func NewConfidenceScale(groups ...[]*domain.AggregatedRelationship) ConfidenceScale {
	s := ConfidenceScale{empty: true}
	for _, rels := range groups {
		for _, r := range rels {
			if s.empty {
				s.Min, s.Max, s.empty = r.RawConfidence, r.RawConfidence, false
				continue
			}
			s.Min = math.Min(s.Min, r.RawConfidence)
			s.Max = math.Max(s.Max, r.RawConfidence)
		}
	}
	return s
}

// Normalize returns 1 + round(9*(raw-min)/(max-min)) clamped to [1, 10], or
// 5 when the scope has a single distinct value.
func (s ConfidenceScale) Normalize(raw float64) int {
	if s.empty || s.Max == s.Min {
		return domain.NeutralConfidence
	}
	v := 1 + int(math.Round(9*(raw-s.Min)/(s.Max-s.Min)))
	return clampConfidence(v)
}

func clampConfidence(v int) int {
	if v < domain.MinConfidence {
		return domain.MinConfidence
	}
	if v > domain.MaxConfidence {
		return domain.MaxConfidence
	}
	return v
}

// Apply produces the final relationship records.
func (s ConfidenceScale) Apply(rels []*domain.AggregatedRelationship) []domain.Relationship {
	out := make([]domain.Relationship, 0, len(rels))
	for _, r := range rels {
		out = append(out, domain.Relationship{
			Actor:      r.Actor,
			ActorName:  r.ActorName,
			Target:     r.Target,
			TargetName: r.TargetName,
			Verb:       r.Verb,
			Contexts:   append([]string(nil), r.Contexts...),
			Confidence: s.Normalize(r.RawConfidence),
		})
	}
	return out
}

// NormalizeConfidence normalizes one scope of relationships.
func NormalizeConfidence(rels []*domain.AggregatedRelationship) []domain.Relationship {
	return NewConfidenceScale(rels).Apply(rels)
}
