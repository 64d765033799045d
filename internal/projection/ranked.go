package projection

import "github.com/AngelCh415/campaign-dashboard/internal/models"

// Ranked splits a family's actions by direction. Input order is kept inside
// each bucket; the agent already sorts by rank.
type Ranked[A models.Action] struct {
	Positive []A
	Negative []A
	Neutral  []A
}

func (r Ranked[A]) Len() int { return len(r.Positive) + len(r.Negative) + len(r.Neutral) }

// Rank partitions actions by type. Anything matching neither list, including
// no_change and unknown types, lands in Neutral so nothing is dropped.
func Rank[A models.Action](actions []A, positive, negative []models.ActionType) Ranked[A] {
	pos := typeSet(positive)
	neg := typeSet(negative)
	out := Ranked[A]{
		Positive: []A{},
		Negative: []A{},
		Neutral:  []A{},
	}
	for _, a := range actions {
		switch {
		case pos[a.Kind()]:
			out.Positive = append(out.Positive, a)
		case neg[a.Kind()]:
			out.Negative = append(out.Negative, a)
		default:
			out.Neutral = append(out.Neutral, a)
		}
	}
	return out
}

func typeSet(types []models.ActionType) map[models.ActionType]bool {
	set := make(map[models.ActionType]bool, len(types))
	for _, t := range types {
		set[t] = true
	}
	return set
}

// RankFamily ranks with the family's own positive and negative types.
func RankFamily[A models.Action](f models.Family, actions []A) Ranked[A] {
	return Rank(actions, []models.ActionType{f.Positive()}, []models.ActionType{f.Negative()})
}
