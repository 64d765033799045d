package projection

import (
	"github.com/AngelCh415/campaign-dashboard/internal/models"
)

const defaultExplanation = "No explanation provided"

type BudgetItem struct {
	CampaignID   models.ID         `json:"campaign_id"`
	CampaignName string            `json:"campaign_name"`
	Found        bool              `json:"found"`
	Type         models.ActionType `json:"type"`
	Rank         int               `json:"rank"`
	ROAS         float64           `json:"roas"`
	Reason       string            `json:"reason"`
	Change       *models.Change    `json:"change,omitempty"`
}

type BidItem struct {
	AdGroupID   models.ID         `json:"ad_group_id"`
	AdGroupName string            `json:"ad_group_name"`
	Found       bool              `json:"found"`
	ROAS        float64           `json:"roas"`
	AvgBid      float64           `json:"avg_bid"`
	Type        models.ActionType `json:"type"`
	Reason      string            `json:"reason"`
	Change      *models.Change    `json:"change,omitempty"`
}

type AudienceItem struct {
	AudienceID   models.ID         `json:"audience_id"`
	AudienceName string            `json:"audience_name"`
	Found        bool              `json:"found"`
	IntentScore  float64           `json:"intent_score"`
	FatigueScore float64           `json:"fatigue_score"`
	AvgCTR       float64           `json:"avg_ctr"`
	Type         models.ActionType `json:"type"`
	Reason       string            `json:"reason"`
}

// Column is one family of the three-column layout.
type Column[T any] struct {
	Family   models.Family `json:"family"`
	Total    int           `json:"total"`
	Positive []T           `json:"positive"`
	Negative []T           `json:"negative"`
	Neutral  []T           `json:"neutral"`
}

type Recommendations struct {
	Week        int                  `json:"week"`
	ForWeek     int                  `json:"for_week"`
	Budget      Column[BudgetItem]   `json:"budget"`
	Bids        Column[BidItem]      `json:"bids"`
	Audiences   Column[AudienceItem] `json:"audiences"`
	Explanation string               `json:"explanation"`
	Misses      int                  `json:"lookup_misses"`
}

// Recommend projects the agent's recommendations for the week after entry,
// joining every action to its entity in entry's snapshot. Actions whose
// entity is missing are kept with Found=false.
func Recommend(entry models.WeekEntry) Recommendations {
	snap := entry.Snapshot()
	recs := entry.Recommendations
	out := Recommendations{
		Week:        entry.Week,
		ForWeek:     entry.Week + 1,
		Explanation: recs.Explanation,
	}
	if out.Explanation == "" {
		out.Explanation = defaultExplanation
	}

	var misses int
	out.Budget, misses = column(models.FamilyBudget, recs.CampaignBudgetActions, func(a models.BudgetAction) (BudgetItem, bool) {
		it := BudgetItem{
			CampaignID:   a.CampaignID,
			CampaignName: a.CampaignName,
			Type:         a.Type,
			Rank:         a.Rank,
			ROAS:         a.ROAS,
			Reason:       a.Reason,
			Change:       a.BudgetChange,
		}
		c, ok := snap.Campaign(a.CampaignID)
		it.Found = ok
		if it.CampaignName == "" {
			it.CampaignName = fallbackName("Campaign", a.CampaignID, c.Name)
		}
		if it.ROAS == 0 && ok {
			it.ROAS = c.ROAS
		}
		return it, ok
	})
	out.Misses += misses

	out.Bids, misses = column(models.FamilyBid, recs.AdGroupBidActions, func(a models.BidAction) (BidItem, bool) {
		it := BidItem{AdGroupID: a.AdGroupID, Type: a.Type, Reason: a.Reason, Change: a.BidChange}
		ag, ok := snap.AdGroup(a.AdGroupID)
		it.Found = ok
		it.AdGroupName = fallbackName("Ad Group", a.AdGroupID, ag.Name)
		it.ROAS = ag.ROAS
		it.AvgBid = ag.AvgBid
		return it, ok
	})
	out.Misses += misses

	out.Audiences, misses = column(models.FamilyAudience, recs.AudienceTargetingActions, func(a models.AudienceAction) (AudienceItem, bool) {
		it := AudienceItem{AudienceID: a.AudienceID, Type: a.Type, Reason: a.Reason}
		au, ok := snap.Audience(a.AudienceID)
		it.Found = ok
		it.AudienceName = fallbackName("Audience", a.AudienceID, au.Name)
		it.IntentScore = au.IntentScore
		it.FatigueScore = au.FatigueScore
		it.AvgCTR = au.AvgCTR
		return it, ok
	})
	out.Misses += misses
	return out
}

func column[A models.Action, T any](f models.Family, actions []A, enrich func(A) (T, bool)) (Column[T], int) {
	ranked := RankFamily(f, actions)
	misses := 0
	conv := func(in []A) []T {
		out := make([]T, 0, len(in))
		for _, a := range in {
			it, ok := enrich(a)
			if !ok {
				misses++
			}
			out = append(out, it)
		}
		return out
	}
	col := Column[T]{
		Family:   f,
		Total:    ranked.Len(),
		Positive: conv(ranked.Positive),
		Negative: conv(ranked.Negative),
		Neutral:  conv(ranked.Neutral),
	}
	return col, misses
}

func fallbackName(kind string, id models.ID, name string) string {
	if name != "" {
		return name
	}
	return kind + " " + string(id)
}
