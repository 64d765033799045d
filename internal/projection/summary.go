package projection

import "github.com/AngelCh415/campaign-dashboard/internal/models"

type ActionCounts struct {
	Family   models.Family `json:"family"`
	Total    int           `json:"total"`
	Positive int           `json:"positive"`
	Hold     int           `json:"hold"`
	Negative int           `json:"negative"`
	Other    int           `json:"other"`
}

// Summary feeds the summary cards of one week.
//
// MeanROAS is the plain mean of the per-campaign ROAS values. SpendWeightedROAS
// weights each campaign's ROAS by its spend. The two are kept separate.
type Summary struct {
	Week              int          `json:"week"`
	TotalAllocated    float64      `json:"total_allocated"`
	TotalSpent        float64      `json:"total_spent"`
	MeanROAS          float64      `json:"mean_roas"`
	SpendWeightedROAS float64      `json:"spend_weighted_roas"`
	CampaignCount     int          `json:"campaign_count"`
	Budget            ActionCounts `json:"budget"`
	Bids              ActionCounts `json:"bids"`
	Audiences         ActionCounts `json:"audiences"`
}

func Summarize(entry models.WeekEntry) Summary {
	snap := entry.Snapshot()
	s := Summary{Week: entry.Week, CampaignCount: len(snap.Campaigns)}

	roas := make([]float64, 0, len(snap.Campaigns))
	var weighted float64
	for _, c := range snap.Campaigns {
		s.TotalAllocated += c.WeeklyBudgetAllocated
		s.TotalSpent += c.WeeklyBudgetSpent
		roas = append(roas, c.ROAS)
		weighted += c.ROAS * c.WeeklyBudgetSpent
	}
	s.MeanROAS = mean(roas)
	s.SpendWeightedROAS = safeDivF(weighted, s.TotalSpent)

	recs := entry.Recommendations
	s.Budget = countActions(models.FamilyBudget, recs.CampaignBudgetActions)
	s.Bids = countActions(models.FamilyBid, recs.AdGroupBidActions)
	s.Audiences = countActions(models.FamilyAudience, recs.AudienceTargetingActions)
	return s
}

func countActions[A models.Action](f models.Family, actions []A) ActionCounts {
	c := ActionCounts{Family: f, Total: len(actions)}
	for _, a := range actions {
		switch a.Kind() {
		case f.Positive():
			c.Positive++
		case f.Negative():
			c.Negative++
		case models.NoChange:
			c.Hold++
		default:
			c.Other++
		}
	}
	return c
}
