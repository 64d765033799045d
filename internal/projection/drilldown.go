package projection

import "github.com/AngelCh415/campaign-dashboard/internal/models"

// DrillDownRow is one ad group of the campaign in one week. When the ad
// group's audience is missing, the audience scores are zero and
// AudienceFound is false.
type DrillDownRow struct {
	Week                   int               `json:"week"`
	AdGroupID              models.ID         `json:"ad_group_id"`
	AdGroupName            string            `json:"ad_group_name"`
	ROAS                   float64           `json:"roas"`
	ConversionValue        float64           `json:"conversion_value"`
	Conversions            float64           `json:"conversions"`
	AvgBid                 float64           `json:"avg_bid"`
	BudgetAllocated        float64           `json:"weekly_budget_allocated"`
	BudgetSpent            float64           `json:"weekly_budget_spent"`
	AudienceID             models.ID         `json:"audience_id,omitempty"`
	AudienceFound          bool              `json:"audience_found"`
	AvgCVR                 float64           `json:"avg_cvr"`
	FatigueScore           float64           `json:"fatigue_score"`
	IntentScore            float64           `json:"intent_score"`
	BidRecommendation      models.ActionType `json:"bid_recommendation"`
	AudienceRecommendation models.ActionType `json:"audience_recommendation"`
	Reason                 string            `json:"reason"`
	BidChange              *models.Change    `json:"bid_change,omitempty"`
}

type DrillDown struct {
	CampaignID     models.ID      `json:"campaign_id"`
	CampaignName   string         `json:"campaign_name"`
	Rows           []DrillDownRow `json:"rows"`
	AudienceMisses int            `json:"audience_misses"`
}

// BuildDrillDown lists, week by week, the ad groups that belong to campaignID.
func BuildDrillDown(history []models.WeekEntry, campaignID models.ID) DrillDown {
	dd := DrillDown{
		CampaignID:   campaignID,
		CampaignName: CampaignName(history, campaignID),
		Rows:         []DrillDownRow{},
	}
	for _, entry := range history {
		snap := entry.Snapshot()
		recs := entry.Recommendations
		for _, ag := range snap.AdGroups {
			if ag.CampaignID != campaignID {
				continue
			}
			row := DrillDownRow{
				Week:                   entry.Week,
				AdGroupID:              ag.ID,
				AdGroupName:            ag.Name,
				ROAS:                   ag.ROAS,
				ConversionValue:        ag.ConversionValue,
				Conversions:            ag.Conversions,
				AvgBid:                 ag.AvgBid,
				BudgetAllocated:        ag.WeeklyBudgetAllocated,
				BudgetSpent:            ag.WeeklyBudgetSpent,
				BidRecommendation:      models.NoChange,
				AudienceRecommendation: models.NoChange,
			}
			if ag.AudienceID != nil && *ag.AudienceID != "" {
				row.AudienceID = *ag.AudienceID
				if au, ok := snap.Audience(row.AudienceID); ok {
					row.AudienceFound = true
					row.AvgCVR = au.AvgCVR
					row.FatigueScore = au.FatigueScore
					row.IntentScore = au.IntentScore
				} else {
					dd.AudienceMisses++
				}
			}

			var bidReason, audReason string
			if a, ok := findAction(recs.AdGroupBidActions, ag.ID); ok {
				row.BidRecommendation = a.Type
				row.BidChange = a.BidChange
				bidReason = a.Reason
			}
			if row.AudienceID != "" {
				if a, ok := findAction(recs.AudienceTargetingActions, row.AudienceID); ok {
					row.AudienceRecommendation = a.Type
					audReason = a.Reason
				}
			}
			row.Reason = bidReason
			if row.Reason == "" {
				row.Reason = audReason
			}
			dd.Rows = append(dd.Rows, row)
		}
	}
	return dd
}

func findAction[A models.Action](actions []A, id models.ID) (A, bool) {
	for _, a := range actions {
		if a.Target() == id {
			return a, true
		}
	}
	var zero A
	return zero, false
}

// CampaignName resolves a name from the newest snapshot that has the campaign.
func CampaignName(history []models.WeekEntry, id models.ID) string {
	for i := len(history) - 1; i >= 0; i-- {
		if c, ok := history[i].Snapshot().Campaign(id); ok && c.Name != "" {
			return c.Name
		}
	}
	return "Campaign " + string(id)
}
