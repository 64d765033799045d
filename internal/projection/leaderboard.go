package projection

import (
	"sort"

	"github.com/AngelCh415/campaign-dashboard/internal/models"
)

type CampaignRank struct {
	ID     models.ID `json:"campaign_id"`
	Name   string    `json:"campaign_name"`
	Budget float64   `json:"weekly_budget_allocated"`
	ROAS   float64   `json:"roas"`
}

type AdGroupRank struct {
	ID         models.ID `json:"ad_group_id"`
	CampaignID models.ID `json:"campaign_id"`
	Name       string    `json:"ad_group_name"`
	AvgBid     float64   `json:"avg_bid"`
	ROAS       float64   `json:"roas"`
}

type Leaderboard struct {
	TopCampaigns    []CampaignRank `json:"top_campaigns"`
	BottomCampaigns []CampaignRank `json:"bottom_campaigns"`
	TopAdGroups     []AdGroupRank  `json:"top_ad_groups"`
	BottomAdGroups  []AdGroupRank  `json:"bottom_ad_groups"`
}

// BuildLeaderboard ranks one week's campaigns and ad groups by ROAS, best
// first. Both halves keep that order.
func BuildLeaderboard(entry models.WeekEntry, n int) Leaderboard {
	snap := entry.Snapshot()

	camps := make([]CampaignRank, 0, len(snap.Campaigns))
	for _, c := range snap.Campaigns {
		camps = append(camps, CampaignRank{ID: c.ID, Name: c.Name, Budget: c.WeeklyBudgetAllocated, ROAS: c.ROAS})
	}
	// orden determinista
	sort.SliceStable(camps, func(i, j int) bool {
		if camps[i].ROAS != camps[j].ROAS {
			return camps[i].ROAS > camps[j].ROAS
		}
		return camps[i].ID < camps[j].ID
	})

	ags := make([]AdGroupRank, 0, len(snap.AdGroups))
	for _, ag := range snap.AdGroups {
		ags = append(ags, AdGroupRank{ID: ag.ID, CampaignID: ag.CampaignID, Name: ag.Name, AvgBid: ag.AvgBid, ROAS: ag.ROAS})
	}
	sort.SliceStable(ags, func(i, j int) bool {
		if ags[i].ROAS != ags[j].ROAS {
			return ags[i].ROAS > ags[j].ROAS
		}
		return ags[i].ID < ags[j].ID
	})

	return Leaderboard{
		TopCampaigns:    Inline(camps, n),
		BottomCampaigns: tail(camps, n),
		TopAdGroups:     Inline(ags, n),
		BottomAdGroups:  tail(ags, n),
	}
}

func tail[T any](rows []T, n int) []T {
	if n <= 0 {
		return rows[:0]
	}
	if n >= len(rows) {
		return rows
	}
	return rows[len(rows)-n:]
}

// TopCampaignsByMeanROAS picks the n campaigns of the first week with the
// best mean ROAS over the weeks they appear in.
func TopCampaignsByMeanROAS(history []models.WeekEntry, n int) []models.ID {
	if len(history) == 0 || n <= 0 {
		return nil
	}
	type score struct {
		id   models.ID
		mean float64
	}
	base := history[0].Snapshot().Campaigns
	scores := make([]score, 0, len(base))
	seen := make(map[models.ID]bool, len(base))
	for _, c := range base {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		var vals []float64
		for _, e := range history {
			if wc, ok := e.Snapshot().Campaign(c.ID); ok {
				vals = append(vals, wc.ROAS)
			}
		}
		scores = append(scores, score{id: c.ID, mean: mean(vals)})
	}
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].mean != scores[j].mean {
			return scores[i].mean > scores[j].mean
		}
		return scores[i].id < scores[j].id
	})
	out := make([]models.ID, 0, n)
	for _, s := range Inline(scores, n) {
		out = append(out, s.id)
	}
	return out
}

type CampaignOption struct {
	ID   models.ID `json:"campaign_id"`
	Name string    `json:"campaign_name"`
}

func CampaignOptions(entry models.WeekEntry) []CampaignOption {
	snap := entry.Snapshot()
	out := make([]CampaignOption, 0, len(snap.Campaigns))
	for _, c := range snap.Campaigns {
		out = append(out, CampaignOption{ID: c.ID, Name: fallbackName("Campaign", c.ID, c.Name)})
	}
	return out
}
