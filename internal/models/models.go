package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID identifica campaign / ad group / audience. El agente escribe enteros,
// pero aceptamos también strings.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	// enteros tal cual: float64 pierde precisión por encima de 2^53
	if !strings.ContainsAny(n.String(), ".eE") {
		*id = ID(n.String())
		return nil
	}
	// 7.0 -> "7"
	if f, err := n.Float64(); err == nil && f == float64(int64(f)) {
		*id = ID(strconv.FormatInt(int64(f), 10))
		return nil
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

type Campaign struct {
	ID                    ID      `json:"campaign_id"`
	Name                  string  `json:"campaign_name"`
	WeeklyBudgetAllocated float64 `json:"weekly_budget_allocated"`
	WeeklyBudgetSpent     float64 `json:"weekly_budget_spent"`
	WeeklyClicks          float64 `json:"weekly_clicks"`
	WeeklyImpressions     float64 `json:"weekly_impressions"`
	WeeklyConversions     float64 `json:"weekly_conversions"`
	WeeklyConversionValue float64 `json:"weekly_conversion_value"`
	ROAS                  float64 `json:"roas"` // ponderado por spend, viene del agente
}

type AdGroup struct {
	ID                    ID      `json:"ad_group_id"`
	CampaignID            ID      `json:"campaign_id"`
	Name                  string  `json:"ad_group_name"`
	AvgBid                float64 `json:"avg_bid"`
	ROAS                  float64 `json:"roas"`
	ConversionValue       float64 `json:"conversion_value"`
	Conversions           float64 `json:"conversions"`
	AudienceID            *ID     `json:"audience_id,omitempty"`
	WeeklyBudgetAllocated float64 `json:"weekly_budget_allocated,omitempty"`
	WeeklyBudgetSpent     float64 `json:"weekly_budget_spent,omitempty"`
}

type Audience struct {
	ID           ID      `json:"audience_id"`
	Name         string  `json:"audience_name"`
	AvgCVR       float64 `json:"avg_cvr"`
	AvgCTR       float64 `json:"avg_ctr"`
	FatigueScore float64 `json:"fatigue_score"`
	IntentScore  float64 `json:"intent_score"`
}

type StateSnapshot struct {
	Campaigns []Campaign `json:"campaigns"`
	AdGroups  []AdGroup  `json:"ad_groups"`
	Audiences []Audience `json:"audiences"`
}

func (s StateSnapshot) Campaign(id ID) (Campaign, bool) {
	for _, c := range s.Campaigns {
		if c.ID == id {
			return c, true
		}
	}
	return Campaign{}, false
}

func (s StateSnapshot) AdGroup(id ID) (AdGroup, bool) {
	for _, ag := range s.AdGroups {
		if ag.ID == id {
			return ag, true
		}
	}
	return AdGroup{}, false
}

func (s StateSnapshot) Audience(id ID) (Audience, bool) {
	for _, a := range s.Audiences {
		if a.ID == id {
			return a, true
		}
	}
	return Audience{}, false
}

type WeekEntry struct {
	Week            int               `json:"week"`
	StateSnapshot   *StateSnapshot    `json:"state_snapshot"`
	Recommendations RecommendationSet `json:"recommendations"`
}

// Snapshot nunca devuelve nil: una entrada sin snapshot se ve vacía.
func (w WeekEntry) Snapshot() StateSnapshot {
	if w.StateSnapshot == nil {
		return StateSnapshot{}
	}
	return *w.StateSnapshot
}

// Dataset is the decoded results file. FinalStateSnapshot, FinalRecommendations
// and LatestWeek are legacy caches of the last history entry; readers should
// use Latest instead.
type Dataset struct {
	LatestWeek           int                `json:"latest_week"`
	FinalStateSnapshot   *StateSnapshot     `json:"final_state_snapshot,omitempty"`
	FinalRecommendations *RecommendationSet `json:"final_recommendations,omitempty"`
	CampaignHistory      []WeekEntry        `json:"campaign_history"`
}

func (d *Dataset) Latest() (WeekEntry, bool) {
	if d == nil || len(d.CampaignHistory) == 0 {
		return WeekEntry{}, false
	}
	return d.CampaignHistory[len(d.CampaignHistory)-1], true
}
