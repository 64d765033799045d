package render

import (
	"github.com/AngelCh415/campaign-dashboard/internal/models"
	"github.com/AngelCh415/campaign-dashboard/internal/projection"
)

// item is one recommendation of any family, already formatted.
type item struct {
	Type   models.ActionType
	Name   string
	Found  bool
	Metric string
	Change string
	Tier   models.Tier
	Reason string
}

// itemGroup holds the first inline items of one action type; More sits
// behind the <details> toggle.
type itemGroup struct {
	Label  string
	Count  int
	Inline []item
	More   []item
}

type itemColumn struct {
	Title  string
	Family string
	Total  int
	Groups []itemGroup
}

func columns(r projection.Recommendations, inline int) []itemColumn {
	return []itemColumn{
		newColumn("Budget", r.Budget, inline, budgetItem),
		newColumn("Bids", r.Bids, inline, bidItem),
		newColumn("Audiences", r.Audiences, inline, audienceItem),
	}
}

func newColumn[T any](title string, col projection.Column[T], inline int, conv func(T) item) itemColumn {
	out := itemColumn{Title: title, Family: string(col.Family), Total: col.Total}
	for _, g := range []struct {
		label string
		items []T
	}{
		{actionLabel(col.Family.Positive()), col.Positive},
		{actionLabel(col.Family.Negative()), col.Negative},
		{"Hold", col.Neutral},
	} {
		if len(g.items) == 0 {
			continue
		}
		out.Groups = append(out.Groups, itemGroup{
			Label:  g.label,
			Count:  len(g.items),
			Inline: convert(projection.Inline(g.items, inline), conv),
			More:   convert(projection.Overflow(g.items, inline), conv),
		})
	}
	return out
}

func convert[T any](in []T, conv func(T) item) []item {
	out := make([]item, 0, len(in))
	for _, it := range in {
		out = append(out, conv(it))
	}
	return out
}

func budgetItem(it projection.BudgetItem) item {
	out := item{Type: it.Type, Name: it.CampaignName, Found: it.Found, Reason: it.Reason}
	if it.Found {
		out.Metric = "ROAS " + ratio(it.ROAS)
	}
	if it.Change != nil {
		out.Change = "Budget " + changeText(it.Change)
		out.Tier = it.Change.Tier
	}
	return out
}

func bidItem(it projection.BidItem) item {
	out := item{Type: it.Type, Name: it.AdGroupName, Found: it.Found, Reason: it.Reason}
	if it.Found {
		out.Metric = "ROAS " + ratio(it.ROAS) + " · Avg bid " + money(it.AvgBid)
	}
	if it.Change != nil {
		out.Change = "Bid " + changeText(it.Change)
		out.Tier = it.Change.Tier
	}
	return out
}

func audienceItem(it projection.AudienceItem) item {
	out := item{Type: it.Type, Name: it.AudienceName, Found: it.Found, Reason: it.Reason}
	if it.Found {
		out.Metric = "Intent " + score(it.IntentScore) + " · Fatigue " + score(it.FatigueScore) + " · CTR " + percent(it.AvgCTR)
	}
	return out
}
