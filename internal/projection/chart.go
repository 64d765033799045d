package projection

import (
	"fmt"
	"strings"

	"github.com/AngelCh415/campaign-dashboard/internal/models"
)

// Metric is the secondary line plotted next to ROAS.
type Metric string

const (
	MetricCTR Metric = "ctr" // clicks / impressions
	MetricCVR Metric = "cvr" // conversions / clicks
)

func ParseMetric(s string) (Metric, error) {
	switch Metric(strings.ToLower(strings.TrimSpace(s))) {
	case MetricCTR, "":
		return MetricCTR, nil
	case MetricCVR:
		return MetricCVR, nil
	}
	return "", fmt.Errorf("unknown chart metric %q", s)
}

func (m Metric) Of(c models.Campaign) float64 {
	if m == MetricCVR {
		return safeDivF(c.WeeklyConversions, c.WeeklyClicks)
	}
	return safeDivF(c.WeeklyClicks, c.WeeklyImpressions)
}

func (m Metric) Label() string {
	if m == MetricCVR {
		return "Conversion rate"
	}
	return "CTR"
}

type Series struct {
	CampaignID models.ID `json:"campaign_id"`
	Name       string    `json:"name"`
	Color      string    `json:"color"`
	ROAS       []float64 `json:"roas"`
	Secondary  []float64 `json:"secondary"`
}

type Chart struct {
	Labels []string `json:"labels"`
	Weeks  []int    `json:"weeks"`
	Metric Metric   `json:"metric"`
	Series []Series `json:"series"`
}

func (c Chart) Get(id models.ID) (Series, bool) {
	for _, s := range c.Series {
		if s.CampaignID == id {
			return s, true
		}
	}
	return Series{}, false
}

// BuildChart builds one point per week for each campaign of the first week.
// selected narrows and orders the series; empty means every campaign of the
// first week in snapshot order, and so does a selection that matches none of
// them. A campaign missing from a week ends its series there.
func BuildChart(history []models.WeekEntry, selected []models.ID, metric Metric) Chart {
	ch := Chart{
		Labels: make([]string, 0, len(history)),
		Weeks:  make([]int, 0, len(history)),
		Metric: metric,
		Series: []Series{},
	}
	for _, e := range history {
		ch.Labels = append(ch.Labels, WeekLabel(e.Week))
		ch.Weeks = append(ch.Weeks, e.Week)
	}
	if len(history) == 0 {
		return ch
	}

	base := history[0].Snapshot().Campaigns
	order := chartOrder(base, selected)
	if len(order) == 0 {
		order = base
	}
	colors := Palette(len(order))

	for i, c := range order {
		s := Series{
			CampaignID: c.ID,
			Name:       fallbackName("Campaign", c.ID, c.Name),
			Color:      colors[i],
			ROAS:       make([]float64, 0, len(history)),
			Secondary:  make([]float64, 0, len(history)),
		}
		for _, e := range history {
			wc, ok := e.Snapshot().Campaign(c.ID)
			if !ok {
				break
			}
			s.ROAS = append(s.ROAS, round2(wc.ROAS))
			s.Secondary = append(s.Secondary, round3(metric.Of(wc)))
		}
		ch.Series = append(ch.Series, s)
	}
	return ch
}

func chartOrder(base []models.Campaign, selected []models.ID) []models.Campaign {
	if len(selected) == 0 {
		return base
	}
	byID := make(map[models.ID]models.Campaign, len(base))
	for _, c := range base {
		if _, dup := byID[c.ID]; !dup {
			byID[c.ID] = c
		}
	}
	out := make([]models.Campaign, 0, len(selected))
	seen := make(map[models.ID]bool, len(selected))
	for _, id := range selected {
		c, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, c)
	}
	return out
}

func WeekLabel(week int) string { return fmt.Sprintf("Week %d", week) }

// Palette returns n colors with evenly spaced hues.
func Palette(n int) []string {
	out := make([]string, n)
	for i := 0; i < n; i++ {
		hue := i * 360 / n
		out[i] = fmt.Sprintf("hsl(%d, 65%%, 48%%)", hue)
	}
	return out
}
