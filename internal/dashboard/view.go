package dashboard

import (
	"log/slog"
	"time"

	"github.com/AngelCh415/campaign-dashboard/internal/models"
	"github.com/AngelCh415/campaign-dashboard/internal/projection"
	"github.com/AngelCh415/campaign-dashboard/internal/store"
)

// View is everything a render adapter needs for one page. It is a snapshot:
// later controller changes do not affect it.
type View struct {
	Version   uint64     `json:"version"`
	Status    Status     `json:"status"`
	Error     string     `json:"error,omitempty"`
	Mode      store.Mode `json:"mode"`
	Revealing bool       `json:"revealing"`
	Source    string     `json:"source,omitempty"`
	LoadedAt  time.Time  `json:"loaded_at,omitempty"`

	Week        int   `json:"week"`
	Index       int   `json:"index"`
	Weeks       []int `json:"weeks"`
	CanBackward bool  `json:"can_step_backward"`
	CanForward  bool  `json:"can_step_forward"`

	Summary         projection.Summary          `json:"summary"`
	Recommendations projection.Recommendations  `json:"recommendations"`
	Leaderboard     projection.Leaderboard      `json:"leaderboard"`
	Campaigns       []projection.CampaignOption `json:"campaigns"`
	Selected        []models.ID                 `json:"selected"`
	Chart           projection.Chart            `json:"chart"`
	InlineActions   int                         `json:"inline_actions"`
}

func (v View) HasData() bool { return v.Status == StatusReady }

func (v View) IsSelected(id models.ID) bool {
	for _, s := range v.Selected {
		if s == id {
			return true
		}
	}
	return false
}

func (c *Controller) View() View {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v := View{
		Version:       c.version,
		Status:        c.status,
		Mode:          c.mode,
		Revealing:     c.revealing,
		InlineActions: c.opts.InlineActions,
		Selected:      c.sel.IDs(),
	}
	if c.loadErr != nil {
		v.Error = c.loadErr.Error()
	}
	v.Source, v.LoadedAt = c.st.Source()
	if c.nav == nil {
		return v
	}

	entry := c.nav.Current()
	revealed := c.nav.Revealed()
	v.Week = entry.Week
	v.Index = c.nav.Index()
	v.CanBackward = c.nav.CanStepBackward()
	v.CanForward = c.nav.CanStepForward()
	v.Weeks = make([]int, 0, len(revealed))
	for _, e := range revealed {
		v.Weeks = append(v.Weeks, e.Week)
	}

	v.Summary = projection.Summarize(entry)
	v.Recommendations = projection.Recommend(entry)
	v.Leaderboard = projection.BuildLeaderboard(entry, c.opts.LeaderboardSize)
	v.Campaigns = projection.CampaignOptions(revealed[0])
	v.Chart = projection.BuildChart(revealed, v.Selected, c.opts.Metric)

	if n := v.Recommendations.Misses; n > 0 {
		c.metrics.ObserveMisses("action", n)
		c.log.Debug("recommendation lookup misses", slog.Int("week", entry.Week), slog.Int("misses", n))
	}
	return v
}
