package dashboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/AngelCh415/campaign-dashboard/internal/ingest"
	"github.com/AngelCh415/campaign-dashboard/internal/models"
	"github.com/AngelCh415/campaign-dashboard/internal/navigator"
	"github.com/AngelCh415/campaign-dashboard/internal/projection"
	"github.com/AngelCh415/campaign-dashboard/internal/store"
	"github.com/AngelCh415/campaign-dashboard/internal/telemetry"
)

type fakeLoader struct {
	ds  *models.Dataset
	err error
}

func (f *fakeLoader) Load(context.Context) (*models.Dataset, error) { return f.ds, f.err }
func (f *fakeLoader) Location() string                              { return "fake.json" }

func weeks(n int) *models.Dataset {
	ds := &models.Dataset{LatestWeek: n}
	for w := 1; w <= n; w++ {
		snap := &models.StateSnapshot{Campaigns: []models.Campaign{
			{ID: "1", Name: "Brand", ROAS: 1.0, WeeklyBudgetAllocated: 100, WeeklyBudgetSpent: 90},
			{ID: "2", Name: "Promo", ROAS: 3.0, WeeklyBudgetAllocated: 200, WeeklyBudgetSpent: 150},
			{ID: "3", Name: "Search", ROAS: 2.0, WeeklyBudgetAllocated: 50, WeeklyBudgetSpent: 50},
		}}
		ds.CampaignHistory = append(ds.CampaignHistory, models.WeekEntry{
			Week:          w,
			StateSnapshot: snap,
			Recommendations: models.RecommendationSet{
				CampaignBudgetActions: []models.BudgetAction{
					{CampaignID: "2", Type: models.Increase},
					{CampaignID: "9", Type: models.Decrease},
				},
			},
		})
	}
	return ds
}

func newController(t *testing.T, l Loader, opts Options) *Controller {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := New(l, store.NewMemoryStore(), log, telemetry.NewMetrics(), opts)
	t.Cleanup(c.Close)
	return c
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestDemoRevealsNewestWeek(t *testing.T) {
	c := newController(t, &fakeLoader{ds: weeks(12)}, Options{Mode: store.ModeDemo, RevealDelay: 20 * time.Millisecond})
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	v := c.View()
	if v.Status != StatusReady || len(v.Weeks) != 11 || v.Index != 10 || v.Week != 11 {
		t.Fatalf("demo view: status=%s weeks=%d index=%d week=%d", v.Status, len(v.Weeks), v.Index, v.Week)
	}
	if v.CanForward {
		t.Fatal("newest revealed week must not step forward")
	}

	started, err := c.StartReveal()
	if err != nil || !started {
		t.Fatalf("start reveal: %v %v", started, err)
	}
	again, _ := c.StartReveal()
	if again {
		t.Fatal("second reveal while pending must be a no-op")
	}

	waitFor(t, func() bool { return c.View().Mode == store.ModeFull })
	v = c.View()
	if len(v.Weeks) != 12 || v.Index != 11 || v.Week != 12 || v.Revealing {
		t.Fatalf("after reveal: weeks=%d index=%d week=%d revealing=%v", len(v.Weeks), v.Index, v.Week, v.Revealing)
	}
	if again, _ := c.StartReveal(); again {
		t.Fatal("reveal in full mode must be a no-op")
	}
}

func TestRevealRepointsAfterNavigation(t *testing.T) {
	c := newController(t, &fakeLoader{ds: weeks(4)}, Options{Mode: store.ModeDemo, RevealDelay: 10 * time.Millisecond})
	if err := c.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if moved, _ := c.OnWeekStep(navigator.Backward); !moved {
		t.Fatal("expected to move backward")
	}
	if _, err := c.StartReveal(); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return c.View().Mode == store.ModeFull })
	if v := c.View(); v.Index != 3 {
		t.Fatalf("reveal must point at the newest week, got index %d", v.Index)
	}
}

func TestCloseStopsPendingReveal(t *testing.T) {
	c := newController(t, &fakeLoader{ds: weeks(3)}, Options{Mode: store.ModeDemo, RevealDelay: time.Hour})
	if err := c.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if ok, _ := c.StartReveal(); !ok {
		t.Fatal("expected reveal to start")
	}
	c.Close()
	if v := c.View(); v.Revealing || v.Mode != store.ModeDemo {
		t.Fatalf("closed controller: revealing=%v mode=%s", v.Revealing, v.Mode)
	}
	if ok, _ := c.StartReveal(); ok {
		t.Fatal("closed controller must not schedule a reveal")
	}
}

func TestEmptyHistoryLeavesNoNavigator(t *testing.T) {
	_, loadErr := store.Load([]byte(`{"campaign_history":[]}`))
	c := newController(t, &fakeLoader{err: loadErr}, Options{})

	err := c.Load(context.Background())
	if !errors.Is(err, store.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
	v := c.View()
	if v.Status != StatusFailed || v.Error == "" || v.Weeks != nil {
		t.Fatalf("failed view: %+v", v)
	}
	if c.Ready() {
		t.Fatal("failed load must not be ready")
	}
	if _, err := c.OnWeekStep(navigator.Backward); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("step: expected ErrNotLoaded, got %v", err)
	}
	if err := c.OnSelectionChange(SelectAdd, []models.ID{"1"}); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("selection: expected ErrNotLoaded, got %v", err)
	}
	if _, err := c.Chart(projection.MetricCTR); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("chart: expected ErrNotLoaded, got %v", err)
	}
}

func TestFetchErrorFails(t *testing.T) {
	fe := &ingest.FetchError{Source: "results.json", Err: errors.New("no such file")}
	c := newController(t, &fakeLoader{err: fe}, Options{})
	err := c.Load(context.Background())
	var got *ingest.FetchError
	if !errors.As(err, &got) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if v := c.View(); v.Status != StatusFailed {
		t.Fatalf("expected failed status, got %s", v.Status)
	}
}

func TestReloadAfterFailure(t *testing.T) {
	l := &fakeLoader{err: errors.New("boom")}
	c := newController(t, l, Options{})
	if err := c.Load(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	l.ds, l.err = weeks(2), nil
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if v := c.View(); v.Status != StatusReady || v.Error != "" || v.Week != 2 {
		t.Fatalf("reloaded view: %+v", v)
	}
}

func TestSingleWeekDemoAwaitsReveal(t *testing.T) {
	c := newController(t, &fakeLoader{ds: weeks(1)}, Options{Mode: store.ModeDemo, RevealDelay: 10 * time.Millisecond})
	if err := c.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if v := c.View(); v.Status != StatusAwaitingReveal || v.Weeks != nil {
		t.Fatalf("expected awaiting reveal, got %+v", v)
	}
	if _, err := c.OnWeekStep(navigator.Forward); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded, got %v", err)
	}
	if ok, err := c.StartReveal(); !ok || err != nil {
		t.Fatalf("start reveal: %v %v", ok, err)
	}
	waitFor(t, func() bool { return c.View().Status == StatusReady })
	if v := c.View(); v.Week != 1 {
		t.Fatalf("expected week 1 after reveal, got %d", v.Week)
	}
}

func TestWeekStepBoundaries(t *testing.T) {
	c := newController(t, &fakeLoader{ds: weeks(3)}, Options{})
	if err := c.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	before := c.Version()
	if moved, _ := c.OnWeekStep(navigator.Forward); moved {
		t.Fatal("forward at newest week must not move")
	}
	if c.Version() != before {
		t.Fatal("no-op step must not bump the version")
	}
	for i := 0; i < 2; i++ {
		if moved, _ := c.OnWeekStep(navigator.Backward); !moved {
			t.Fatalf("step %d should move", i)
		}
	}
	if moved, _ := c.OnWeekStep(navigator.Backward); moved {
		t.Fatal("backward at oldest week must not move")
	}
	v := c.View()
	if v.Week != 1 || v.CanBackward || !v.CanForward {
		t.Fatalf("oldest week view: %+v", v)
	}
}

func TestSelectionDefaultAndOps(t *testing.T) {
	c := newController(t, &fakeLoader{ds: weeks(2)}, Options{DefaultSelection: 2})
	if err := c.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	v := c.View()
	if len(v.Selected) != 2 || v.Selected[0] != "2" || v.Selected[1] != "3" {
		t.Fatalf("default selection should be top-2 by mean ROAS, got %v", v.Selected)
	}
	if len(v.Chart.Series) != 2 || v.Chart.Series[0].CampaignID != "2" {
		t.Fatalf("chart should follow selection order, got %+v", v.Chart.Series)
	}

	if err := c.OnSelectionChange(SelectAdd, []models.ID{"1", "2"}); err != nil {
		t.Fatal(err)
	}
	if got := c.View().Selected; len(got) != 3 || got[2] != "1" {
		t.Fatalf("add: %v", got)
	}
	if err := c.OnSelectionChange(SelectRemove, []models.ID{"2"}); err != nil {
		t.Fatal(err)
	}
	if err := c.OnSelectionChange(SelectReplace, nil); err != nil {
		t.Fatal(err)
	}
	ch, err := c.Chart(projection.MetricCVR)
	if err != nil {
		t.Fatal(err)
	}
	if len(ch.Series) != 3 || ch.Metric != projection.MetricCVR {
		t.Fatalf("empty selection should chart all campaigns, got %d series", len(ch.Series))
	}

	// un reload no pisa la selección del usuario
	if err := c.OnSelectionChange(SelectReplace, []models.ID{"1"}); err != nil {
		t.Fatal(err)
	}
	if err := c.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := c.View().Selected; len(got) != 1 || got[0] != "1" {
		t.Fatalf("reload must keep selection, got %v", got)
	}
}

func TestWindowModeChange(t *testing.T) {
	c := newController(t, &fakeLoader{ds: weeks(5)}, Options{Mode: store.ModeFull})
	if err := c.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := c.OnWindowModeChange(store.ModeDemo); err != nil {
		t.Fatal(err)
	}
	if v := c.View(); len(v.Weeks) != 4 || v.Index != 3 {
		t.Fatalf("demo window: weeks=%d index=%d", len(v.Weeks), v.Index)
	}
	if err := c.OnWindowModeChange(store.ModeFull); err != nil {
		t.Fatal(err)
	}
	if v := c.View(); len(v.Weeks) != 5 || v.Index != 4 {
		t.Fatalf("full window: weeks=%d index=%d", len(v.Weeks), v.Index)
	}
}

func TestViewProjections(t *testing.T) {
	c := newController(t, &fakeLoader{ds: weeks(2)}, Options{InlineActions: 3, LeaderboardSize: 1, DefaultSelection: 3})
	if err := c.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	v := c.View()
	if v.Summary.CampaignCount != 3 || v.Summary.TotalAllocated != 350 {
		t.Fatalf("summary: %+v", v.Summary)
	}
	if v.Recommendations.ForWeek != 3 || v.Recommendations.Misses != 1 {
		t.Fatalf("recommendations: for_week=%d misses=%d", v.Recommendations.ForWeek, v.Recommendations.Misses)
	}
	if len(v.Leaderboard.TopCampaigns) != 1 || v.Leaderboard.TopCampaigns[0].ID != "2" {
		t.Fatalf("leaderboard: %+v", v.Leaderboard)
	}
	if len(v.Campaigns) != 3 || !v.IsSelected("2") {
		t.Fatalf("options: %+v selected=%v", v.Campaigns, v.Selected)
	}

	dd, err := c.DrillDown("2")
	if err != nil || dd.CampaignName != "Promo" {
		t.Fatalf("drill-down: %+v %v", dd, err)
	}
}

func TestFailedReloadCancelsPendingReveal(t *testing.T) {
	l := &fakeLoader{ds: weeks(4)}
	c := newController(t, l, Options{Mode: store.ModeDemo, RevealDelay: 30 * time.Millisecond})
	if err := c.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if ok, err := c.StartReveal(); !ok || err != nil {
		t.Fatalf("start reveal: %v %v", ok, err)
	}
	l.ds, l.err = nil, store.ErrMalformed
	if err := c.Load(context.Background()); !errors.Is(err, store.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
	if v := c.View(); v.Revealing {
		t.Fatal("failed reload must cancel the pending reveal")
	}

	time.Sleep(100 * time.Millisecond)
	v := c.View()
	if v.Status != StatusFailed || v.Error == "" || v.Weeks != nil || v.HasData() {
		t.Fatalf("after reveal delay: status=%s error=%q weeks=%d", v.Status, v.Error, len(v.Weeks))
	}
	if c.Ready() {
		t.Fatal("failed reload must not be ready")
	}
	if _, err := c.Chart(projection.MetricCTR); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("chart: expected ErrNotLoaded, got %v", err)
	}
}

// renamed copies ds with every campaign id prefixed.
func renamed(ds *models.Dataset, prefix string) *models.Dataset {
	out := &models.Dataset{LatestWeek: ds.LatestWeek}
	for _, e := range ds.CampaignHistory {
		snap := &models.StateSnapshot{}
		for _, cp := range e.Snapshot().Campaigns {
			cp.ID = models.ID(prefix) + cp.ID
			snap.Campaigns = append(snap.Campaigns, cp)
		}
		out.CampaignHistory = append(out.CampaignHistory, models.WeekEntry{Week: e.Week, StateSnapshot: snap})
	}
	return out
}

func TestReloadWithNewIDsReseedsSelection(t *testing.T) {
	l := &fakeLoader{ds: weeks(3)}
	c := newController(t, l, Options{DefaultSelection: 2})
	if err := c.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	l.ds = renamed(weeks(3), "1")
	if err := c.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	v := c.View()
	if len(v.Selected) != 2 || v.Selected[0] != "12" || v.Selected[1] != "13" {
		t.Fatalf("selection should be seeded from the new ids, got %v", v.Selected)
	}
	if len(v.Chart.Series) != 2 {
		t.Fatalf("expected 2 series after reload, got %d", len(v.Chart.Series))
	}

	// ids que no existen: el gráfico cae a todas las campañas
	if err := c.OnSelectionChange(SelectReplace, []models.ID{"404"}); err != nil {
		t.Fatal(err)
	}
	if v := c.View(); len(v.Chart.Series) != len(v.Campaigns) || len(v.Campaigns) != 3 {
		t.Fatalf("unknown selection: series=%d campaigns=%d", len(v.Chart.Series), len(v.Campaigns))
	}
}

func TestDefaultSelectionIgnoresHiddenWeek(t *testing.T) {
	ds := weeks(3)
	ds.CampaignHistory[2].StateSnapshot.Campaigns[0].ROAS = 100
	c := newController(t, &fakeLoader{ds: ds}, Options{Mode: store.ModeDemo, DefaultSelection: 1, RevealDelay: 10 * time.Millisecond})
	if err := c.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := c.View().Selected; len(got) != 1 || got[0] != "2" {
		t.Fatalf("default must rank revealed weeks only, got %v", got)
	}
}

func TestSingleWeekDemoSeedsOnReveal(t *testing.T) {
	c := newController(t, &fakeLoader{ds: weeks(1)}, Options{Mode: store.ModeDemo, DefaultSelection: 1, RevealDelay: 10 * time.Millisecond})
	if err := c.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := c.View().Selected; len(got) != 0 {
		t.Fatalf("nothing revealed yet, got selection %v", got)
	}
	if _, err := c.StartReveal(); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return c.View().Status == StatusReady })
	if got := c.View().Selected; len(got) != 1 || got[0] != "2" {
		t.Fatalf("selection after reveal: %v", got)
	}
}
