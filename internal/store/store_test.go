package store

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/AngelCh415/campaign-dashboard/internal/models"
)

func historyJSON(weeks int) string {
	var b strings.Builder
	b.WriteString(`{"latest_week":`)
	fmt.Fprintf(&b, "%d", weeks)
	b.WriteString(`,"campaign_history":[`)
	for w := 1; w <= weeks; w++ {
		if w > 1 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `{"week":%d,"state_snapshot":{"campaigns":[{"campaign_id":1,"campaign_name":"Brand","roas":2.5}],"ad_groups":[],"audiences":[]},"recommendations":{"campaign_budget_actions":[],"explanation":"w%d"}}`, w, w)
	}
	b.WriteString("]}")
	return b.String()
}

func TestLoadValid(t *testing.T) {
	ds, err := Load([]byte(historyJSON(3)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ds.CampaignHistory) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(ds.CampaignHistory))
	}
	last, ok := ds.Latest()
	if !ok || last.Week != 3 {
		t.Fatalf("expected latest week 3, got %+v", last)
	}
	if got := ds.CampaignHistory[0].Snapshot().Campaigns[0].ID; got != "1" {
		t.Fatalf("expected campaign id 1, got %q", got)
	}
}

func TestLoadMalformed(t *testing.T) {
	cases := map[string]string{
		"empty document":      ``,
		"invalid json":        `{"campaign_history":`,
		"missing history":     `{"latest_week":1}`,
		"empty history":       `{"campaign_history":[]}`,
		"history not array":   `{"campaign_history":{}}`,
		"missing snapshot":    `{"campaign_history":[{"week":1}]}`,
		"null snapshot":       `{"campaign_history":[{"week":1,"state_snapshot":null}]}`,
		"missing campaigns":   `{"campaign_history":[{"week":1,"state_snapshot":{}}]}`,
		"campaigns not array": `{"campaign_history":[{"week":1,"state_snapshot":{"campaigns":{}}}]}`,
		"week zero":           `{"campaign_history":[{"week":0,"state_snapshot":{"campaigns":[]}}]}`,
		"weeks out of order":  `{"campaign_history":[{"week":2,"state_snapshot":{"campaigns":[]}},{"week":1,"state_snapshot":{"campaigns":[]}}]}`,
		"later snapshot gone": `{"campaign_history":[{"week":1,"state_snapshot":{"campaigns":[]}},{"week":2}]}`,
		"wrong campaign type": `{"campaign_history":[{"week":1,"state_snapshot":{"campaigns":[{"roas":"high"}]}}]}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			ds, err := Load([]byte(raw))
			if err == nil {
				t.Fatalf("expected error, got dataset %+v", ds)
			}
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("expected ErrMalformed, got %v", err)
			}
			var de *DataError
			if !errors.As(err, &de) {
				t.Fatalf("expected *DataError, got %T", err)
			}
		})
	}
}

func TestLoadAcceptsNonContiguousWeeks(t *testing.T) {
	raw := `{"campaign_history":[{"week":3,"state_snapshot":{"campaigns":[]}},{"week":7,"state_snapshot":{"campaigns":[]}}]}`
	ds, err := Load([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ds.CampaignHistory[1].Week != 7 {
		t.Fatalf("expected week 7, got %d", ds.CampaignHistory[1].Week)
	}
}

func TestRevealWindow(t *testing.T) {
	ds, err := Load([]byte(historyJSON(12)))
	if err != nil {
		t.Fatal(err)
	}
	demo := RevealWindow(ds, ModeDemo)
	if len(demo) != 11 {
		t.Fatalf("demo: expected 11 entries, got %d", len(demo))
	}
	if demo[10].Week != 11 {
		t.Fatalf("demo: expected last week 11, got %d", demo[10].Week)
	}
	full := RevealWindow(ds, ModeFull)
	if len(full) != 12 {
		t.Fatalf("full: expected 12 entries, got %d", len(full))
	}
	// el slice demo no puede crecer sobre la semana oculta
	grown := append(demo, models.WeekEntry{Week: 99})
	if ds.CampaignHistory[11].Week != 12 || grown[11].Week != 99 {
		t.Fatal("append to demo window must not overwrite the hidden week")
	}
	if RevealWindow(nil, ModeFull) != nil {
		t.Fatal("nil dataset must reveal nothing")
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode(" Demo "); err != nil || m != ModeDemo {
		t.Fatalf("got %q %v", m, err)
	}
	if m, err := ParseMode("full"); err != nil || m != ModeFull {
		t.Fatalf("got %q %v", m, err)
	}
	if _, err := ParseMode("partial"); err == nil {
		t.Fatal("expected error")
	}
}

func TestMemoryStore(t *testing.T) {
	st := NewMemoryStore()
	if st.Loaded() {
		t.Fatal("new store must be empty")
	}
	ds, err := Load([]byte(strings.Replace(historyJSON(2), `"latest_week":2`, `"latest_week":5`, 1)))
	if err != nil {
		t.Fatal(err)
	}
	st.Put(ds, "results.json")
	if !st.Loaded() {
		t.Fatal("store must be loaded")
	}
	if got := len(st.Window(ModeDemo)); got != 1 {
		t.Fatalf("expected 1 revealed entry, got %d", got)
	}
	latest, cached, stale := st.StaleCache()
	if !stale || latest != 2 || cached != 5 {
		t.Fatalf("expected stale cache 2 vs 5, got %d %d %v", latest, cached, stale)
	}
	if src, _ := st.Source(); src != "results.json" {
		t.Fatalf("unexpected source %q", src)
	}

	st.Reset()
	if st.Loaded() || len(st.Window(ModeFull)) != 0 {
		t.Fatal("reset store must hold no dataset")
	}
	if src, at := st.Source(); src != "" || !at.IsZero() {
		t.Fatalf("reset store kept source %q at %v", src, at)
	}
}

func TestDecode(t *testing.T) {
	ds, err := Decode(strings.NewReader(historyJSON(2)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ds.CampaignHistory) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(ds.CampaignHistory))
	}
	if _, err := Decode(strings.NewReader(`{"campaign_history":[]}`)); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}
