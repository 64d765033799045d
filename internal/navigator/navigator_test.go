package navigator

import (
	"errors"
	"testing"

	"github.com/AngelCh415/campaign-dashboard/internal/models"
)

// semanas no contiguas a propósito
func entries(weeks ...int) []models.WeekEntry {
	out := make([]models.WeekEntry, 0, len(weeks))
	for _, w := range weeks {
		out = append(out, models.WeekEntry{Week: w, StateSnapshot: &models.StateSnapshot{}})
	}
	return out
}

func TestNewPointsAtNewest(t *testing.T) {
	n, err := New(entries(2, 4, 9))
	if err != nil {
		t.Fatal(err)
	}
	if n.Index() != 2 || n.Current().Week != 9 {
		t.Fatalf("expected index 2 / week 9, got %d / %d", n.Index(), n.Current().Week)
	}
	if n.CanStepForward() {
		t.Fatal("newest week must not step forward")
	}
	if !n.CanStepBackward() {
		t.Fatal("expected backward step available")
	}
}

func TestNewEmpty(t *testing.T) {
	n, err := New(nil)
	if !errors.Is(err, ErrEmptyHistory) {
		t.Fatalf("expected ErrEmptyHistory, got %v", err)
	}
	if n != nil {
		t.Fatal("no navigator must be built for an empty window")
	}
}

func TestStepRoundTrip(t *testing.T) {
	revealed := entries(1, 2, 3, 5, 8)
	for start := 0; start < len(revealed); start++ {
		n, _ := New(revealed)
		for n.Index() != start {
			n.Step(Backward)
		}
		orig := n.Current()

		fwd, moved := n.Step(Forward)
		if start == len(revealed)-1 {
			if moved || fwd.Week != orig.Week {
				t.Fatalf("index %d: forward step at the end must be a no-op", start)
			}
			continue
		}
		if !moved {
			t.Fatalf("index %d: expected forward move", start)
		}
		back, moved := n.Step(Backward)
		if !moved || back.Week != orig.Week || n.Index() != start {
			t.Fatalf("index %d: round trip ended at week %d index %d", start, back.Week, n.Index())
		}
	}
}

func TestStepBoundaries(t *testing.T) {
	n, _ := New(entries(1, 2))
	n.Step(Backward)
	if n.CanStepBackward() {
		t.Fatal("oldest week must not step backward")
	}
	got, moved := n.Step(Backward)
	if moved || got.Week != 1 || n.Index() != 0 {
		t.Fatalf("backward at start must be a no-op, got week %d index %d", got.Week, n.Index())
	}
	if _, moved := n.Step(Direction(2)); moved {
		t.Fatal("invalid direction must not move")
	}
	if _, moved := n.Step(Direction(0)); moved {
		t.Fatal("zero direction must not move")
	}
}

func TestOnWindowChangeRepointsToNewest(t *testing.T) {
	full := entries(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12)
	n, err := New(full[:11])
	if err != nil {
		t.Fatal(err)
	}
	if n.Index() != 10 || n.Current().Week != 11 {
		t.Fatalf("demo: expected index 10 week 11, got %d %d", n.Index(), n.Current().Week)
	}
	n.Step(Backward)
	n.Step(Backward)
	if err := n.OnWindowChange(full); err != nil {
		t.Fatal(err)
	}
	if n.Index() != 11 || n.Current().Week != 12 {
		t.Fatalf("full: expected index 11 week 12, got %d %d", n.Index(), n.Current().Week)
	}
	if err := n.OnWindowChange(nil); !errors.Is(err, ErrEmptyHistory) {
		t.Fatalf("expected ErrEmptyHistory, got %v", err)
	}
	if n.Len() != 12 {
		t.Fatal("failed window change must keep the previous window")
	}
}
