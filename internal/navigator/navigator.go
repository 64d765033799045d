// Package navigator tracks which revealed week is on screen.
//
// The index is always relative to the revealed window: 0 is the oldest
// visible entry and Len()-1 the newest. Week numbers are read from the
// entries, never derived from the index.
package navigator

import (
	"errors"

	"github.com/AngelCh415/campaign-dashboard/internal/models"
)

var ErrEmptyHistory = errors.New("no revealed weeks")

type Direction int

const (
	Backward Direction = -1
	Forward  Direction = 1
)

func (d Direction) Valid() bool { return d == Backward || d == Forward }

type Navigator struct {
	revealed []models.WeekEntry
	current  int
}

// New points at the newest revealed week.
func New(revealed []models.WeekEntry) (*Navigator, error) {
	if len(revealed) == 0 {
		return nil, ErrEmptyHistory
	}
	return &Navigator{revealed: revealed, current: len(revealed) - 1}, nil
}

// Step moves one week. Stepping past either end leaves the index unchanged
// and reports false.
func (n *Navigator) Step(dir Direction) (models.WeekEntry, bool) {
	if !dir.Valid() {
		return n.Current(), false
	}
	next := n.current + int(dir)
	if next < 0 || next > len(n.revealed)-1 {
		return n.Current(), false
	}
	n.current = next
	return n.Current(), true
}

func (n *Navigator) CanStepBackward() bool { return n.current > 0 }
func (n *Navigator) CanStepForward() bool  { return n.current < len(n.revealed)-1 }

func (n *Navigator) Index() int { return n.current }
func (n *Navigator) Len() int   { return len(n.revealed) }

func (n *Navigator) Current() models.WeekEntry { return n.revealed[n.current] }

func (n *Navigator) Revealed() []models.WeekEntry { return n.revealed }

// OnWindowChange swaps the revealed window and re-points to its newest week.
// On error the navigator keeps its previous window.
func (n *Navigator) OnWindowChange(revealed []models.WeekEntry) error {
	if len(revealed) == 0 {
		return ErrEmptyHistory
	}
	n.revealed = revealed
	n.current = len(revealed) - 1
	return nil
}
