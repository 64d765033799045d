package store

import (
	"fmt"
	"strings"

	"github.com/AngelCh415/campaign-dashboard/internal/models"
)

// Mode selects how much of the history is visible.
type Mode string

const (
	// ModeDemo hides the newest week until it is revealed.
	ModeDemo Mode = "demo"
	ModeFull Mode = "full"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeDemo:
		return ModeDemo, nil
	case ModeFull:
		return ModeFull, nil
	}
	return "", fmt.Errorf("unknown window mode %q", s)
}

// RevealWindow returns the entries visible under mode. The result shares the
// dataset's backing array and must not be modified.
func RevealWindow(ds *models.Dataset, mode Mode) []models.WeekEntry {
	if ds == nil {
		return nil
	}
	h := ds.CampaignHistory
	if mode == ModeDemo {
		if len(h) == 0 {
			return h
		}
		return h[:len(h)-1 : len(h)-1]
	}
	return h
}
