package render

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/AngelCh415/campaign-dashboard/internal/dashboard"
	"github.com/AngelCh415/campaign-dashboard/internal/models"
	"github.com/AngelCh415/campaign-dashboard/internal/projection"
)

var printer = message.NewPrinter(language.English)

func money(f float64) string {
	if f < 0 {
		return printer.Sprintf("-$%.2f", -f)
	}
	return printer.Sprintf("$%.2f", f)
}

func ratio(f float64) string { return printer.Sprintf("%.2f", f) }

func score(f float64) string { return printer.Sprintf("%.3f", f) }

// percent formats a 0..1 ratio.
func percent(f float64) string { return printer.Sprintf("%.2f%%", f*100) }

func count(n int) string { return printer.Sprintf("%d", n) }

// changeText renders "current → new (±pct%)" for a budget or bid change.
func changeText(c *models.Change) string {
	if c == nil {
		return ""
	}
	s := money(c.Current) + " → " + money(c.New)
	switch {
	case c.ChangePercent > 0:
		s += printer.Sprintf(" (+%.1f%%)", c.ChangePercent)
	case c.ChangePercent < 0:
		s += printer.Sprintf(" (-%.1f%%)", -c.ChangePercent)
	}
	return s
}

func actionLabel(t models.ActionType) string {
	if t == "" {
		return "No change"
	}
	s := strings.ReplaceAll(string(t), "_", " ")
	return strings.ToUpper(s[:1]) + s[1:]
}

func version(v dashboard.View) string { return strconv.FormatUint(v.Version, 10) }

// paragraphs splits the agent explanation on newlines, dropping blank lines.
func paragraphs(s string) []string {
	var out []string
	for _, p := range strings.Split(s, "\n") {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

type actionCard struct {
	Label  string
	Counts projection.ActionCounts
}

func actionCards(s projection.Summary) []actionCard {
	return []actionCard{
		{"Budget actions", s.Budget},
		{"Bid actions", s.Bids},
		{"Audience actions", s.Audiences},
	}
}

func pickedID(dd *projection.DrillDown) models.ID {
	if dd == nil {
		return ""
	}
	return dd.CampaignID
}

var drillDownHeaders = []string{"Week", "Ad group", "ROAS", "Conv. value", "Conversions", "Avg bid", "Audience CVR", "Fatigue", "Intent", "Bid action", "Audience action", "Reason"}
