package ingest

import (
	"strings"

	"github.com/dgnsrekt/gas_chart/internal/chart"
)

// keywordRules is checked in order; the first matching category wins.
var keywordRules = []struct {
	category string
	keywords []string
}{
	{chart.CategoryStorage, []string{"storage", "eia storage", "injection"}},
	{chart.CategoryLNG, []string{"lng", "liquefied", "natural gas export"}},
	{chart.CategoryWeather, []string{"cold", "heat", "winter storm", "hurricane", "freeze", "arctic", "polar vortex"}},
	{chart.CategoryOutages, []string{"pipeline", "maintenance", "outage", "capacity", "force majeure"}},
	{chart.CategorySupply, []string{
		"production", "output", "dry gas", "lower 48", "associated gas", "marcellus", "utica",
		"haynesville", "permian", "eagle ford", "rig count", "gas rig", "drilling", "completion",
		"frac spread", "shut-in", "takeaway capacity", "pipeline constraint", "flaring", "breakeven",
	}},
	{chart.CategoryMacro, []string{"rates", "inflation", "dollar", "risk-off", "recession"}},
}

// Classify assigns a headline to a category by case-insensitive keyword
// match, falling back to OTHER.
func Classify(title string) string {
	t := strings.ToLower(title)
	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(t, kw) {
				return rule.category
			}
		}
	}
	return chart.CategoryOther
}
