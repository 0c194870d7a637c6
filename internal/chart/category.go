package chart

import (
	"sort"
	"strings"
)

const (
	CategoryStorage = "STORAGE"
	CategoryLNG     = "LNG"
	CategoryWeather = "WEATHER"
	CategoryOutages = "OUTAGES"
	CategorySupply  = "SUPPLY"
	CategoryMacro   = "MACRO"
	CategoryOther   = "OTHER"

	// CategoryPolicy is a permanent alias of CategorySupply.
	CategoryPolicy = "POLICY"

	// CategoryPrice labels synthetic price tooltips; it is never an event category.
	CategoryPrice = "PRICE"
)

// Categories lists the canonical event categories in display order.
var Categories = []string{
	CategoryStorage,
	CategoryLNG,
	CategoryWeather,
	CategoryOutages,
	CategorySupply,
	CategoryMacro,
	CategoryOther,
}

// NormalizeCategory maps empty to OTHER and POLICY to SUPPLY. Other values
// pass through unchanged.
func NormalizeCategory(cat string) string {
	cat = strings.TrimSpace(cat)
	switch cat {
	case "":
		return CategoryOther
	case CategoryPolicy:
		return CategorySupply
	}
	return cat
}

// CategorySet is a category enablement set. SUPPLY and POLICY are always
// members together.
type CategorySet map[string]struct{}

func NewCategorySet(cats ...string) CategorySet {
	s := make(CategorySet, len(cats)+1)
	for _, c := range cats {
		s.Add(c)
	}
	return s
}

// AllCategories returns a set with every canonical category enabled.
func AllCategories() CategorySet {
	return NewCategorySet(Categories...)
}

func (s CategorySet) Add(cat string) {
	cat = strings.TrimSpace(cat)
	if cat == "" {
		return
	}
	s[cat] = struct{}{}
	if cat == CategorySupply || cat == CategoryPolicy {
		s[CategorySupply] = struct{}{}
		s[CategoryPolicy] = struct{}{}
	}
}

// Has checks membership of the event's normalized category.
func (s CategorySet) Has(cat string) bool {
	_, ok := s[NormalizeCategory(cat)]
	return ok
}

// List returns the members in sorted order.
func (s CategorySet) List() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// FilterEvents keeps the events whose category is enabled in set.
func FilterEvents(events []Event, set CategorySet) []Event {
	out := make([]Event, 0, len(events))
	for _, ev := range events {
		if set.Has(ev.Category) {
			out = append(out, ev)
		}
	}
	return out
}

// Palette maps categories to CSS colors.
type Palette map[string]string

const PriceColor = "rgba(91,214,255,0.95)"

// DefaultPalette is the built-in dark theme palette.
func DefaultPalette() Palette {
	return Palette{
		CategoryStorage: "#f2c14e",
		CategoryLNG:     "#5bd6ff",
		CategoryWeather: "#8fd18b",
		CategoryOutages: "#ff6b6b",
		CategorySupply:  "#c792ea",
		CategoryMacro:   "#f78c6c",
		CategoryOther:   "#9aa4b2",
		CategoryPrice:   PriceColor,
	}
}

// Color resolves a category color. POLICY resolves through SUPPLY and unknown
// categories fall back to OTHER.
func (p Palette) Color(cat string) string {
	if cat == CategoryPrice {
		if c, ok := p[CategoryPrice]; ok {
			return c
		}
		return PriceColor
	}
	if c, ok := p[NormalizeCategory(cat)]; ok {
		return c
	}
	if c, ok := p[CategoryOther]; ok {
		return c
	}
	return "#cccccc"
}

// Merge returns a copy of p with overrides applied. Keys are upper-cased and
// a POLICY override is stored under SUPPLY.
func (p Palette) Merge(overrides map[string]string) Palette {
	out := make(Palette, len(p)+len(overrides))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range overrides {
		k = strings.ToUpper(strings.TrimSpace(k))
		if k == "" || strings.TrimSpace(v) == "" {
			continue
		}
		if k != CategoryPrice {
			k = NormalizeCategory(k)
		}
		out[k] = strings.TrimSpace(v)
	}
	return out
}
