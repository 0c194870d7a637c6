// Package newslist holds the textual event list that sits beside the chart.
// It filters by category with the same rules as the chart and mirrors the
// chart's selection by event identity.
package newslist

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dgnsrekt/gas_chart/internal/chart"
)

const untitled = "(untitled)"

// Item is one row of the rendered list.
type Item struct {
	ID        string `json:"id"`
	T         int64  `json:"t"`
	Category  string `json:"category"`
	Title     string `json:"title"`
	Source    string `json:"source"`
	URL       string `json:"url,omitempty"`
	TimeLabel string `json:"time_label"`
	DateLabel string `json:"date_label"`
	Color     string `json:"color"`
	Selected  bool   `json:"selected"`
}

type entry struct {
	id    string
	ev    chart.Event
	time  string
	date  string
	order int
}

// List is safe for concurrent use.
type List struct {
	mu       sync.RWMutex
	loc      *time.Location
	palette  chart.Palette
	entries  []entry
	enabled  chart.CategorySet
	selected string
}

func New(loc *time.Location, palette chart.Palette) *List {
	if loc == nil {
		loc = time.UTC
	}
	if palette == nil {
		palette = chart.DefaultPalette()
	}
	return &List{loc: loc, palette: palette, enabled: chart.AllCategories()}
}

// SetEvents replaces the list contents. Events are cloned, their categories
// normalized, and display labels cached. Newest events sort first.
func (l *List) SetEvents(events []chart.Event) {
	entries := make([]entry, 0, len(events))
	for i, ev := range events {
		ev.Category = chart.NormalizeCategory(ev.Category)
		entries = append(entries, entry{
			id:    chart.EventID(ev),
			ev:    ev,
			time:  chart.FormatTimestamp(ev.T, l.loc),
			date:  chart.FormatShortDate(ev.T, l.loc),
			order: i,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].ev.T > entries[j].ev.T })

	l.mu.Lock()
	l.entries = entries
	l.reconcileLocked()
	l.mu.Unlock()
}

// SetEnabled replaces the enabled category set.
func (l *List) SetEnabled(cats []string) {
	l.mu.Lock()
	l.enabled = chart.NewCategorySet(cats...)
	l.reconcileLocked()
	l.mu.Unlock()
}

func (l *List) EnableAll() {
	l.mu.Lock()
	l.enabled = chart.AllCategories()
	l.mu.Unlock()
}

func (l *List) ClearAll() {
	l.mu.Lock()
	l.enabled = chart.NewCategorySet()
	l.selected = ""
	l.mu.Unlock()
}

// Enabled returns the sorted enabled categories, aliases included.
func (l *List) Enabled() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.enabled.List()
}

// Filtered returns the events passing the enabled set, in list order. The
// chart receives exactly this set.
func (l *List) Filtered() []chart.Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]chart.Event, 0, len(l.entries))
	for _, e := range l.entries {
		if l.enabled.Has(e.ev.Category) {
			out = append(out, e.ev)
		}
	}
	return out
}

// All returns every loaded event regardless of filters.
func (l *List) All() []chart.Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]chart.Event, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.ev
	}
	return out
}

// Items renders the visible rows.
func (l *List) Items() []Item {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Item, 0, len(l.entries))
	for _, e := range l.entries {
		if !l.enabled.Has(e.ev.Category) {
			continue
		}
		title := strings.TrimSpace(e.ev.Title)
		if title == "" {
			title = untitled
		}
		out = append(out, Item{
			ID:        e.id,
			T:         e.ev.T,
			Category:  e.ev.Category,
			Title:     title,
			Source:    e.ev.Source,
			URL:       e.ev.URL,
			TimeLabel: e.time,
			DateLabel: e.date,
			Color:     l.palette.Color(e.ev.Category),
			Selected:  e.id == l.selected,
		})
	}
	return out
}

// Click selects the visible item with the given identity and returns its
// event. Unknown or filtered-out ids report false and leave state unchanged.
func (l *List) Click(id string) (chart.Event, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.id == id && l.enabled.Has(e.ev.Category) {
			l.selected = id
			return e.ev, true
		}
	}
	return chart.Event{}, false
}

// Mirror applies a selection that originated on the chart. It only moves the
// highlight; it never calls back into the chart.
func (l *List) Mirror(ev chart.Event) {
	l.MirrorID(chart.EventID(ev))
}

// MirrorID is Mirror by identity; an empty id clears the highlight.
func (l *List) MirrorID(id string) {
	l.mu.Lock()
	l.selected = id
	l.reconcileLocked()
	l.mu.Unlock()
}

func (l *List) Selected() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.selected
}

func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

func (l *List) reconcileLocked() {
	if l.selected == "" {
		return
	}
	for _, e := range l.entries {
		if e.id == l.selected && l.enabled.Has(e.ev.Category) {
			return
		}
	}
	l.selected = ""
}
