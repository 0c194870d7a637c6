package chart

import (
	"slices"
	"sync"
	"time"
)

// Config customizes a Chart. Zero values fall back to defaults.
type Config struct {
	Viewport    Viewport
	Padding     *Padding
	Palette     Palette
	Location    *time.Location
	UnitLabel   string
	PriceSource string

	// OnRender is called after every render pass, outside the chart lock.
	OnRender func(RenderStats)
}

// RenderStats describes one completed render pass.
type RenderStats struct {
	Reason   string
	Duration time.Duration
	Markers  int
	Empty    bool
}

// State is a point-in-time copy of the widget for hosts.
type State struct {
	Viewport    Viewport  `json:"viewport"`
	ShowMarkers bool      `json:"show_markers"`
	Samples     int       `json:"samples"`
	Events      int       `json:"events"`
	Selection   Selection `json:"selection"`
	Tooltip     Tooltip   `json:"tooltip"`
	Scene       *Scene    `json:"-"`
}

// Chart is one price chart widget with event markers. Every mutating call
// updates state and then rebuilds the scene from scratch; listeners run after
// the rebuild, outside the lock, so they may call back into the chart.
type Chart struct {
	mu sync.Mutex

	pad         Padding
	palette     Palette
	loc         *time.Location
	unitLabel   string
	priceSource string
	onRender    func(RenderStats)

	vp          Viewport
	prices      []PriceSample
	times       []int64
	events      []Event
	showMarkers bool

	sel SelectionController
	tip TooltipController

	scene  *Scene
	mapper *Mapper
	hits   []markerHandlers

	clickListeners     []func(Event)
	selectionListeners []func(Selection, Origin)
}

// markerHandlers is the per-marker interaction bundle produced by
// Chart.handlersFor; each marker gets its own closures over its own event.
type markerHandlers struct {
	marker Marker
	enter  func()
	move   func(px, py float64)
	click  func() (ev Event, changed bool)
}

func New(cfg Config) *Chart {
	c := &Chart{
		pad:         DefaultPadding,
		palette:     cfg.Palette,
		loc:         cfg.Location,
		unitLabel:   cfg.UnitLabel,
		priceSource: cfg.PriceSource,
		onRender:    cfg.OnRender,
		vp:          cfg.Viewport,
		showMarkers: true,
	}
	if cfg.Padding != nil {
		c.pad = *cfg.Padding
	}
	if c.palette == nil {
		c.palette = DefaultPalette()
	}
	if c.loc == nil {
		c.loc = time.UTC
	}
	if c.unitLabel == "" {
		c.unitLabel = DefaultUnitLabel
	}
	if c.priceSource == "" {
		c.priceSource = DefaultPriceSource
	}
	c.mu.Lock()
	stats := c.renderLocked("init")
	c.mu.Unlock()
	c.emitRender(stats)
	return c
}

// OnEventClicked registers a callback that receives the full record of every
// clicked marker's event.
func (c *Chart) OnEventClicked(fn func(Event)) {
	c.mu.Lock()
	c.clickListeners = append(c.clickListeners, fn)
	c.mu.Unlock()
}

// OnSelectionChange registers a callback for every selection transition.
func (c *Chart) OnSelectionChange(fn func(Selection, Origin)) {
	c.mu.Lock()
	c.selectionListeners = append(c.selectionListeners, fn)
	c.mu.Unlock()
}

// SetData replaces samples and events wholesale. A selection whose identity
// is absent from the new events is cleared.
func (c *Chart) SetData(prices []PriceSample, events []Event) {
	c.mu.Lock()
	c.prices = append([]PriceSample(nil), prices...)
	c.times = sampleTimes(c.prices)
	c.events = append([]Event(nil), events...)
	changed := c.sel.Reconcile(eventIDs(c.events))
	stats := c.renderLocked("data")
	sel := c.sel.State()
	c.mu.Unlock()

	c.emitRender(stats)
	if changed {
		c.emitSelection(sel, OriginReconcile)
	}
}

func (c *Chart) SetShowMarkers(show bool) {
	c.mu.Lock()
	c.showMarkers = show
	stats := c.renderLocked("markers")
	c.mu.Unlock()
	c.emitRender(stats)
}

// Resize sets the container size. Sizes below the minimum render nothing.
func (c *Chart) Resize(width, height int) {
	c.mu.Lock()
	c.vp = Viewport{Width: width, Height: height}
	stats := c.renderLocked("resize")
	c.mu.Unlock()
	c.emitRender(stats)
}

// SelectEvent pushes an external selection into the chart. An empty id
// clears the selection; a nil time clears the focus.
func (c *Chart) SelectEvent(id string, t *int64) {
	c.mu.Lock()
	changed := c.sel.ListClicked(id, t)
	stats := c.renderLocked("select")
	sel := c.sel.State()
	c.mu.Unlock()

	c.emitRender(stats)
	if changed {
		c.emitSelection(sel, OriginList)
	}
}

// FocusTime draws the focus guide at t, or removes it when t is nil.
func (c *Chart) FocusTime(t *int64) {
	c.mu.Lock()
	changed := c.sel.Focus(t)
	stats := c.renderLocked("focus")
	sel := c.sel.State()
	c.mu.Unlock()

	c.emitRender(stats)
	if changed {
		c.emitSelection(sel, OriginFocus)
	}
}

// Click delivers a pointer click at container coordinates (x, y). A hit on
// a marker selects it; anywhere else on a drawn chart clears the selection.
// It returns the clicked event, if any.
func (c *Chart) Click(x, y float64) (Event, bool) {
	c.mu.Lock()
	if c.scene == nil || c.scene.Empty {
		c.mu.Unlock()
		return Event{}, false
	}

	if h, ok := c.hitAt(x, y); ok {
		ev, changed := h.click()
		stats := c.renderLocked("marker-click")
		sel := c.sel.State()
		listeners := slices.Clone(c.clickListeners)
		c.mu.Unlock()

		c.emitRender(stats)
		if changed {
			c.emitSelection(sel, OriginMarker)
		}
		for _, fn := range listeners {
			fn(ev)
		}
		return ev, true
	}

	changed := c.sel.BackgroundClicked()
	stats := c.renderLocked("background-click")
	sel := c.sel.State()
	c.mu.Unlock()

	c.emitRender(stats)
	if changed {
		c.emitSelection(sel, OriginBackground)
	}
	return Event{}, false
}

// PointerMove delivers pointer movement. Over a marker the tooltip shows that
// event; elsewhere it shows the price of the nearest sample by x-position.
func (c *Chart) PointerMove(x, y float64) Tooltip {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mapper == nil {
		return c.tip.State(c.loc)
	}

	if h, ok := c.hitAt(x, y); ok {
		h.enter()
		h.move(x, y)
		return c.tip.State(c.loc)
	}

	idx := Nearest(c.times, c.mapper.TimeAt(x))
	if idx < 0 {
		return c.tip.State(c.loc)
	}
	p := c.prices[idx]
	content := priceTooltip(idx, p, c.priceSource)
	if c.tip.Target() != content.key {
		c.tip.Show(content, c.mapper.ToX(float64(p.T)), c.mapper.ToY(p.P))
	}
	c.tip.Move(x, y, c.vp.Width, c.vp.Height)
	return c.tip.State(c.loc)
}

// PointerLeave hides the tooltip.
func (c *Chart) PointerLeave() {
	c.mu.Lock()
	c.tip.Hide()
	c.mu.Unlock()
}

func (c *Chart) Scene() *Scene {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scene
}

func (c *Chart) Selection() Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel.State()
}

func (c *Chart) Tooltip() Tooltip {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tip.State(c.loc)
}

func (c *Chart) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Viewport:    c.vp,
		ShowMarkers: c.showMarkers,
		Samples:     len(c.prices),
		Events:      len(c.events),
		Selection:   c.sel.State(),
		Tooltip:     c.tip.State(c.loc),
		Scene:       c.scene,
	}
}

func (c *Chart) Location() *time.Location { return c.loc }

// renderLocked rebuilds the scene and the marker hit regions. The tooltip is
// hidden by every full render.
func (c *Chart) renderLocked(reason string) RenderStats {
	start := time.Now()
	c.tip.Hide()
	c.scene = Build(RenderInput{
		Viewport:    c.vp,
		Padding:     c.pad,
		Prices:      c.prices,
		Events:      c.events,
		Selection:   c.sel.State(),
		ShowMarkers: c.showMarkers,
		Palette:     c.palette,
		Location:    c.loc,
		UnitLabel:   c.unitLabel,
	})

	c.mapper = nil
	c.hits = c.hits[:0]
	if !c.scene.Empty {
		m := NewMapper(c.vp, c.pad, *c.scene.Domain)
		c.mapper = &m
		for _, mk := range c.scene.Markers {
			c.hits = append(c.hits, c.handlersFor(mk))
		}
	}
	return RenderStats{
		Reason:   reason,
		Duration: time.Since(start),
		Markers:  len(c.scene.Markers),
		Empty:    c.scene.Empty,
	}
}

func (c *Chart) handlersFor(mk Marker) markerHandlers {
	id, ev := mk.ID, mk.Event
	cx, cy := mk.CX, mk.CY
	content := eventTooltip(id, ev)
	return markerHandlers{
		marker: mk,
		enter: func() {
			if c.tip.Target() != content.key {
				c.tip.Show(content, cx, cy)
			}
		},
		move: func(px, py float64) {
			c.tip.Move(px, py, c.vp.Width, c.vp.Height)
		},
		click: func() (Event, bool) {
			return ev, c.sel.MarkerClicked(id, ev.T)
		},
	}
}

// hitAt returns the topmost marker under (x, y).
func (c *Chart) hitAt(x, y float64) (markerHandlers, bool) {
	for i := len(c.hits) - 1; i >= 0; i-- {
		if c.hits[i].marker.Contains(x, y) {
			return c.hits[i], true
		}
	}
	return markerHandlers{}, false
}

func (c *Chart) emitRender(stats RenderStats) {
	if c.onRender != nil {
		c.onRender(stats)
	}
}

func (c *Chart) emitSelection(sel Selection, origin Origin) {
	c.mu.Lock()
	listeners := slices.Clone(c.selectionListeners)
	c.mu.Unlock()
	for _, fn := range listeners {
		fn(sel, origin)
	}
}

func eventIDs(events []Event) map[string]struct{} {
	ids := make(map[string]struct{}, len(events))
	for _, ev := range events {
		ids[EventID(ev)] = struct{}{}
	}
	return ids
}
