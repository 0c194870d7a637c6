// Package dashboard wires one chart widget, its event list and a data source
// into a session. Selections made on either side reach the other through the
// chart's listeners and the list's mirror, never through a callback loop.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgnsrekt/gas_chart/internal/chart"
	"github.com/dgnsrekt/gas_chart/internal/ingest"
	"github.com/dgnsrekt/gas_chart/internal/newslist"
	"github.com/dgnsrekt/gas_chart/internal/source"
)

const (
	StatusLoading     = "Loading…"
	StatusReady       = "Ready"
	StatusReingesting = "Re-ingesting…"
)

var (
	ErrUnknownEvent = errors.New("event not in list")
	ErrNoIngester   = errors.New("re-ingest is not configured")
)

// Notification kinds.
const (
	KindSelection    = "selection"
	KindEventClicked = "event_clicked"
	KindData         = "data"
	KindStatus       = "status"
)

// Notification is fanned out to observers on every outward-visible change.
type Notification struct {
	Kind      string           `json:"kind"`
	Session   string           `json:"session"`
	Selection *chart.Selection `json:"selection,omitempty"`
	Origin    chart.Origin     `json:"origin,omitempty"`
	Event     *chart.Event     `json:"event,omitempty"`
	Prices    int              `json:"prices,omitempty"`
	Events    int              `json:"events,omitempty"`
	Status    string           `json:"status,omitempty"`
}

// Observer receives notifications. It runs on the goroutine that caused the
// change and must not block.
type Observer func(Notification)

// Ingester refreshes the backing store.
type Ingester interface {
	Run(ctx context.Context) (ingest.Result, error)
}

// Options configures a Dashboard.
type Options struct {
	ID         string
	Source     source.Source
	Ingester   Ingester
	Chart      chart.Config
	Query      source.Query
	Categories []string
}

// Dashboard is one widget session.
type Dashboard struct {
	id    string
	src   source.Source
	ing   Ingester
	chart *chart.Chart
	list  *newslist.List

	mu         sync.Mutex
	query      source.Query
	prices     []chart.PriceSample
	status     string
	lastIngest *ingest.Result
	updatedAt  time.Time
	observers  []Observer
}

// New builds a session. It does not fetch; call Refresh.
func New(opts Options) (*Dashboard, error) {
	if opts.Source == nil {
		return nil, errors.New("dashboard source is required")
	}
	q, err := opts.Query.Normalize()
	if err != nil {
		return nil, err
	}
	c := chart.New(opts.Chart)
	d := &Dashboard{
		id:     opts.ID,
		src:    opts.Source,
		ing:    opts.Ingester,
		chart:  c,
		list:   newslist.New(c.Location(), opts.Chart.Palette),
		query:  q,
		status: StatusLoading,
	}
	if opts.Categories != nil {
		d.list.SetEnabled(opts.Categories)
	}

	c.OnEventClicked(func(ev chart.Event) {
		d.list.Mirror(ev)
		evCopy := ev
		d.notify(Notification{Kind: KindEventClicked, Event: &evCopy})
	})
	c.OnSelectionChange(func(sel chart.Selection, origin chart.Origin) {
		if origin != chart.OriginList && origin != chart.OriginMarker {
			d.list.MirrorID(sel.SelectedID)
		}
		d.notify(Notification{Kind: KindSelection, Selection: &sel, Origin: origin})
	})
	return d, nil
}

func (d *Dashboard) ID() string           { return d.id }
func (d *Dashboard) Chart() *chart.Chart  { return d.chart }
func (d *Dashboard) List() *newslist.List { return d.list }

// Observe registers an observer for this session.
func (d *Dashboard) Observe(fn Observer) {
	d.mu.Lock()
	d.observers = append(d.observers, fn)
	d.mu.Unlock()
}

// Refresh fetches prices and news concurrently and pushes the filtered set
// to the chart and the list. On failure the chart keeps its previous data.
func (d *Dashboard) Refresh(ctx context.Context) error {
	d.setStatus(StatusLoading)
	q := d.Query()

	var (
		wg                 sync.WaitGroup
		prices             []chart.PriceSample
		events             []chart.Event
		pricesErr, newsErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		prices, pricesErr = d.src.Prices(ctx, q)
	}()
	go func() {
		defer wg.Done()
		events, newsErr = d.src.News(ctx, q)
	}()
	wg.Wait()

	if err := errors.Join(pricesErr, newsErr); err != nil {
		d.setStatus("Error: " + err.Error())
		slog.Warn("dashboard refresh failed", "session", d.id, "range", q.Range, "series", q.Series, "error", err)
		return fmt.Errorf("refresh %s/%s: %w", q.Range, q.Series, err)
	}

	for i := range events {
		events[i].Category = chart.NormalizeCategory(events[i].Category)
	}

	d.mu.Lock()
	d.prices = prices
	d.updatedAt = time.Now()
	d.mu.Unlock()

	d.list.SetEvents(events)
	d.chart.SetData(prices, d.list.Filtered())
	d.setStatus(StatusReady)
	d.notify(Notification{Kind: KindData, Prices: len(prices), Events: len(events)})
	slog.Debug("dashboard refreshed", "session", d.id, "prices", len(prices), "events", len(events))
	return nil
}

// SetRange validates and applies a new range and series, then refreshes.
func (d *Dashboard) SetRange(ctx context.Context, rng, series string) error {
	q, err := source.Query{Range: rng, Series: series}.Normalize()
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.query = q
	d.mu.Unlock()
	return d.Refresh(ctx)
}

// SetData loads prices and events directly, bypassing the source.
func (d *Dashboard) SetData(prices []chart.PriceSample, events []chart.Event) {
	d.mu.Lock()
	d.prices = append([]chart.PriceSample(nil), prices...)
	d.updatedAt = time.Now()
	d.mu.Unlock()

	d.list.SetEvents(events)
	d.chart.SetData(prices, d.list.Filtered())
	d.setStatus(StatusReady)
	d.notify(Notification{Kind: KindData, Prices: len(prices), Events: len(events)})
}

// SetCategories replaces the enabled categories. The list and the chart
// receive the same filtered set.
func (d *Dashboard) SetCategories(cats []string) {
	d.list.SetEnabled(cats)
	d.applyFilter()
}

func (d *Dashboard) EnableAllCategories() {
	d.list.EnableAll()
	d.applyFilter()
}

func (d *Dashboard) ClearCategories() {
	d.list.ClearAll()
	d.applyFilter()
}

func (d *Dashboard) applyFilter() {
	d.mu.Lock()
	prices := d.prices
	d.mu.Unlock()
	d.chart.SetData(prices, d.list.Filtered())
}

// SelectFromList selects a list item and pushes the selection into the chart.
// The returned event carries the URL the caller may open.
func (d *Dashboard) SelectFromList(id string) (chart.Event, error) {
	ev, ok := d.list.Click(id)
	if !ok {
		return chart.Event{}, fmt.Errorf("%w: %s", ErrUnknownEvent, id)
	}
	t := ev.T
	d.chart.SelectEvent(chart.EventID(ev), &t)
	return ev, nil
}

// ClearSelection clears selection and focus on both sides.
func (d *Dashboard) ClearSelection() {
	d.list.MirrorID("")
	d.chart.SelectEvent("", nil)
}

// Reingest runs the ingester and refreshes.
func (d *Dashboard) Reingest(ctx context.Context) (ingest.Result, error) {
	if d.ing == nil {
		return ingest.Result{}, ErrNoIngester
	}
	d.setStatus(StatusReingesting)
	res, err := d.ing.Run(ctx)
	if err != nil {
		d.setStatus("Reingest failed: " + err.Error())
		return res, err
	}
	d.mu.Lock()
	d.lastIngest = &res
	d.mu.Unlock()

	if err := d.Refresh(ctx); err != nil {
		return res, err
	}
	d.setStatus(fmt.Sprintf("Re-ingested (prices: %d, news: %d)", res.PricesIngested, res.NewsIngested))
	return res, nil
}

// Info is a summary of the session.
type Info struct {
	ID         string         `json:"id"`
	Range      string         `json:"range"`
	Series     string         `json:"series"`
	Status     string         `json:"status"`
	Categories []string       `json:"categories"`
	Chart      chart.State    `json:"chart"`
	LastIngest *ingest.Result `json:"last_ingest,omitempty"`
	UpdatedAt  time.Time      `json:"updated_at,omitempty"`
}

func (d *Dashboard) Info() Info {
	d.mu.Lock()
	info := Info{
		ID:         d.id,
		Range:      d.query.Range,
		Series:     d.query.Series,
		Status:     d.status,
		LastIngest: d.lastIngest,
		UpdatedAt:  d.updatedAt,
	}
	d.mu.Unlock()
	info.Categories = d.list.Enabled()
	info.Chart = d.chart.State()
	return info
}

func (d *Dashboard) Query() source.Query {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.query
}

func (d *Dashboard) Status() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

func (d *Dashboard) setStatus(s string) {
	d.mu.Lock()
	changed := d.status != s
	d.status = s
	d.mu.Unlock()
	if changed {
		d.notify(Notification{Kind: KindStatus, Status: s})
	}
}

func (d *Dashboard) notify(n Notification) {
	n.Session = d.id
	d.mu.Lock()
	observers := append([]Observer(nil), d.observers...)
	d.mu.Unlock()
	for _, fn := range observers {
		fn(n)
	}
}
