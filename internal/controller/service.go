package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgnsrekt/gas_chart/internal/chart"
	"github.com/dgnsrekt/gas_chart/internal/dashboard"
	"github.com/dgnsrekt/gas_chart/internal/ingest"
	"github.com/dgnsrekt/gas_chart/internal/newslist"
	"github.com/dgnsrekt/gas_chart/internal/snapshot"
	"github.com/dgnsrekt/gas_chart/internal/source"
)

const (
	DefaultWidth  = 960
	DefaultHeight = 420
	maxDimension  = 8192
)

// Rasterizer converts scene SVG to PNG.
type Rasterizer interface {
	PNG(ctx context.Context, svg []byte, width, height int) ([]byte, error)
}

// Options wires the service's collaborators. Source is required.
type Options struct {
	Source    source.Source
	Ingester  dashboard.Ingester
	Snapshots *snapshot.Store
	Raster    Rasterizer

	// Chart holds defaults applied to every new session's widget.
	Chart chart.Config

	// Observers are attached to every session.
	Observers []dashboard.Observer

	// OnSessionCount is called with +1 or -1 as sessions open and close.
	OnSessionCount func(delta int)
}

// Service owns the dashboard sessions and validates every request before it
// reaches a chart.
type Service struct {
	opts Options

	mu       sync.RWMutex
	sessions map[string]*dashboard.Dashboard
}

func NewService(opts Options) *Service {
	return &Service{opts: opts, sessions: make(map[string]*dashboard.Dashboard)}
}

func (s *Service) requireNonEmpty(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return &CodedError{Code: CodeValidation, Message: fieldName + " is required"}
	}
	return nil
}

func (s *Service) session(id string) (*dashboard.Dashboard, error) {
	if err := s.requireNonEmpty(id, "session_id"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	d, ok := s.sessions[strings.TrimSpace(id)]
	s.mu.RUnlock()
	if !ok {
		return nil, newError(CodeSessionNotFound, "session not found: "+id, nil)
	}
	return d, nil
}

// --- Session lifecycle ---

// CreateSessionInput configures a new session.
type CreateSessionInput struct {
	Width       int
	Height      int
	Range       string
	Series      string
	Categories  []string
	ShowMarkers *bool
	Refresh     bool
}

func (s *Service) CreateSession(ctx context.Context, in CreateSessionInput) (dashboard.Info, error) {
	if s.opts.Source == nil {
		return dashboard.Info{}, newError(CodeSourceUnavailable, "no data source configured", nil)
	}
	w, h := in.Width, in.Height
	if w == 0 && h == 0 {
		w, h = DefaultWidth, DefaultHeight
	}
	if err := validateSize(w, h); err != nil {
		return dashboard.Info{}, err
	}
	q, err := source.Query{Range: in.Range, Series: in.Series}.Normalize()
	if err != nil {
		return dashboard.Info{}, validationError("%v", err)
	}
	var cats []string
	if in.Categories != nil {
		if cats, err = normalizeCategories(in.Categories); err != nil {
			return dashboard.Info{}, err
		}
	}

	cfg := s.opts.Chart
	cfg.Viewport = chart.Viewport{Width: w, Height: h}
	id := uuid.New().String()
	d, err := dashboard.New(dashboard.Options{
		ID:         id,
		Source:     s.opts.Source,
		Ingester:   s.opts.Ingester,
		Chart:      cfg,
		Query:      q,
		Categories: cats,
	})
	if err != nil {
		return dashboard.Info{}, validationError("%v", err)
	}
	for _, obs := range s.opts.Observers {
		d.Observe(obs)
	}
	if in.ShowMarkers != nil {
		d.Chart().SetShowMarkers(*in.ShowMarkers)
	}

	s.mu.Lock()
	s.sessions[id] = d
	s.mu.Unlock()
	if s.opts.OnSessionCount != nil {
		s.opts.OnSessionCount(1)
	}
	slog.Info("session created", "session", id, "range", q.Range, "series", q.Series, "width", w, "height", h)

	if in.Refresh {
		if err := d.Refresh(ctx); err != nil {
			return d.Info(), newError(CodeSourceUnavailable, "initial refresh failed", err)
		}
	}
	return d.Info(), nil
}

// ListSessions returns every session ordered by id.
func (s *Service) ListSessions(context.Context) []dashboard.Info {
	s.mu.RLock()
	ds := make([]*dashboard.Dashboard, 0, len(s.sessions))
	for _, d := range s.sessions {
		ds = append(ds, d)
	}
	s.mu.RUnlock()

	out := make([]dashboard.Info, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Service) GetSession(_ context.Context, id string) (dashboard.Info, error) {
	d, err := s.session(id)
	if err != nil {
		return dashboard.Info{}, err
	}
	return d.Info(), nil
}

// HasSession reports whether id names an open session.
func (s *Service) HasSession(id string) bool {
	_, err := s.session(id)
	return err == nil
}

func (s *Service) DeleteSession(_ context.Context, id string) error {
	if err := s.requireNonEmpty(id, "session_id"); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return newError(CodeSessionNotFound, "session not found: "+id, nil)
	}
	if s.opts.OnSessionCount != nil {
		s.opts.OnSessionCount(-1)
	}
	slog.Info("session deleted", "session", id)
	return nil
}

// --- Data ---

func (s *Service) Refresh(ctx context.Context, id string) (dashboard.Info, error) {
	d, err := s.session(id)
	if err != nil {
		return dashboard.Info{}, err
	}
	if err := d.Refresh(ctx); err != nil {
		return d.Info(), newError(CodeSourceUnavailable, "refresh failed", err)
	}
	return d.Info(), nil
}

func (s *Service) SetRange(ctx context.Context, id, rng, series string) (dashboard.Info, error) {
	d, err := s.session(id)
	if err != nil {
		return dashboard.Info{}, err
	}
	if _, err := (source.Query{Range: rng, Series: series}).Normalize(); err != nil {
		return dashboard.Info{}, validationError("%v", err)
	}
	if err := d.SetRange(ctx, rng, series); err != nil {
		return d.Info(), newError(CodeSourceUnavailable, "refresh failed", err)
	}
	return d.Info(), nil
}

// SetData loads caller-supplied data into a session, bypassing the source.
// Prices must be finite and sorted ascending by t; every timestamp must lie
// within maxDataAge of now.
func (s *Service) SetData(_ context.Context, id string, prices []chart.PriceSample, events []chart.Event) (dashboard.Info, error) {
	d, err := s.session(id)
	if err != nil {
		return dashboard.Info{}, err
	}
	if err := validateData(time.Now(), prices, events); err != nil {
		return dashboard.Info{}, err
	}
	d.SetData(prices, events)
	return d.Info(), nil
}

// maxDataAge bounds caller-supplied timestamps to ±100 years around now.
const maxDataAge = 100 * 8766 * time.Hour

func validateData(now time.Time, prices []chart.PriceSample, events []chart.Event) error {
	lo := now.Add(-maxDataAge).UnixMilli()
	hi := now.Add(maxDataAge).UnixMilli()
	for i, p := range prices {
		if math.IsNaN(p.P) || math.IsInf(p.P, 0) {
			return validationError("prices[%d].p must be finite", i)
		}
		if p.T < lo || p.T > hi {
			return validationError("prices[%d].t is outside ±100 years of now", i)
		}
		if i > 0 && p.T < prices[i-1].T {
			return validationError("prices must be sorted ascending by t")
		}
	}
	for i, ev := range events {
		if ev.T < lo || ev.T > hi {
			return validationError("events[%d].t is outside ±100 years of now", i)
		}
	}
	return nil
}

func (s *Service) Reingest(ctx context.Context, id string) (ingest.Result, error) {
	d, err := s.session(id)
	if err != nil {
		return ingest.Result{}, err
	}
	res, err := d.Reingest(ctx)
	if errors.Is(err, dashboard.ErrNoIngester) {
		return res, validationError("re-ingest is not configured")
	}
	if err != nil {
		return res, newError(CodeSourceUnavailable, "re-ingest failed", err)
	}
	return res, nil
}

// ReingestAll runs the ingester once and refreshes every session.
func (s *Service) ReingestAll(ctx context.Context) (ingest.Result, error) {
	if s.opts.Ingester == nil {
		return ingest.Result{}, validationError("re-ingest is not configured")
	}
	res, err := s.opts.Ingester.Run(ctx)
	if err != nil {
		return res, newError(CodeSourceUnavailable, "re-ingest failed", err)
	}
	s.mu.RLock()
	ds := make([]*dashboard.Dashboard, 0, len(s.sessions))
	for _, d := range s.sessions {
		ds = append(ds, d)
	}
	s.mu.RUnlock()
	for _, d := range ds {
		if err := d.Refresh(ctx); err != nil {
			slog.Warn("session refresh after re-ingest failed", "session", d.ID(), "error", err)
		}
	}
	return res, nil
}

// Prices reads the data source directly.
func (s *Service) Prices(ctx context.Context, rng, series string) ([]chart.PriceSample, error) {
	q, err := s.query(rng, series, source.SeriesHenryHub)
	if err != nil {
		return nil, err
	}
	out, err := s.opts.Source.Prices(ctx, q)
	if err != nil {
		return nil, newError(CodeSourceUnavailable, "prices unavailable", err)
	}
	if out == nil {
		out = []chart.PriceSample{}
	}
	return out, nil
}

// News reads the data source directly.
func (s *Service) News(ctx context.Context, rng, series string) ([]chart.Event, error) {
	q, err := s.query(rng, series, source.SeriesNGFutures)
	if err != nil {
		return nil, err
	}
	out, err := s.opts.Source.News(ctx, q)
	if err != nil {
		return nil, newError(CodeSourceUnavailable, "news unavailable", err)
	}
	if out == nil {
		out = []chart.Event{}
	}
	return out, nil
}

func (s *Service) query(rng, series, defaultSeries string) (source.Query, error) {
	if s.opts.Source == nil {
		return source.Query{}, newError(CodeSourceUnavailable, "no data source configured", nil)
	}
	if strings.TrimSpace(series) == "" {
		series = defaultSeries
	}
	q, err := source.Query{Range: rng, Series: series}.Normalize()
	if err != nil {
		return q, validationError("%v", err)
	}
	return q, nil
}

// --- Widget controls ---

func (s *Service) SetShowMarkers(_ context.Context, id string, show bool) (dashboard.Info, error) {
	d, err := s.session(id)
	if err != nil {
		return dashboard.Info{}, err
	}
	d.Chart().SetShowMarkers(show)
	return d.Info(), nil
}

func (s *Service) Resize(_ context.Context, id string, width, height int) (dashboard.Info, error) {
	d, err := s.session(id)
	if err != nil {
		return dashboard.Info{}, err
	}
	if err := validateSize(width, height); err != nil {
		return dashboard.Info{}, err
	}
	d.Chart().Resize(width, height)
	return d.Info(), nil
}

// SetCategories applies a category filter. preset "all" or "none" takes
// precedence over an explicit list.
func (s *Service) SetCategories(_ context.Context, id string, cats []string, preset string) (dashboard.Info, error) {
	d, err := s.session(id)
	if err != nil {
		return dashboard.Info{}, err
	}
	switch strings.ToLower(strings.TrimSpace(preset)) {
	case "all":
		d.EnableAllCategories()
	case "none":
		d.ClearCategories()
	case "":
		norm, err := normalizeCategories(cats)
		if err != nil {
			return dashboard.Info{}, err
		}
		d.SetCategories(norm)
	default:
		return dashboard.Info{}, validationError("preset must be \"all\" or \"none\"")
	}
	return d.Info(), nil
}

// SelectEvent selects a list item by identity and mirrors it into the chart.
func (s *Service) SelectEvent(_ context.Context, id, eventID string) (chart.Event, chart.Selection, error) {
	d, err := s.session(id)
	if err != nil {
		return chart.Event{}, chart.Selection{}, err
	}
	if err := s.requireNonEmpty(eventID, "event_id"); err != nil {
		return chart.Event{}, chart.Selection{}, err
	}
	ev, err := d.SelectFromList(eventID)
	if err != nil {
		return chart.Event{}, chart.Selection{}, newError(CodeEventNotFound, "event not visible in list: "+eventID, err)
	}
	return ev, d.Chart().Selection(), nil
}

func (s *Service) Focus(_ context.Context, id string, t *int64) (chart.Selection, error) {
	d, err := s.session(id)
	if err != nil {
		return chart.Selection{}, err
	}
	d.Chart().FocusTime(t)
	return d.Chart().Selection(), nil
}

func (s *Service) ClearSelection(_ context.Context, id string) (chart.Selection, error) {
	d, err := s.session(id)
	if err != nil {
		return chart.Selection{}, err
	}
	d.ClearSelection()
	return d.Chart().Selection(), nil
}

// ClickResult is the outcome of a pointer click.
type ClickResult struct {
	Hit       bool            `json:"hit"`
	Event     *chart.Event    `json:"event,omitempty"`
	Selection chart.Selection `json:"selection"`
}

func (s *Service) PointerClick(_ context.Context, id string, x, y float64) (ClickResult, error) {
	d, err := s.session(id)
	if err != nil {
		return ClickResult{}, err
	}
	if err := validatePoint(x, y); err != nil {
		return ClickResult{}, err
	}
	ev, hit := d.Chart().Click(x, y)
	res := ClickResult{Hit: hit, Selection: d.Chart().Selection()}
	if hit {
		res.Event = &ev
	}
	return res, nil
}

func (s *Service) PointerMove(_ context.Context, id string, x, y float64) (chart.Tooltip, error) {
	d, err := s.session(id)
	if err != nil {
		return chart.Tooltip{}, err
	}
	if err := validatePoint(x, y); err != nil {
		return chart.Tooltip{}, err
	}
	return d.Chart().PointerMove(x, y), nil
}

func (s *Service) PointerLeave(_ context.Context, id string) error {
	d, err := s.session(id)
	if err != nil {
		return err
	}
	d.Chart().PointerLeave()
	return nil
}

// --- Views ---

func (s *Service) Scene(_ context.Context, id string) (*chart.Scene, error) {
	d, err := s.session(id)
	if err != nil {
		return nil, err
	}
	return d.Chart().Scene(), nil
}

func (s *Service) SceneSVG(_ context.Context, id string) ([]byte, error) {
	d, err := s.session(id)
	if err != nil {
		return nil, err
	}
	return []byte(d.Chart().Scene().SVG()), nil
}

func (s *Service) Tooltip(_ context.Context, id string) (chart.Tooltip, error) {
	d, err := s.session(id)
	if err != nil {
		return chart.Tooltip{}, err
	}
	return d.Chart().Tooltip(), nil
}

func (s *Service) NewsItems(_ context.Context, id string) ([]newslist.Item, error) {
	d, err := s.session(id)
	if err != nil {
		return nil, err
	}
	return d.List().Items(), nil
}

// --- Snapshot methods ---

func (s *Service) TakeSnapshot(ctx context.Context, id, format, notes string) (snapshot.Meta, error) {
	d, err := s.session(id)
	if err != nil {
		return snapshot.Meta{}, err
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = snapshot.FormatSVG
	}
	if format != snapshot.FormatSVG && format != snapshot.FormatPNG {
		return snapshot.Meta{}, validationError("format must be \"svg\" or \"png\"")
	}
	if s.opts.Snapshots == nil {
		return snapshot.Meta{}, validationError("snapshots are not configured")
	}

	scene := d.Chart().Scene()
	sel := d.Chart().Selection()
	info := d.Info()
	image := []byte(scene.SVG())
	if format == snapshot.FormatPNG {
		if s.opts.Raster == nil {
			return snapshot.Meta{}, newError(CodeRasterUnavailable, "png snapshots need a browser", nil)
		}
		png, err := s.opts.Raster.PNG(ctx, image, scene.Width, scene.Height)
		if err != nil {
			return snapshot.Meta{}, newError(CodeRasterUnavailable, "rasterize scene", err)
		}
		image = png
	}

	meta := snapshot.Meta{
		ID:         uuid.New().String(),
		SessionID:  d.ID(),
		Format:     format,
		Width:      scene.Width,
		Height:     scene.Height,
		CreatedAt:  time.Now().UTC(),
		Range:      info.Range,
		Series:     info.Series,
		Markers:    len(scene.Markers),
		SelectedID: sel.SelectedID,
		Notes:      strings.TrimSpace(notes),
	}
	if err := s.opts.Snapshots.Save(meta, image); err != nil {
		return snapshot.Meta{}, fmt.Errorf("save snapshot: %w", err)
	}
	meta.SizeBytes = len(image)
	return meta, nil
}

func (s *Service) ListSnapshots(_ context.Context, session string) ([]snapshot.Meta, error) {
	if s.opts.Snapshots == nil {
		return []snapshot.Meta{}, nil
	}
	return s.opts.Snapshots.List(strings.TrimSpace(session))
}

func (s *Service) GetSnapshot(_ context.Context, id string) (snapshot.Meta, error) {
	if err := s.requireNonEmpty(id, "snapshot_id"); err != nil {
		return snapshot.Meta{}, err
	}
	if s.opts.Snapshots == nil {
		return snapshot.Meta{}, newError(CodeSnapshotNotFound, "snapshots are not configured", nil)
	}
	meta, err := s.opts.Snapshots.Get(strings.TrimSpace(id))
	if err != nil {
		return snapshot.Meta{}, snapshotError(err)
	}
	return meta, nil
}

func (s *Service) ReadSnapshotImage(_ context.Context, id string) ([]byte, string, error) {
	if err := s.requireNonEmpty(id, "snapshot_id"); err != nil {
		return nil, "", err
	}
	if s.opts.Snapshots == nil {
		return nil, "", newError(CodeSnapshotNotFound, "snapshots are not configured", nil)
	}
	data, format, err := s.opts.Snapshots.ReadImage(strings.TrimSpace(id))
	if err != nil {
		return nil, "", snapshotError(err)
	}
	return data, format, nil
}

func (s *Service) DeleteSnapshot(_ context.Context, id string) error {
	if err := s.requireNonEmpty(id, "snapshot_id"); err != nil {
		return err
	}
	if s.opts.Snapshots == nil {
		return newError(CodeSnapshotNotFound, "snapshots are not configured", nil)
	}
	if err := s.opts.Snapshots.Delete(strings.TrimSpace(id)); err != nil {
		return snapshotError(err)
	}
	return nil
}

func snapshotError(err error) error {
	if errors.Is(err, snapshot.ErrNotFound) {
		return newError(CodeSnapshotNotFound, err.Error(), nil)
	}
	return err
}

// --- validation helpers ---

func validateSize(w, h int) error {
	if w < 0 || h < 0 || w > maxDimension || h > maxDimension {
		return validationError("width and height must be between 0 and %d", maxDimension)
	}
	return nil
}

func validatePoint(x, y float64) error {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return validationError("x and y must be finite")
	}
	return nil
}

func normalizeCategories(cats []string) ([]string, error) {
	out := make([]string, 0, len(cats))
	for _, c := range cats {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if !knownCategory(c) {
			return nil, validationError("unknown category %q", c)
		}
		out = append(out, c)
	}
	return out, nil
}

func knownCategory(c string) bool {
	if c == chart.CategoryPolicy {
		return true
	}
	for _, k := range chart.Categories {
		if c == k {
			return true
		}
	}
	return false
}
