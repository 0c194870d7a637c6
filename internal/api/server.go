package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgnsrekt/gas_chart/internal/chart"
	"github.com/dgnsrekt/gas_chart/internal/controller"
	"github.com/dgnsrekt/gas_chart/internal/dashboard"
	"github.com/dgnsrekt/gas_chart/internal/ingest"
	"github.com/dgnsrekt/gas_chart/internal/newslist"
	"github.com/dgnsrekt/gas_chart/internal/snapshot"
)

type Service interface {
	CreateSession(ctx context.Context, in controller.CreateSessionInput) (dashboard.Info, error)
	ListSessions(ctx context.Context) []dashboard.Info
	GetSession(ctx context.Context, id string) (dashboard.Info, error)
	DeleteSession(ctx context.Context, id string) error
	Refresh(ctx context.Context, id string) (dashboard.Info, error)
	SetRange(ctx context.Context, id, rng, series string) (dashboard.Info, error)
	SetData(ctx context.Context, id string, prices []chart.PriceSample, events []chart.Event) (dashboard.Info, error)
	SetShowMarkers(ctx context.Context, id string, show bool) (dashboard.Info, error)
	Resize(ctx context.Context, id string, width, height int) (dashboard.Info, error)
	SetCategories(ctx context.Context, id string, cats []string, preset string) (dashboard.Info, error)
	SelectEvent(ctx context.Context, id, eventID string) (chart.Event, chart.Selection, error)
	Focus(ctx context.Context, id string, t *int64) (chart.Selection, error)
	ClearSelection(ctx context.Context, id string) (chart.Selection, error)
	PointerClick(ctx context.Context, id string, x, y float64) (controller.ClickResult, error)
	PointerMove(ctx context.Context, id string, x, y float64) (chart.Tooltip, error)
	PointerLeave(ctx context.Context, id string) error
	Scene(ctx context.Context, id string) (*chart.Scene, error)
	SceneSVG(ctx context.Context, id string) ([]byte, error)
	Tooltip(ctx context.Context, id string) (chart.Tooltip, error)
	NewsItems(ctx context.Context, id string) ([]newslist.Item, error)
	Reingest(ctx context.Context, id string) (ingest.Result, error)
	ReingestAll(ctx context.Context) (ingest.Result, error)
	Prices(ctx context.Context, rng, series string) ([]chart.PriceSample, error)
	News(ctx context.Context, rng, series string) ([]chart.Event, error)
	TakeSnapshot(ctx context.Context, id, format, notes string) (snapshot.Meta, error)
	ListSnapshots(ctx context.Context, session string) ([]snapshot.Meta, error)
	GetSnapshot(ctx context.Context, id string) (snapshot.Meta, error)
	ReadSnapshotImage(ctx context.Context, id string) ([]byte, string, error)
	DeleteSnapshot(ctx context.Context, id string) error
}

// Options mounts optional plain-HTTP handlers next to the huma operations.
// Nil handlers are skipped.
type Options struct {
	Metrics       http.Handler
	Events        http.Handler
	SessionSocket http.Handler
}

type sessionIDInput struct {
	SessionID string `path:"session_id"`
}

type sessionOutput struct {
	Body dashboard.Info
}

type selectionOutput struct {
	Body struct {
		SessionID string          `json:"session_id"`
		Selection chart.Selection `json:"selection"`
	}
}

func NewServer(svc Service, opts Options) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)

	cfg := huma.DefaultConfig("Gas Chart API", "1.0.0")
	cfg.DocsPath = ""
	api := humachi.New(router, cfg)

	router.Get("/docs", servePage("docs", docsHTML))
	router.Get("/docs/sync", servePage("sync", syncDocsHTML))
	if opts.Metrics != nil {
		router.Handle("/metrics", opts.Metrics)
	}
	if opts.Events != nil {
		router.Handle("/api/v1/events", opts.Events)
	}
	if opts.SessionSocket != nil {
		router.Handle("/api/v1/sessions/{session_id}/ws", opts.SessionSocket)
	}

	registerSessionHandlers(api, svc)
	registerInteractionHandlers(api, svc)
	registerSnapshotHandlers(api, svc)
	registerDataHandlers(api, svc)

	return router
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var coded *controller.CodedError
	if errors.As(err, &coded) {
		switch coded.Code {
		case controller.CodeValidation:
			return huma.Error400BadRequest(coded.Message)
		case controller.CodeSessionNotFound, controller.CodeEventNotFound, controller.CodeSnapshotNotFound:
			return huma.Error404NotFound(coded.Message)
		case controller.CodeSourceUnavailable, controller.CodeRasterUnavailable:
			msg := coded.Message
			if coded.Cause != nil {
				msg = fmt.Sprintf("%s: %v", coded.Message, coded.Cause)
			}
			return huma.Error502BadGateway(msg)
		default:
			return huma.Error500InternalServerError(fmt.Sprintf("%s: %s", coded.Code, coded.Message))
		}
	}
	return huma.Error500InternalServerError(err.Error())
}
