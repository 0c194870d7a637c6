package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dgnsrekt/gas_chart/internal/chart"
	"github.com/dgnsrekt/gas_chart/internal/controller"
	"github.com/dgnsrekt/gas_chart/internal/dashboard"
)

func registerSessionHandlers(api huma.API, svc Service) {
	type healthOutput struct {
		Body struct {
			Status string `json:"status"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "health", Method: http.MethodGet, Path: "/health", Summary: "Health check", Tags: []string{"Health"}},
		func(ctx context.Context, input *struct{}) (*healthOutput, error) {
			out := &healthOutput{}
			out.Body.Status = "ok"
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "create-session", Method: http.MethodPost, Path: "/api/v1/sessions", Summary: "Create a chart session", Tags: []string{"Sessions"}, DefaultStatus: http.StatusCreated},
		func(ctx context.Context, input *struct {
			Body struct {
				Width       int      `json:"width,omitempty" doc:"Viewport width in pixels" example:"960"`
				Height      int      `json:"height,omitempty" doc:"Viewport height in pixels" example:"420"`
				Range       string   `json:"range,omitempty" doc:"Time range" enum:"1D,5D,1M,3M,6M,1Y"`
				Series      string   `json:"series,omitempty" doc:"Price series" enum:"HENRY_HUB_SPOT,NG_FUTURES"`
				Categories  []string `json:"categories,omitempty" doc:"Enabled categories; omit for all"`
				ShowMarkers *bool    `json:"show_markers,omitempty" doc:"Draw event markers (default true)"`
				Refresh     *bool    `json:"refresh,omitempty" doc:"Fetch data immediately (default true)"`
			}
		}) (*sessionOutput, error) {
			refresh := input.Body.Refresh == nil || *input.Body.Refresh
			info, err := svc.CreateSession(ctx, controller.CreateSessionInput{
				Width:       input.Body.Width,
				Height:      input.Body.Height,
				Range:       input.Body.Range,
				Series:      input.Body.Series,
				Categories:  input.Body.Categories,
				ShowMarkers: input.Body.ShowMarkers,
				Refresh:     refresh,
			})
			if err != nil {
				return nil, mapErr(err)
			}
			return &sessionOutput{Body: info}, nil
		})

	type listSessionsOutput struct {
		Body struct {
			Sessions []dashboard.Info `json:"sessions"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-sessions", Method: http.MethodGet, Path: "/api/v1/sessions", Summary: "List chart sessions", Tags: []string{"Sessions"}},
		func(ctx context.Context, input *struct{}) (*listSessionsOutput, error) {
			out := &listSessionsOutput{}
			out.Body.Sessions = svc.ListSessions(ctx)
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "get-session", Method: http.MethodGet, Path: "/api/v1/sessions/{session_id}", Summary: "Get session state", Tags: []string{"Sessions"}},
		func(ctx context.Context, input *sessionIDInput) (*sessionOutput, error) {
			info, err := svc.GetSession(ctx, input.SessionID)
			if err != nil {
				return nil, mapErr(err)
			}
			return &sessionOutput{Body: info}, nil
		})

	type deleteSessionOutput struct {
		Body struct {
			Status string `json:"status"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "delete-session", Method: http.MethodDelete, Path: "/api/v1/sessions/{session_id}", Summary: "Delete a session", Tags: []string{"Sessions"}},
		func(ctx context.Context, input *sessionIDInput) (*deleteSessionOutput, error) {
			if err := svc.DeleteSession(ctx, input.SessionID); err != nil {
				return nil, mapErr(err)
			}
			out := &deleteSessionOutput{}
			out.Body.Status = "deleted"
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "refresh-session", Method: http.MethodPost, Path: "/api/v1/sessions/{session_id}/refresh", Summary: "Re-fetch prices and news", Tags: []string{"Data"}},
		func(ctx context.Context, input *sessionIDInput) (*sessionOutput, error) {
			info, err := svc.Refresh(ctx, input.SessionID)
			if err != nil {
				return nil, mapErr(err)
			}
			return &sessionOutput{Body: info}, nil
		})

	huma.Register(api, huma.Operation{OperationID: "set-range", Method: http.MethodPut, Path: "/api/v1/sessions/{session_id}/range", Summary: "Change range and series", Tags: []string{"Data"}},
		func(ctx context.Context, input *struct {
			SessionID string `path:"session_id"`
			Body      struct {
				Range  string `json:"range" doc:"Time range" enum:"1D,5D,1M,3M,6M,1Y"`
				Series string `json:"series,omitempty" doc:"Price series" enum:"HENRY_HUB_SPOT,NG_FUTURES"`
			}
		}) (*sessionOutput, error) {
			info, err := svc.SetRange(ctx, input.SessionID, input.Body.Range, input.Body.Series)
			if err != nil {
				return nil, mapErr(err)
			}
			return &sessionOutput{Body: info}, nil
		})

	huma.Register(api, huma.Operation{OperationID: "set-data", Method: http.MethodPost, Path: "/api/v1/sessions/{session_id}/data", Summary: "Load prices and events directly", Tags: []string{"Data"}},
		func(ctx context.Context, input *struct {
			SessionID string `path:"session_id"`
			Body      struct {
				Prices []chart.PriceSample `json:"prices"`
				Events []chart.Event       `json:"events,omitempty"`
			}
		}) (*sessionOutput, error) {
			info, err := svc.SetData(ctx, input.SessionID, input.Body.Prices, input.Body.Events)
			if err != nil {
				return nil, mapErr(err)
			}
			return &sessionOutput{Body: info}, nil
		})

	huma.Register(api, huma.Operation{OperationID: "set-markers", Method: http.MethodPut, Path: "/api/v1/sessions/{session_id}/markers", Summary: "Show or hide event markers", Tags: []string{"View"}},
		func(ctx context.Context, input *struct {
			SessionID string `path:"session_id"`
			Body      struct {
				Show bool `json:"show"`
			}
		}) (*sessionOutput, error) {
			info, err := svc.SetShowMarkers(ctx, input.SessionID, input.Body.Show)
			if err != nil {
				return nil, mapErr(err)
			}
			return &sessionOutput{Body: info}, nil
		})

	huma.Register(api, huma.Operation{OperationID: "set-viewport", Method: http.MethodPut, Path: "/api/v1/sessions/{session_id}/viewport", Summary: "Resize the widget", Tags: []string{"View"}},
		func(ctx context.Context, input *struct {
			SessionID string `path:"session_id"`
			Body      struct {
				Width  int `json:"width" example:"960"`
				Height int `json:"height" example:"420"`
			}
		}) (*sessionOutput, error) {
			info, err := svc.Resize(ctx, input.SessionID, input.Body.Width, input.Body.Height)
			if err != nil {
				return nil, mapErr(err)
			}
			return &sessionOutput{Body: info}, nil
		})

	huma.Register(api, huma.Operation{OperationID: "set-categories", Method: http.MethodPut, Path: "/api/v1/sessions/{session_id}/categories", Summary: "Filter event categories", Description: "Preset \"all\" or \"none\" overrides the explicit list. POLICY is accepted as an alias of SUPPLY.", Tags: []string{"View"}},
		func(ctx context.Context, input *struct {
			SessionID string `path:"session_id"`
			Body      struct {
				Categories []string `json:"categories,omitempty"`
				Preset     string   `json:"preset,omitempty" enum:"all,none"`
			}
		}) (*sessionOutput, error) {
			info, err := svc.SetCategories(ctx, input.SessionID, input.Body.Categories, input.Body.Preset)
			if err != nil {
				return nil, mapErr(err)
			}
			return &sessionOutput{Body: info}, nil
		})

	huma.Register(api, huma.Operation{OperationID: "reingest-session", Method: http.MethodPost, Path: "/api/v1/sessions/{session_id}/reingest", Summary: "Re-ingest upstream data and refresh", Tags: []string{"Data"}},
		func(ctx context.Context, input *sessionIDInput) (*reingestOutput, error) {
			res, err := svc.Reingest(ctx, input.SessionID)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &reingestOutput{}
			out.Body.OK = true
			out.Body.Result = res
			return out, nil
		})
}
