package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dgnsrekt/gas_chart/internal/chart"
	"github.com/dgnsrekt/gas_chart/internal/ingest"
	"github.com/dgnsrekt/gas_chart/internal/newslist"
)

type reingestOutput struct {
	Body struct {
		OK bool `json:"ok"`
		ingest.Result
	}
}

type windowInput struct {
	Range  string `query:"range" default:"1M" enum:"1D,5D,1M,3M,6M,1Y"`
	Series string `query:"series" enum:"HENRY_HUB_SPOT,NG_FUTURES" doc:"Defaults to HENRY_HUB_SPOT for prices and NG_FUTURES for news"`
}

// registerDataHandlers exposes the session read views plus the flat
// /api/prices, /api/news and /api/reingest endpoints a browser dashboard
// polls directly.
func registerDataHandlers(api huma.API, svc Service) {
	huma.Register(api, huma.Operation{OperationID: "get-scene", Method: http.MethodGet, Path: "/api/v1/sessions/{session_id}/scene", Summary: "Get the rendered scene", Tags: []string{"View"}},
		func(ctx context.Context, input *sessionIDInput) (*struct{ Body *chart.Scene }, error) {
			scene, err := svc.Scene(ctx, input.SessionID)
			if err != nil {
				return nil, mapErr(err)
			}
			return &struct{ Body *chart.Scene }{Body: scene}, nil
		})

	type svgOutput struct {
		ContentType string `header:"Content-Type"`
		Body        []byte
	}
	huma.Register(api, huma.Operation{
		OperationID: "get-scene-svg",
		Method:      http.MethodGet,
		Path:        "/api/v1/sessions/{session_id}/scene.svg",
		Summary:     "Get the rendered scene as SVG",
		Tags:        []string{"View"},
		Responses: map[string]*huma.Response{
			"200": {
				Description: "Scene SVG",
				Content: map[string]*huma.MediaType{
					"image/svg+xml": {
						Schema: &huma.Schema{Type: "string", Format: "binary"},
					},
				},
			},
		},
	}, func(ctx context.Context, input *sessionIDInput) (*svgOutput, error) {
		data, err := svc.SceneSVG(ctx, input.SessionID)
		if err != nil {
			return nil, mapErr(err)
		}
		return &svgOutput{ContentType: "image/svg+xml", Body: data}, nil
	})

	huma.Register(api, huma.Operation{OperationID: "get-tooltip", Method: http.MethodGet, Path: "/api/v1/sessions/{session_id}/tooltip", Summary: "Get tooltip state", Tags: []string{"View"}},
		func(ctx context.Context, input *sessionIDInput) (*struct{ Body chart.Tooltip }, error) {
			tip, err := svc.Tooltip(ctx, input.SessionID)
			if err != nil {
				return nil, mapErr(err)
			}
			return &struct{ Body chart.Tooltip }{Body: tip}, nil
		})

	type newsItemsOutput struct {
		Body struct {
			SessionID string          `json:"session_id"`
			Items     []newslist.Item `json:"items"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "get-news-list", Method: http.MethodGet, Path: "/api/v1/sessions/{session_id}/news", Summary: "Get the filtered event list", Tags: []string{"View"}},
		func(ctx context.Context, input *sessionIDInput) (*newsItemsOutput, error) {
			items, err := svc.NewsItems(ctx, input.SessionID)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &newsItemsOutput{}
			out.Body.SessionID = input.SessionID
			out.Body.Items = items
			if out.Body.Items == nil {
				out.Body.Items = []newslist.Item{}
			}
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "get-prices", Method: http.MethodGet, Path: "/api/prices", Summary: "Price samples for a range", Tags: []string{"Backend"}},
		func(ctx context.Context, input *windowInput) (*struct{ Body []chart.PriceSample }, error) {
			prices, err := svc.Prices(ctx, input.Range, input.Series)
			if err != nil {
				return nil, mapErr(err)
			}
			return &struct{ Body []chart.PriceSample }{Body: prices}, nil
		})

	huma.Register(api, huma.Operation{OperationID: "get-news", Method: http.MethodGet, Path: "/api/news", Summary: "News events for a range", Tags: []string{"Backend"}},
		func(ctx context.Context, input *windowInput) (*struct{ Body []chart.Event }, error) {
			events, err := svc.News(ctx, input.Range, input.Series)
			if err != nil {
				return nil, mapErr(err)
			}
			return &struct{ Body []chart.Event }{Body: events}, nil
		})

	huma.Register(api, huma.Operation{OperationID: "reingest", Method: http.MethodPost, Path: "/api/reingest", Summary: "Re-ingest upstream data and refresh every session", Tags: []string{"Backend"}},
		func(ctx context.Context, input *struct{}) (*reingestOutput, error) {
			res, err := svc.ReingestAll(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &reingestOutput{}
			out.Body.OK = true
			out.Body.Result = res
			return out, nil
		})
}
