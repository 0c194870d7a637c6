package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dgnsrekt/gas_chart/internal/chart"
	"github.com/dgnsrekt/gas_chart/internal/controller"
)

type pointInput struct {
	SessionID string `path:"session_id"`
	Body      struct {
		X float64 `json:"x" doc:"Pixel x in widget coordinates"`
		Y float64 `json:"y" doc:"Pixel y in widget coordinates"`
	}
}

func registerInteractionHandlers(api huma.API, svc Service) {
	type selectOutput struct {
		Body struct {
			SessionID string          `json:"session_id"`
			Event     chart.Event     `json:"event"`
			Selection chart.Selection `json:"selection"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "select-event", Method: http.MethodPost, Path: "/api/v1/sessions/{session_id}/select", Summary: "Select an event from the list", Description: "Selects a visible list item and focuses the chart on its time. The returned event carries the URL to open.", Tags: []string{"Selection"}},
		func(ctx context.Context, input *struct {
			SessionID string `path:"session_id"`
			Body      struct {
				EventID string `json:"event_id" doc:"Event identity as shown in the list"`
			}
		}) (*selectOutput, error) {
			ev, sel, err := svc.SelectEvent(ctx, input.SessionID, input.Body.EventID)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &selectOutput{}
			out.Body.SessionID = input.SessionID
			out.Body.Event = ev
			out.Body.Selection = sel
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "focus-time", Method: http.MethodPost, Path: "/api/v1/sessions/{session_id}/focus", Summary: "Set or clear the focus guide", Tags: []string{"Selection"}},
		func(ctx context.Context, input *struct {
			SessionID string `path:"session_id"`
			Body      struct {
				T *int64 `json:"t,omitempty" doc:"Epoch milliseconds; omit to clear focus"`
			}
		}) (*selectionOutput, error) {
			sel, err := svc.Focus(ctx, input.SessionID, input.Body.T)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &selectionOutput{}
			out.Body.SessionID = input.SessionID
			out.Body.Selection = sel
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "clear-selection", Method: http.MethodDelete, Path: "/api/v1/sessions/{session_id}/selection", Summary: "Clear selection and focus", Tags: []string{"Selection"}},
		func(ctx context.Context, input *sessionIDInput) (*selectionOutput, error) {
			sel, err := svc.ClearSelection(ctx, input.SessionID)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &selectionOutput{}
			out.Body.SessionID = input.SessionID
			out.Body.Selection = sel
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "pointer-click", Method: http.MethodPost, Path: "/api/v1/sessions/{session_id}/pointer/click", Summary: "Click at a widget position", Description: "A hit on a marker selects it; a miss clears the selection.", Tags: []string{"Pointer"}},
		func(ctx context.Context, input *pointInput) (*struct{ Body controller.ClickResult }, error) {
			res, err := svc.PointerClick(ctx, input.SessionID, input.Body.X, input.Body.Y)
			if err != nil {
				return nil, mapErr(err)
			}
			return &struct{ Body controller.ClickResult }{Body: res}, nil
		})

	huma.Register(api, huma.Operation{OperationID: "pointer-move", Method: http.MethodPost, Path: "/api/v1/sessions/{session_id}/pointer/move", Summary: "Move the pointer", Tags: []string{"Pointer"}},
		func(ctx context.Context, input *pointInput) (*struct{ Body chart.Tooltip }, error) {
			tip, err := svc.PointerMove(ctx, input.SessionID, input.Body.X, input.Body.Y)
			if err != nil {
				return nil, mapErr(err)
			}
			return &struct{ Body chart.Tooltip }{Body: tip}, nil
		})

	type leaveOutput struct {
		Body struct {
			Status string `json:"status"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "pointer-leave", Method: http.MethodPost, Path: "/api/v1/sessions/{session_id}/pointer/leave", Summary: "Pointer left the widget", Tags: []string{"Pointer"}},
		func(ctx context.Context, input *sessionIDInput) (*leaveOutput, error) {
			if err := svc.PointerLeave(ctx, input.SessionID); err != nil {
				return nil, mapErr(err)
			}
			out := &leaveOutput{}
			out.Body.Status = "hidden"
			return out, nil
		})
}
