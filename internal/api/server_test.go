package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dgnsrekt/gas_chart/internal/chart"
	"github.com/dgnsrekt/gas_chart/internal/controller"
	"github.com/dgnsrekt/gas_chart/internal/dashboard"
	"github.com/dgnsrekt/gas_chart/internal/source"
)

type stubSource struct{}

func (stubSource) Prices(context.Context, source.Query) ([]chart.PriceSample, error) {
	return []chart.PriceSample{{T: 0, P: 2.0}, {T: 1000, P: 2.5}, {T: 2000, P: 2.2}}, nil
}

func (stubSource) News(context.Context, source.Query) ([]chart.Event, error) {
	return []chart.Event{
		{ID: "e1", T: 900, Category: "POLICY", Title: "x", URL: "https://example.com/x"},
		{ID: "e2", T: 1500, Category: "LNG", Title: "y"},
	}, nil
}

func newTestService() *controller.Service {
	return controller.NewService(controller.Options{Source: stubSource{}})
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func createSession(t *testing.T, h http.Handler) dashboard.Info {
	t.Helper()
	w := doJSON(t, h, http.MethodPost, "/api/v1/sessions", map[string]any{"width": 400, "height": 300})
	if w.Code != http.StatusCreated {
		t.Fatalf("create session status = %d; body = %s", w.Code, w.Body.String())
	}
	var info dashboard.Info
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return info
}

func TestHealth(t *testing.T) {
	h := NewServer(newTestService(), Options{})
	w := doJSON(t, h, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
		t.Fatalf("GET /health = %d %s", w.Code, w.Body.String())
	}
}

func TestSessionSelectionFlow(t *testing.T) {
	h := NewServer(newTestService(), Options{})
	info := createSession(t, h)
	if info.Status != dashboard.StatusReady || info.Chart.Events != 2 {
		t.Fatalf("created session = %+v; want Ready with 2 events", info)
	}
	base := "/api/v1/sessions/" + info.ID

	w := doJSON(t, h, http.MethodPost, base+"/select", map[string]string{"event_id": "e1"})
	if w.Code != http.StatusOK {
		t.Fatalf("select status = %d; body = %s", w.Code, w.Body.String())
	}
	var sel struct {
		Event     chart.Event     `json:"event"`
		Selection chart.Selection `json:"selection"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &sel); err != nil {
		t.Fatalf("decode select: %v", err)
	}
	if sel.Event.URL != "https://example.com/x" || sel.Selection.SelectedID != "e1" {
		t.Fatalf("select = %+v", sel)
	}

	w = doJSON(t, h, http.MethodPost, base+"/select", map[string]string{"event_id": "nope"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("select unknown status = %d; want 404", w.Code)
	}

	w = doJSON(t, h, http.MethodPost, base+"/pointer/click", map[string]float64{"x": 60, "y": 250})
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"hit":false`) {
		t.Fatalf("background click = %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, h, http.MethodGet, base+"/news", nil)
	if w.Code != http.StatusOK || strings.Contains(w.Body.String(), `"selected":true`) {
		t.Fatalf("news after background click = %d %s", w.Code, w.Body.String())
	}
}

func TestSceneSVGContentType(t *testing.T) {
	h := NewServer(newTestService(), Options{})
	info := createSession(t, h)
	w := doJSON(t, h, http.MethodGet, "/api/v1/sessions/"+info.ID+"/scene.svg", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("scene.svg status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Fatalf("Content-Type = %q; want image/svg+xml", ct)
	}
	if !strings.HasPrefix(w.Body.String(), "<svg") {
		t.Fatalf("scene.svg body = %.40q", w.Body.String())
	}
}

func TestErrorMapping(t *testing.T) {
	h := NewServer(newTestService(), Options{})
	w := doJSON(t, h, http.MethodGet, "/api/v1/sessions/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown session status = %d; want 404", w.Code)
	}

	info := createSession(t, h)
	w = doJSON(t, h, http.MethodPut, "/api/v1/sessions/"+info.ID+"/viewport", map[string]int{"width": -5, "height": 100})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("negative viewport status = %d; want 400", w.Code)
	}

	w = doJSON(t, h, http.MethodPost, "/api/reingest", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("reingest without ingester status = %d; want 400", w.Code)
	}
}

func TestBackendCompatEndpoints(t *testing.T) {
	h := NewServer(newTestService(), Options{})
	w := doJSON(t, h, http.MethodGet, "/api/prices?range=5D", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/prices status = %d; body = %s", w.Code, w.Body.String())
	}
	var prices []chart.PriceSample
	if err := json.Unmarshal(w.Body.Bytes(), &prices); err != nil || len(prices) != 3 {
		t.Fatalf("GET /api/prices = %v, %v", prices, err)
	}

	w = doJSON(t, h, http.MethodGet, "/api/news?range=2W", nil)
	if w.Code != http.StatusUnprocessableEntity && w.Code != http.StatusBadRequest {
		t.Fatalf("GET /api/news?range=2W status = %d; want 4xx", w.Code)
	}
}

func TestOptionalHandlersMounted(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("metrics"))
	})
	h := NewServer(newTestService(), Options{Metrics: metrics})
	w := doJSON(t, h, http.MethodGet, "/metrics", nil)
	if w.Body.String() != "metrics" {
		t.Fatalf("GET /metrics = %q", w.Body.String())
	}
	w = doJSON(t, h, http.MethodGet, "/api/v1/events", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /api/v1/events without broker = %d; want 404", w.Code)
	}
}
