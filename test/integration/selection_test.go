//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestSelectFromListFocusesChart(t *testing.T) {
	item := firstItem(t)
	t.Cleanup(func() {
		r := env.DELETE(t, env.sessionPath("selection"))
		r.Body.Close()
	})

	resp := env.POST(t, env.sessionPath("select"), map[string]any{"event_id": item.ID})
	requireStatus(t, resp, http.StatusOK)
	out := decodeJSON[struct {
		Selection selection `json:"selection"`
	}](t, resp)
	requireField(t, out.Selection.SelectedID, item.ID, "selected_id")
	if out.Selection.FocusedTime == nil || *out.Selection.FocusedTime != item.T {
		t.Fatalf("focused_time = %v, want %d", out.Selection.FocusedTime, item.T)
	}

	resp = env.GET(t, env.sessionPath("scene"))
	requireStatus(t, resp, http.StatusOK)
	scene := decodeJSON[struct {
		Markers []struct {
			ID       string `json:"id"`
			Selected bool   `json:"selected"`
		} `json:"markers"`
	}](t, resp)
	for _, mk := range scene.Markers {
		if mk.Selected != (mk.ID == item.ID) {
			t.Fatalf("marker %s selected = %v", mk.ID, mk.Selected)
		}
	}
}

func TestMarkerClickMirrorsIntoList(t *testing.T) {
	item := firstItem(t)
	t.Cleanup(func() {
		r := env.DELETE(t, env.sessionPath("selection"))
		r.Body.Close()
	})

	resp := env.GET(t, env.sessionPath("scene"))
	requireStatus(t, resp, http.StatusOK)
	scene := decodeJSON[struct {
		Markers []struct {
			ID string  `json:"id"`
			CX float64 `json:"cx"`
			CY float64 `json:"cy"`
		} `json:"markers"`
	}](t, resp)
	var cx, cy float64
	found := false
	for _, mk := range scene.Markers {
		if mk.ID == item.ID {
			cx, cy, found = mk.CX, mk.CY, true
		}
	}
	if !found {
		t.Skipf("no marker drawn for %s", item.ID)
	}

	resp = env.POST(t, env.sessionPath("pointer/click"), map[string]any{"x": cx, "y": cy})
	requireStatus(t, resp, http.StatusOK)
	click := decodeJSON[struct {
		Hit       bool      `json:"hit"`
		Selection selection `json:"selection"`
	}](t, resp)
	requireField(t, click.Hit, true, "hit")

	resp = env.GET(t, env.sessionPath("news"))
	requireStatus(t, resp, http.StatusOK)
	list := decodeJSON[struct {
		Items []newsItem `json:"items"`
	}](t, resp)
	for _, it := range list.Items {
		if it.ID == click.Selection.SelectedID && !it.Selected {
			t.Fatalf("list item %s not marked selected", it.ID)
		}
	}
}

func TestSelectUnknownEvent(t *testing.T) {
	resp := env.POST(t, env.sessionPath("select"), map[string]any{"event_id": "no-such-event"})
	requireStatus(t, resp, http.StatusNotFound)
	resp.Body.Close()
}
