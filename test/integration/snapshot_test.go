//go:build integration

package integration

import (
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestSnapshotLifecycle(t *testing.T) {
	resp := env.POST(t, env.sessionPath("snapshot"), map[string]any{
		"format": "svg",
		"notes":  "integration",
	})
	requireStatus(t, resp, http.StatusOK)
	created := decodeJSON[struct {
		Snapshot struct {
			ID        string `json:"id"`
			SessionID string `json:"session_id"`
		} `json:"snapshot"`
		URL string `json:"url"`
	}](t, resp)
	if created.Snapshot.ID == "" {
		t.Fatal("expected snapshot ID after creation")
	}
	snapshotID := created.Snapshot.ID
	requireField(t, created.Snapshot.SessionID, env.SessionID, "session_id")

	t.Cleanup(func() {
		r := env.DELETE(t, "/api/v1/snapshots/"+snapshotID)
		r.Body.Close()
	})

	resp = env.GET(t, "/api/v1/snapshots?session="+env.SessionID)
	requireStatus(t, resp, http.StatusOK)
	list := decodeJSON[struct {
		Snapshots []struct {
			ID string `json:"id"`
		} `json:"snapshots"`
	}](t, resp)
	found := false
	for _, s := range list.Snapshots {
		if s.ID == snapshotID {
			found = true
		}
	}
	if !found {
		t.Fatalf("snapshot %s not listed", snapshotID)
	}

	resp = env.GET(t, created.URL)
	requireStatus(t, resp, http.StatusOK)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.HasPrefix(string(body), "<svg") {
		t.Fatalf("image body does not start with <svg")
	}
}
