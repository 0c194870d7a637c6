package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dgnsrekt/gas_chart/internal/chart"
	"github.com/dgnsrekt/gas_chart/internal/dashboard"
)

const defaultTimeout = 5 * time.Second

// Webhook posts a plain-text line for every clicked event marker.
type Webhook struct {
	Endpoint string
	Client   *http.Client
	Timeout  time.Duration
	Location *time.Location

	wg sync.WaitGroup
}

// Notify is a dashboard.Observer. Deliveries run in the background so the
// chart goroutine never waits on the network; failures are logged.
func (w *Webhook) Notify(n dashboard.Notification) {
	if n.Kind != dashboard.KindEventClicked || n.Event == nil || w.Endpoint == "" {
		return
	}
	msg := FormatEvent(*n.Event, w.Location)
	session := n.Session

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		timeout := w.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := Send(ctx, w.Client, w.Endpoint, msg); err != nil {
			slog.Warn("event webhook failed", "session", session, "error", err)
		}
	}()
}

// Wait blocks until in-flight deliveries finish.
func (w *Webhook) Wait() { w.wg.Wait() }

// FormatEvent renders ev as "[CATEGORY] title (source, time)" with the URL on
// a second line when present.
func FormatEvent(ev chart.Event, loc *time.Location) string {
	cat := chart.NormalizeCategory(ev.Category)
	title := strings.TrimSpace(ev.Title)
	if title == "" {
		title = "(untitled)"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", cat, title)
	meta := make([]string, 0, 2)
	if s := strings.TrimSpace(ev.Source); s != "" {
		meta = append(meta, s)
	}
	meta = append(meta, chart.FormatTimestamp(ev.T, loc))
	fmt.Fprintf(&b, " (%s)", strings.Join(meta, ", "))
	if u := strings.TrimSpace(ev.URL); u != "" && u != "#" {
		b.WriteString("\n" + u)
	}
	return b.String()
}

// Send sends a message to the requested endpoint using HTTP POST.
func Send(ctx context.Context, client *http.Client, endpoint, message string) error {
	if strings.TrimSpace(endpoint) == "" {
		return errors.New("webhook endpoint is required")
	}
	c := client
	if c == nil {
		c = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(message))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook notification failed: status=%d", resp.StatusCode)
	}
	return nil
}
