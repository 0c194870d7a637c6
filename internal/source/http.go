package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dgnsrekt/gas_chart/internal/chart"
	"github.com/dgnsrekt/gas_chart/internal/netutil"
)

const (
	httpAttempts  = 3
	httpBaseDelay = 250 * time.Millisecond
)

// HTTP reads prices and news from an upstream dashboard backend exposing
// GET /api/prices and GET /api/news.
type HTTP struct {
	base   string
	client *http.Client
}

// NewHTTP returns a client for the backend at baseURL. client may be nil.
func NewHTTP(baseURL string, client *http.Client) *HTTP {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTP{base: strings.TrimRight(baseURL, "/"), client: client}
}

func (h *HTTP) Prices(ctx context.Context, q Query) ([]chart.PriceSample, error) {
	var out []chart.PriceSample
	if err := h.get(ctx, "/api/prices", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (h *HTTP) News(ctx context.Context, q Query) ([]chart.Event, error) {
	var out []chart.Event
	if err := h.get(ctx, "/api/news", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (h *HTTP) get(ctx context.Context, path string, q Query, dst any) error {
	v := url.Values{}
	v.Set("range", q.Range)
	v.Set("series", q.Series)
	endpoint := h.base + path + "?" + v.Encode()

	return netutil.Retry(ctx, httpAttempts, httpBaseDelay, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := h.client.Do(req)
		if err != nil {
			return fmt.Errorf("GET %s: %w", path, err)
		}
		defer func() {
			_ = resp.Body.Close()
		}()
		if resp.StatusCode != http.StatusOK {
			_, _ = io.Copy(io.Discard, resp.Body)
			return fmt.Errorf("GET %s: status=%d", path, resp.StatusCode)
		}
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		return nil
	})
}
