package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dgnsrekt/gas_chart/internal/chart"
)

const (
	DefaultEIABaseURL  = "https://api.eia.gov/v2"
	DefaultEIASeriesID = "NG.RNGWHHD.D"
)

// EIA downloads a daily price series from the EIA v2 seriesid endpoint.
type EIA struct {
	APIKey   string
	SeriesID string
	BaseURL  string
	Client   *http.Client
}

type eiaResponse struct {
	Response *struct {
		Data []map[string]any `json:"data"`
	} `json:"response"`
	Data []map[string]any `json:"data"`
}

// Origin is the source label stored with ingested rows.
func (e *EIA) Origin() string {
	return "EIA:" + e.seriesID()
}

// Fetch returns the series sorted by time. Rows with unparseable periods or
// values are skipped.
func (e *EIA) Fetch(ctx context.Context) ([]chart.PriceSample, error) {
	if strings.TrimSpace(e.APIKey) == "" {
		return nil, fmt.Errorf("EIA api key is required")
	}
	base := e.BaseURL
	if base == "" {
		base = DefaultEIABaseURL
	}
	client := e.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	endpoint := strings.TrimRight(base, "/") + "/seriesid/" + url.PathEscape(e.seriesID()) + "?api_key=" + url.QueryEscape(e.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch EIA series: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("fetch EIA series: status=%d", resp.StatusCode)
	}

	var body eiaResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode EIA response: %w", err)
	}
	rows := body.Data
	if body.Response != nil && body.Response.Data != nil {
		rows = body.Response.Data
	}
	if rows == nil {
		return nil, fmt.Errorf("unexpected EIA response shape")
	}

	out := make([]chart.PriceSample, 0, len(rows))
	for _, row := range rows {
		period := firstString(row, "period", "date", "time")
		t, ok := parsePeriod(period)
		if !ok {
			continue
		}
		p, ok := firstNumber(row, "value", "price")
		if !ok {
			continue
		}
		out = append(out, chart.PriceSample{T: t, P: p})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].T < out[j].T })
	return out, nil
}

func (e *EIA) seriesID() string {
	if e.SeriesID == "" {
		return DefaultEIASeriesID
	}
	return e.SeriesID
}

func parsePeriod(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	layout := "20060102"
	if strings.Contains(s, "-") {
		layout = "2006-01-02"
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return 0, false
	}
	return t.UnixMilli(), true
}

func firstString(row map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := row[k]; ok && v != nil {
			return fmt.Sprint(v)
		}
	}
	return ""
}

func firstNumber(row map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		switch v := row[k].(type) {
		case float64:
			return v, true
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}
