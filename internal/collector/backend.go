package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"TrendSentinel/internal/model"
)

// BackendFetcher implements Fetcher against the dashboard REST API
// (GET /api/stocks/daily/{symbol}).
type BackendFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	now     func() time.Time
}

// NewBackendFetcher creates a new fetcher with optional proxy support.
func NewBackendFetcher(baseURL, apiKey, proxyURL string) *BackendFetcher {
	return &BackendFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
		now:     time.Now,
	}
}

func (f *BackendFetcher) Name() string { return "backend" }

// backendEnvelope is the {success, message, data} wrapper used by every endpoint.
type backendEnvelope struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Error   string         `json:"error"`
	Data    []backendStock `json:"data"`
}

type backendStock struct {
	Date   string  `json:"date"`
	Symbol string  `json:"symbol"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// FetchDailyBars requests roughly days sessions ending today.
func (f *BackendFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.Bar, error) {
	end := f.now().UTC()
	// calendar span covering days sessions plus holidays
	start := end.AddDate(0, 0, -(days*7/5 + 14))

	q := url.Values{}
	q.Set("startDate", start.Format("2006-01-02"))
	q.Set("endDate", end.Format("2006-01-02"))
	endpoint := fmt.Sprintf("%s/api/stocks/daily/%s?%s", f.BaseURL, url.PathEscape(symbol), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode, string(body))
	}

	var env backendEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}
	if !env.Success {
		return nil, fmt.Errorf("backend error: %s: %s", env.Message, env.Error)
	}
	if len(env.Data) == 0 {
		return nil, fmt.Errorf("backend %s: %w", symbol, ErrNoBars)
	}

	bars := make([]model.Bar, 0, len(env.Data))
	for _, s := range env.Data {
		t, err := ParseBarDate(s.Date)
		if err != nil {
			return nil, fmt.Errorf("parse bar date %q: %w", s.Date, err)
		}
		bars = append(bars, model.Bar{Time: t, Open: s.Open, High: s.High, Low: s.Low, Close: s.Close, Volume: s.Volume})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	if days > 0 && len(bars) > days {
		bars = bars[len(bars)-days:]
	}
	return bars, nil
}

// ParseBarDate accepts plain dates and the RFC3339 timestamps a DATE column serializes to.
func ParseBarDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
