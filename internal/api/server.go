package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"TrendSentinel/internal/calculator"
	"TrendSentinel/internal/collector"
	"TrendSentinel/internal/model"
)

// Service is the read side the HTTP surface needs.
type Service interface {
	// Trendlines computes a fresh report. A zero start selects the default window.
	Trendlines(ctx context.Context, symbol string, start time.Time) (*model.TrendReport, error)
	History(ctx context.Context, symbol string, timeframeDays int) ([]model.TrendSegment, error)
}

// NewServer builds the router with all handlers registered.
func NewServer(svc Service) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)

	cfg := huma.DefaultConfig("TrendSentinel API", "1.0.0")
	api := humachi.New(router, cfg)

	registerHealthHandlers(api)
	registerTrendHandlers(api, svc)

	return router
}

func registerHealthHandlers(api huma.API) {
	type healthOutput struct {
		Body struct {
			Status string `json:"status"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "health", Method: http.MethodGet, Path: "/healthz", Summary: "Health check", Tags: []string{"Health"}},
		func(ctx context.Context, input *struct{}) (*healthOutput, error) {
			out := &healthOutput{}
			out.Body.Status = "ok"
			return out, nil
		})
}

func registerTrendHandlers(api huma.API, svc Service) {
	type reportOutput struct {
		Body *model.TrendReport
	}
	huma.Register(api, huma.Operation{OperationID: "get-trendlines", Method: http.MethodGet, Path: "/api/v1/trendlines/{symbol}", Summary: "Compute minor trendlines for a symbol", Tags: []string{"Trendlines"}},
		func(ctx context.Context, input *struct {
			Symbol string `path:"symbol" minLength:"1" maxLength:"32"`
			Start  string `query:"start" doc:"Minor-line window start, YYYY-MM-DD or RFC3339"`
		}) (*reportOutput, error) {
			var start time.Time
			if input.Start != "" {
				var err error
				if start, err = calculator.ParseStart(input.Start); err != nil {
					return nil, huma.Error400BadRequest(err.Error())
				}
			}
			rep, err := svc.Trendlines(ctx, input.Symbol, start)
			if err != nil {
				return nil, mapErr(err)
			}
			return &reportOutput{Body: rep}, nil
		})

	type historyOutput struct {
		Body struct {
			Symbol        string               `json:"symbol"`
			TimeframeDays int                  `json:"timeframe_days"`
			Trendlines    []model.TrendSegment `json:"trendlines"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "get-trendline-history", Method: http.MethodGet, Path: "/api/v1/trendlines/{symbol}/history", Summary: "Recorded trendlines for a symbol", Tags: []string{"Trendlines"}},
		func(ctx context.Context, input *struct {
			Symbol    string `path:"symbol" minLength:"1" maxLength:"32"`
			Timeframe int    `query:"timeframe" default:"90" minimum:"1"`
		}) (*historyOutput, error) {
			segs, err := svc.History(ctx, input.Symbol, input.Timeframe)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &historyOutput{}
			out.Body.Symbol = input.Symbol
			out.Body.TimeframeDays = input.Timeframe
			out.Body.Trendlines = segs
			if out.Body.Trendlines == nil {
				out.Body.Trendlines = []model.TrendSegment{}
			}
			return out, nil
		})

	type packOutput struct {
		Body struct {
			Pack     model.TrendPack      `json:"pack"`
			Segments []model.TrendSegment `json:"segments"`
		}
	}
	type barInput struct {
		Time   string  `json:"time" doc:"Session date, YYYY-MM-DD or RFC3339"`
		Open   float64 `json:"open"`
		High   float64 `json:"high"`
		Low    float64 `json:"low"`
		Close  float64 `json:"close"`
		Volume float64 `json:"volume,omitempty"`
	}
	huma.Register(api, huma.Operation{OperationID: "compute-trendpack", Method: http.MethodPost, Path: "/api/v1/trendpack", Summary: "Compute a trend pack over supplied bars", Tags: []string{"Trendlines"}},
		func(ctx context.Context, input *struct {
			Body struct {
				Start string     `json:"start" doc:"Minor-line window start, YYYY-MM-DD or RFC3339"`
				Bars  []barInput `json:"bars"`
			}
		}) (*packOutput, error) {
			start, err := calculator.ParseStart(input.Body.Start)
			if err != nil {
				return nil, huma.Error400BadRequest(err.Error())
			}
			bars := make([]model.Bar, len(input.Body.Bars))
			for i, b := range input.Body.Bars {
				t, err := collector.ParseBarDate(b.Time)
				if err != nil {
					return nil, huma.Error400BadRequest(fmt.Sprintf("bars[%d].time %q must be YYYY-MM-DD or RFC3339", i, b.Time))
				}
				if i > 0 && !t.After(bars[i-1].Time) {
					return nil, huma.Error400BadRequest("bars must be strictly ascending by time")
				}
				bars[i] = model.Bar{Time: t, Open: b.Open, High: b.High, Low: b.Low, Close: b.Close, Volume: b.Volume}
			}
			pack := calculator.ComputeTrendPack(bars, start)
			out := &packOutput{}
			out.Body.Pack = pack
			out.Body.Segments = pack.Segments(bars)
			if out.Body.Segments == nil {
				out.Body.Segments = []model.TrendSegment{}
			}
			return out, nil
		})
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, collector.ErrNoBars) {
		return huma.Error404NotFound(err.Error())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return huma.Error504GatewayTimeout(err.Error())
	}
	return huma.Error502BadGateway(err.Error())
}
