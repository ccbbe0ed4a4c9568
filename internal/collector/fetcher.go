package collector

import (
	"context"
	"errors"

	"TrendSentinel/internal/model"
)

// ErrNoBars is returned when a source has no rows for a symbol.
var ErrNoBars = errors.New("no bars returned")

// Fetcher defines the interface for fetching daily bars. Implementations return
// bars sorted ascending by time.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.Bar, error)
	Name() string
}
