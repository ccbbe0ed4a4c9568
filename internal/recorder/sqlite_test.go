package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"TrendSentinel/internal/model"
)

func testReport(symbol string, resEnd float64) *model.TrendReport {
	d0 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	d1 := time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)
	return &model.TrendReport{
		Symbol:   symbol,
		Source:   "mock",
		Start:    d0,
		BarCount: 120,
		Segments: []model.TrendSegment{
			{Number: 1, StartDate: d0, EndDate: d1, StartPrice: 120, EndPrice: resEnd, Slope: -0.1, TrendType: model.KindMinorResistance},
			{Number: 2, StartDate: d0, EndDate: d1, StartPrice: 100, EndPrice: 104, Slope: 0.03, TrendType: model.KindMinorSupport},
		},
		Stats:  model.PriceStats{LastClose: 107},
		Signal: &model.TrendSignal{Type: model.SignalInside, Label: "inside"},
	}
}

func openTest(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "trend.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRecorder() error = %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestSQLiteRecorder_RoundTrip(t *testing.T) {
	r := openTest(t)

	if err := r.RecordTrendReport(testReport("AAPL", 110), 90); err != nil {
		t.Fatalf("RecordTrendReport() error = %v", err)
	}

	got, err := r.LatestTrendlines("AAPL", 90)
	if err != nil {
		t.Fatalf("LatestTrendlines() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d trendlines, want 2", len(got))
	}
	if got[0].Number != 1 || got[0].TrendType != model.KindMinorResistance || got[0].EndPrice != 110 {
		t.Errorf("first trendline = %+v", got[0])
	}
	if !got[1].StartDate.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start date = %v", got[1].StartDate)
	}
}

func TestSQLiteRecorder_ReplacesPerKey(t *testing.T) {
	r := openTest(t)

	if err := r.RecordTrendReport(testReport("AAPL", 110), 90); err != nil {
		t.Fatal(err)
	}
	if err := r.RecordTrendReport(testReport("AAPL", 111), 365); err != nil {
		t.Fatal(err)
	}
	rep := testReport("AAPL", 112)
	rep.Segments = rep.Segments[:1]
	if err := r.RecordTrendReport(rep, 90); err != nil {
		t.Fatal(err)
	}

	got, _ := r.LatestTrendlines("AAPL", 90)
	if len(got) != 1 || got[0].EndPrice != 112 {
		t.Errorf("90d trendlines = %+v, want only the latest run", got)
	}
	other, _ := r.LatestTrendlines("AAPL", 365)
	if len(other) != 2 || other[0].EndPrice != 111 {
		t.Errorf("365d trendlines = %+v, want untouched", other)
	}

	var runs int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM trend_runs WHERE symbol = 'AAPL'`).Scan(&runs); err != nil {
		t.Fatal(err)
	}
	if runs != 3 {
		t.Errorf("trend_runs = %d, want 3", runs)
	}
}

func TestSQLiteRecorder_UnknownKey(t *testing.T) {
	r := openTest(t)
	got, err := r.LatestTrendlines("MSFT", 90)
	if err != nil {
		t.Fatalf("LatestTrendlines() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d trendlines, want 0", len(got))
	}
}
