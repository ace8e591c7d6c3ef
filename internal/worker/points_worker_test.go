package worker

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"rewards/internal/amqp"
	"rewards/internal/core"
	applog "rewards/internal/log"
)

func newTestWorker(buf *bytes.Buffer) *PointsWorker {
	logger := applog.New(applog.Config{Handler: applog.NewHandler(buf, "json", slog.LevelDebug)})
	return NewPointsWorker(logger)
}

func TestPointsWorker_HandleTransactionRecorded(t *testing.T) {
	tests := []struct {
		name       string
		amount     string
		date       core.Date
		wantPoints int
		wantMonth  string
	}{
		{"over one hundred", "120.00", core.NewDate(2025, 1, 15), 90, "2025-01"},
		{"between thresholds", "75.00", core.NewDate(2025, 1, 20), 25, "2025-01"},
		{"below fifty", "40.00", core.NewDate(2025, 2, 10), 0, "2025-02"},
		{"cents are truncated", "100.99", core.NewDate(2025, 3, 1), 50, "2025-03"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := newTestWorker(&buf)

			msg := &amqp.TransactionRecordedMessage{
				TransactionID: 7,
				CustomerID:    "CUST001",
				Amount:        decimal.RequireFromString(tt.amount),
				Date:          tt.date,
			}
			if err := w.HandleTransactionRecorded(context.Background(), msg); err != nil {
				t.Fatalf("HandleTransactionRecorded() error = %v", err)
			}

			out := buf.String()
			if !strings.Contains(out, "Points accrued") {
				t.Fatalf("missing accrual log: %s", out)
			}
			if !strings.Contains(out, `"month":"`+tt.wantMonth+`"`) {
				t.Errorf("month not logged as %s: %s", tt.wantMonth, out)
			}

			stats := w.Stats()
			if stats.Processed != 1 || stats.PointsTotal != int64(tt.wantPoints) {
				t.Errorf("Stats() = %+v, want 1 processed with %d points", stats, tt.wantPoints)
			}
		})
	}
}

func TestPointsWorker_RejectsNilMessage(t *testing.T) {
	var buf bytes.Buffer
	w := newTestWorker(&buf)

	if err := w.HandleTransactionRecorded(context.Background(), nil); !errors.Is(err, errNilMessage) {
		t.Errorf("HandleTransactionRecorded(nil) error = %v, want %v", err, errNilMessage)
	}
	if got := w.Stats(); got.Failed != 1 || got.Processed != 0 {
		t.Errorf("Stats() = %+v, want 1 failed and none processed", got)
	}
	if out := buf.String(); !strings.Contains(out, "Received empty transaction recorded message") {
		t.Errorf("nil message not logged: %s", out)
	}
}

func TestPointsWorker_LogStats(t *testing.T) {
	var buf bytes.Buffer
	w := newTestWorker(&buf)
	w.LogStats(context.Background())

	if !strings.Contains(buf.String(), "Worker stats") {
		t.Errorf("stats not logged: %s", buf.String())
	}
}
