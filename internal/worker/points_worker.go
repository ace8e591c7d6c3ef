package worker

import (
	"context"
	"errors"
	"sync/atomic"

	"rewards/internal/amqp"
	"rewards/internal/core"
	applog "rewards/internal/log"
)

var errNilMessage = errors.New("nil transaction recorded message")

// Stats are the worker's running counters.
type Stats struct {
	Processed   int64
	PointsTotal int64
	Failed      int64
}

// PointsWorker handles TransactionRecorded messages by computing the points
// each purchase earned and logging the accrual against its month.
type PointsWorker struct {
	events *applog.StructuredLogger
	logger *applog.Logger

	processed   atomic.Int64
	pointsTotal atomic.Int64
	failed      atomic.Int64
}

func NewPointsWorker(logger *applog.Logger) *PointsWorker {
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	logger = logger.WithComponent(applog.ComponentWorker)
	return &PointsWorker{
		events: applog.NewStructuredLogger(logger),
		logger: logger,
	}
}

// HandleTransactionRecorded processes a single message from AMQP. Messages
// arrive already validated by TransactionRecordedMessageFromJSON.
func (w *PointsWorker) HandleTransactionRecorded(ctx context.Context, msg *amqp.TransactionRecordedMessage) error {
	if msg == nil {
		w.failed.Add(1)
		w.events.LogError(ctx, "Received empty transaction recorded message", errNilMessage,
			applog.ComponentWorker, applog.OpValidate, nil)
		return errNilMessage
	}

	tx := msg.Transaction()
	points := core.CalculatePoints(tx.Amount)
	w.events.LogPointsAccrued(ctx, tx.ID, tx.CustomerID, points, tx.MonthKey())

	w.processed.Add(1)
	w.pointsTotal.Add(int64(points))
	return nil
}

// Stats returns a snapshot of the counters.
func (w *PointsWorker) Stats() Stats {
	return Stats{
		Processed:   w.processed.Load(),
		PointsTotal: w.pointsTotal.Load(),
		Failed:      w.failed.Load(),
	}
}

// LogStats writes the counters at info level.
func (w *PointsWorker) LogStats(ctx context.Context) {
	s := w.Stats()
	w.logger.InfoContext(ctx, "Worker stats",
		"processed", s.Processed,
		"points_total", s.PointsTotal,
		"failed", s.Failed)
}
