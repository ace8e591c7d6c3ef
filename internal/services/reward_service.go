package services

import (
	"context"
	"fmt"

	"rewards/internal/core"
	applog "rewards/internal/log"
	"rewards/internal/store"
)

// RewardService computes reward summaries from stored transactions.
// Summaries are derived on every call and never persisted.
type RewardService struct {
	reader store.TransactionReader
	logger *applog.Logger
}

func NewRewardService(reader store.TransactionReader, logger *applog.Logger) *RewardService {
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	return &RewardService{
		reader: reader,
		logger: logger.WithComponent(applog.ComponentRewards),
	}
}

// ComputeAllSummaries returns one summary per customer with at least one
// transaction, ordered by customer id. No transactions yields an empty list.
func (s *RewardService) ComputeAllSummaries(ctx context.Context) ([]core.RewardSummary, error) {
	txs, err := s.reader.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch all transactions: %w", err)
	}

	summaries := core.SummarizeAll(txs)
	s.logger.DebugContext(ctx, "Computed reward summaries",
		applog.FieldOperation, applog.OpSummarize,
		applog.FieldCount, len(summaries))
	return summaries, nil
}

// ComputeSummaryForCustomer summarizes the customer's transactions dated
// within [start, end]. An unknown customer and a customer without activity
// in the window both yield an error matching core.ErrNotFound.
func (s *RewardService) ComputeSummaryForCustomer(ctx context.Context, customerID string, start, end core.Date) (core.RewardSummary, error) {
	if err := core.ValidateRange(start, end); err != nil {
		return core.RewardSummary{}, err
	}

	txs, err := s.reader.ListCustomerTransactions(ctx, customerID, start, end)
	if err != nil {
		return core.RewardSummary{}, fmt.Errorf("fetch transactions for %s: %w", customerID, err)
	}

	summary, err := core.SummarizeForCustomer(customerID, start, end, txs)
	if err != nil {
		s.logger.DebugContext(ctx, "No activity for customer",
			applog.FieldCustomerID, customerID,
			applog.FieldStartDate, start.String(),
			applog.FieldEndDate, end.String())
		return core.RewardSummary{}, err
	}
	return summary, nil
}
