package core

import "sort"

// MonthlyPoints maps a "YYYY-MM" month key to the points earned that month.
type MonthlyPoints map[string]int

// RewardSummary is the points a customer earned, per month and overall.
// The JSON names are relied upon by existing clients.
type RewardSummary struct {
	CustomerID    string        `json:"customerId"`
	MonthlyPoints MonthlyPoints `json:"monthlyRewardPoints"`
	TotalPoints   int           `json:"totalRewardPoints"`
}

// NewRewardSummary returns an empty summary for the customer.
func NewRewardSummary(customerID string) RewardSummary {
	return RewardSummary{
		CustomerID:    customerID,
		MonthlyPoints: MonthlyPoints{},
	}
}

// AddPoints credits points to a month bucket and to the total.
// A bucket is created even when points is zero.
func (s *RewardSummary) AddPoints(monthKey string, points int) {
	s.MonthlyPoints[monthKey] += points
	s.TotalPoints += points
}

// Add folds one transaction into the summary.
func (s *RewardSummary) Add(t Transaction) {
	s.AddPoints(t.MonthKey(), CalculatePoints(t.Amount))
}

// SummarizeAll groups transactions by business customer id and folds each
// group into a RewardSummary. Customers without transactions do not appear;
// an empty input yields an empty, non-nil slice. The result is ordered by
// customer id, so it does not depend on the input order.
func SummarizeAll(transactions []Transaction) []RewardSummary {
	byCustomer := make(map[string]*RewardSummary)
	for _, t := range transactions {
		summary, ok := byCustomer[t.CustomerID]
		if !ok {
			s := NewRewardSummary(t.CustomerID)
			summary = &s
			byCustomer[t.CustomerID] = summary
		}
		summary.Add(t)
	}

	out := make([]RewardSummary, 0, len(byCustomer))
	for _, s := range byCustomer {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CustomerID < out[j].CustomerID })
	return out
}

// SummarizeForCustomer folds a customer's transactions, already filtered to
// the inclusive [start, end] window, into one summary. An empty set yields a
// *NoActivityError rather than a zero summary.
func SummarizeForCustomer(customerID string, start, end Date, transactions []Transaction) (RewardSummary, error) {
	if len(transactions) == 0 {
		return RewardSummary{}, &NoActivityError{CustomerID: customerID, Start: start, End: end}
	}

	summary := NewRewardSummary(customerID)
	for _, t := range transactions {
		summary.Add(t)
	}
	return summary, nil
}
