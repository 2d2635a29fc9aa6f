// Package report derives read-only summaries from stored transactions:
// daily and month-to-date totals, a 7-day series for charting, and the
// goal and maintenance tiers shown on the dashboard.
package report

import (
	"context"
	"time"

	"github.com/jinzhu/now"
	"github.com/pkg/errors"

	"motogiro/internal/models"
	"motogiro/internal/storage"
)

// dayLabel is the short day format used on chart axes.
const dayLabel = "02/01"

// Store is the slice of the storage layer the report generator reads from.
type Store interface {
	SumByKindOn(ctx context.Context, accountID int64, kind models.TransactionKind, date string) (int64, error)
	SumIncomeBetween(ctx context.Context, accountID int64, from, to string) (int64, error)
	DailyKindSums(ctx context.Context, accountID int64, from, to string) ([]storage.DailyKindSum, error)
}

// Generator computes aggregates for one account at a time. It keeps no
// state of its own.
type Generator struct {
	store Store
}

// NewGenerator creates a report generator backed by the given store.
func NewGenerator(store Store) *Generator {
	return &Generator{store: store}
}

// DailyTotals holds one day's income, expense and balance in cents.
type DailyTotals struct {
	IncomeCents  int64
	ExpenseCents int64
	BalanceCents int64
}

// DailyTotals sums the account's income and expenses on a single day.
// A day with no transactions yields all zeros.
func (g *Generator) DailyTotals(ctx context.Context, accountID int64, day time.Time) (DailyTotals, error) {
	date := day.Format(models.DateLayout)

	income, err := g.store.SumByKindOn(ctx, accountID, models.KindIncome, date)
	if err != nil {
		return DailyTotals{}, errors.Wrap(err, "daily totals")
	}
	expense, err := g.store.SumByKindOn(ctx, accountID, models.KindExpense, date)
	if err != nil {
		return DailyTotals{}, errors.Wrap(err, "daily totals")
	}

	return DailyTotals{
		IncomeCents:  income,
		ExpenseCents: expense,
		BalanceCents: income - expense,
	}, nil
}

// MonthToDateIncome sums income from the first of ref's month through ref
// inclusive. The upper bound is the reference day, not end of month.
func (g *Generator) MonthToDateIncome(ctx context.Context, accountID int64, ref time.Time) (int64, error) {
	from := now.New(ref).BeginningOfMonth().Format(models.DateLayout)
	to := ref.Format(models.DateLayout)

	total, err := g.store.SumIncomeBetween(ctx, accountID, from, to)
	return total, errors.Wrap(err, "month-to-date income")
}

// DayBucket is one day of the weekly series.
type DayBucket struct {
	Date         string // YYYY-MM-DD
	Label        string // DD/MM, for chart axes
	IncomeCents  int64
	ExpenseCents int64
}

// WeeklySeries returns exactly 7 buckets for the 7 days ending at ref
// inclusive, oldest first. All buckets are seeded before folding in query
// results, so days without transactions come back with zero sums.
func (g *Generator) WeeklySeries(ctx context.Context, accountID int64, ref time.Time) ([]DayBucket, error) {
	start := ref.AddDate(0, 0, -6)

	buckets := make([]DayBucket, 7)
	index := make(map[string]*DayBucket, 7)
	for i := 0; i < 7; i++ {
		day := start.AddDate(0, 0, i)
		buckets[i] = DayBucket{
			Date:  day.Format(models.DateLayout),
			Label: day.Format(dayLabel),
		}
		index[buckets[i].Date] = &buckets[i]
	}

	sums, err := g.store.DailyKindSums(ctx, accountID,
		start.Format(models.DateLayout), ref.Format(models.DateLayout))
	if err != nil {
		return nil, errors.Wrap(err, "weekly series")
	}

	for _, s := range sums {
		bucket, ok := index[s.Date]
		if !ok {
			continue
		}
		switch s.Kind {
		case models.KindIncome:
			bucket.IncomeCents = s.TotalCents
		case models.KindExpense:
			bucket.ExpenseCents = s.TotalCents
		}
	}

	return buckets, nil
}

// GoalTier classifies goal progress.
type GoalTier string

const (
	GoalTierLow GoalTier = "low" // below 50%
	GoalTierMid GoalTier = "mid" // 50-99%
	GoalTierMet GoalTier = "met" // 100% and above
)

// GoalStatus describes progress toward the daily earnings goal.
// Percent is floored and unclamped; BarWidth clamps it to 100 for display.
type GoalStatus struct {
	Percent  int
	BarWidth int
	Tier     GoalTier
}

// ComputeGoalStatus derives goal progress from daily income and the goal.
// A zero or negative goal is defined as 0%, not an error.
func ComputeGoalStatus(incomeCents, goalCents int64) GoalStatus {
	status := GoalStatus{Tier: GoalTierLow}
	if goalCents > 0 {
		status.Percent = int(incomeCents * 100 / goalCents)
	}

	status.BarWidth = status.Percent
	if status.BarWidth > 100 {
		status.BarWidth = 100
	}

	switch {
	case status.Percent >= 100:
		status.Tier = GoalTierMet
	case status.Percent >= 50:
		status.Tier = GoalTierMid
	}
	return status
}

// MaintenanceTier classifies how close the vehicle is to its next service.
type MaintenanceTier string

const (
	MaintenanceOK      MaintenanceTier = "ok"       // 200 km or more remaining
	MaintenanceDueSoon MaintenanceTier = "due-soon" // under 200 km remaining
	MaintenanceOverdue MaintenanceTier = "overdue"  // at or past the threshold
)

// dueSoonThresholdKM is the distance under which a service counts as near.
const dueSoonThresholdKM = 200

// MaintenanceStatus describes distance to the next scheduled service.
type MaintenanceStatus struct {
	RemainingKM int64
	Tier        MaintenanceTier
}

// ComputeMaintenanceStatus derives the service tier from odometer state.
func ComputeMaintenanceStatus(currentKM, nextServiceKM int64) MaintenanceStatus {
	remaining := nextServiceKM - currentKM

	tier := MaintenanceOK
	switch {
	case remaining <= 0:
		tier = MaintenanceOverdue
	case remaining < dueSoonThresholdKM:
		tier = MaintenanceDueSoon
	}

	return MaintenanceStatus{RemainingKM: remaining, Tier: tier}
}
