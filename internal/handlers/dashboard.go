package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"motogiro/internal/logger"
	"motogiro/internal/models"
	"motogiro/internal/report"
)

// recentLimit is how many transactions the dashboard lists.
const recentLimit = 20

// TransactionItem represents one transaction in the dashboard list.
type TransactionItem struct {
	ID          int64
	IsIncome    bool
	Description string
	Amount      string
	Date        string
	Fuel        string
	Odometer    int64
	HasFuel     bool
}

// DashboardViewModel is the data passed to the dashboard template.
type DashboardViewModel struct {
	Name  string
	Error string

	DailyIncome  string
	DailyExpense string
	DailyBalance string
	MonthIncome  string

	GoalAmount  string
	GoalPercent int
	GoalBar     int
	GoalTier    report.GoalTier

	OdometerKM    int64
	NextServiceKM int64
	RemainingKM   int64
	MaintTier     report.MaintenanceTier

	Transactions []TransactionItem
}

// Dashboard renders the main page: today's totals, month-to-date income,
// goal progress, maintenance status, and the most recent transactions.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r)
	h.renderDashboard(w, r, account, "")
}

// renderDashboard builds the dashboard view model. A non-empty errMsg is
// shown inline; validation failures in form handlers re-render through here.
func (h *Handlers) renderDashboard(w http.ResponseWriter, r *http.Request, account *models.Account, errMsg string) {
	ctx := r.Context()
	today := time.Now()

	totals, err := h.reports.DailyTotals(ctx, account.ID, today)
	if err != nil {
		logger.Error("daily totals failed", zap.Error(err), zap.Int64("account_id", account.ID))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	monthIncome, err := h.reports.MonthToDateIncome(ctx, account.ID, today)
	if err != nil {
		logger.Error("month-to-date income failed", zap.Error(err), zap.Int64("account_id", account.ID))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	recent, err := h.db.RecentTransactions(ctx, account.ID, recentLimit)
	if err != nil {
		logger.Error("recent transactions failed", zap.Error(err), zap.Int64("account_id", account.ID))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	goal := report.ComputeGoalStatus(totals.IncomeCents, account.DailyGoalCents)
	maintenance := report.ComputeMaintenanceStatus(account.OdometerKM, account.NextServiceKM)

	vm := DashboardViewModel{
		Name:  account.Name,
		Error: errMsg,

		DailyIncome:  models.FormatCents(totals.IncomeCents),
		DailyExpense: models.FormatCents(totals.ExpenseCents),
		DailyBalance: models.FormatCents(totals.BalanceCents),
		MonthIncome:  models.FormatCents(monthIncome),

		GoalAmount:  models.FormatCents(account.DailyGoalCents),
		GoalPercent: goal.Percent,
		GoalBar:     goal.BarWidth,
		GoalTier:    goal.Tier,

		OdometerKM:    account.OdometerKM,
		NextServiceKM: account.NextServiceKM,
		RemainingKM:   maintenance.RemainingKM,
		MaintTier:     maintenance.Tier,

		Transactions: make([]TransactionItem, 0, len(recent)),
	}

	for _, t := range recent {
		item := TransactionItem{
			ID:          t.ID,
			IsIncome:    t.Kind == models.KindIncome,
			Description: t.Description,
			Amount:      models.FormatCents(t.AmountCents),
			Date:        formatDayLabel(t.Date),
		}
		if t.FuelLitres != nil {
			item.HasFuel = true
			item.Fuel = models.FormatLitres(*t.FuelLitres)
		}
		if t.OdometerKM != nil {
			item.Odometer = *t.OdometerKM
		}
		vm.Transactions = append(vm.Transactions, item)
	}

	h.render(w, r, "dashboard.html", vm)
}

// formatDayLabel turns a stored YYYY-MM-DD date into the short DD/MM label.
func formatDayLabel(date string) string {
	d, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return date
	}
	return d.Format("02/01")
}
