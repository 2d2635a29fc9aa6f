package handlers

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"motogiro/internal/logger"
	"motogiro/internal/models"
)

// chartPoint is one day of the weekly chart, amounts in whole currency.
type chartPoint struct {
	Day     string  `json:"day"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

// WeeklyChart returns the 7-day entry/exit series as JSON, oldest day
// first. Quiet days are present with zero values.
func (h *Handlers) WeeklyChart(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r)

	series, err := h.reports.WeeklySeries(r.Context(), account.ID, time.Now())
	if err != nil {
		logger.Error("weekly series failed", zap.Error(err), zap.Int64("account_id", account.ID))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	points := make([]chartPoint, 0, len(series))
	for _, b := range series {
		points = append(points, chartPoint{
			Day:     b.Label,
			Income:  float64(b.IncomeCents) / 100,
			Expense: float64(b.ExpenseCents) / 100,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(points); err != nil {
		logger.Error("weekly chart encode failed", zap.Error(err))
	}
}

// csvHeader is the fixed header row of the export.
var csvHeader = []string{"Date", "Type", "Description", "Amount", "Fuel-Volume", "Odometer"}

// ExportCSV streams the account's full transaction history as CSV, newest
// date first, amounts with a comma decimal separator. The download name is
// stamped with the export day and month.
func (h *Handlers) ExportCSV(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r)

	txs, err := h.db.AllTransactions(r.Context(), account.ID)
	if err != nil {
		logger.Error("export query failed", zap.Error(err), zap.Int64("account_id", account.ID))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	filename := "transactions_" + time.Now().Format("02-01") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		logger.Error("export write failed", zap.Error(err))
		return
	}

	for _, t := range txs {
		fuel := ""
		if t.FuelLitres != nil {
			fuel = models.FormatLitres(*t.FuelLitres)
		}
		odometer := ""
		if t.OdometerKM != nil {
			odometer = strconv.FormatInt(*t.OdometerKM, 10)
		}
		row := []string{
			t.Date,
			string(t.Kind),
			t.Description,
			models.FormatCents(t.AmountCents),
			fuel,
			odometer,
		}
		if err := cw.Write(row); err != nil {
			logger.Error("export write failed", zap.Error(err))
			return
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		logger.Error("export flush failed", zap.Error(err))
	}
}
