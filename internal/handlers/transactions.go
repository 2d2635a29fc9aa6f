package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"motogiro/internal/logger"
	"motogiro/internal/models"
)

// AddTransaction handles the add-transaction form. A transaction carrying
// an odometer reading also moves the account's current odometer, in one
// storage transaction. Validation failures re-render the dashboard with a
// message and commit nothing.
func (h *Handlers) AddTransaction(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r)

	if err := r.ParseForm(); err != nil {
		h.renderDashboard(w, r, account, "Invalid form submission")
		return
	}

	kind := models.TransactionKind(r.FormValue("kind"))
	if !kind.Valid() {
		h.renderDashboard(w, r, account, "Choose income or expense")
		return
	}

	amountCents, err := models.ParseDecimalToCents(r.FormValue("amount"))
	if err != nil {
		h.renderDashboard(w, r, account, "Enter a valid positive amount")
		return
	}

	t := models.Transaction{
		AccountID:   account.ID,
		Kind:        kind,
		AmountCents: amountCents,
		Description: strings.TrimSpace(r.FormValue("description")),
	}

	if v := strings.TrimSpace(r.FormValue("date")); v != "" {
		if _, err := time.Parse(models.DateLayout, v); err != nil {
			h.renderDashboard(w, r, account, "Date must be YYYY-MM-DD")
			return
		}
		t.Date = v
	}

	if v := strings.TrimSpace(r.FormValue("fuel_litres")); v != "" {
		litres, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
		if err != nil || litres <= 0 {
			h.renderDashboard(w, r, account, "Fuel volume must be a positive number")
			return
		}
		t.FuelLitres = &litres
	}

	if v := strings.TrimSpace(r.FormValue("odometer_km")); v != "" {
		km, err := strconv.ParseInt(v, 10, 64)
		if err != nil || km < 0 {
			h.renderDashboard(w, r, account, "Odometer must be a non-negative number")
			return
		}
		t.OdometerKM = &km
	}

	if err := h.db.AppendTransaction(r.Context(), &t); err != nil {
		logger.Error("append transaction failed", zap.Error(err), zap.Int64("account_id", account.ID))
		h.renderDashboard(w, r, account, "Could not save the transaction. Please try again.")
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// DeleteTransaction removes one of the caller's transactions. Acting on a
// transaction owned by someone else is silently ignored; either way the
// caller lands back on the dashboard.
func (h *Handlers) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r)

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	if err := h.db.DeleteTransaction(r.Context(), id, account.ID); err != nil {
		logger.Error("delete transaction failed", zap.Error(err),
			zap.Int64("id", id), zap.Int64("account_id", account.ID))
	}

	http.Redirect(w, r, "/", http.StatusFound)
}
