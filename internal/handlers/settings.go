package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"motogiro/internal/logger"
	"motogiro/internal/models"
)

// SettingsViewModel is the data passed to the settings template.
type SettingsViewModel struct {
	Error         string
	GoalAmount    string
	OdometerKM    int64
	NextServiceKM int64
}

// SettingsForm renders the goal and odometer settings page.
func (h *Handlers) SettingsForm(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r)
	h.renderSettings(w, r, account, "")
}

func (h *Handlers) renderSettings(w http.ResponseWriter, r *http.Request, account *models.Account, errMsg string) {
	h.render(w, r, "settings.html", SettingsViewModel{
		Error:         errMsg,
		GoalAmount:    models.FormatCents(account.DailyGoalCents),
		OdometerKM:    account.OdometerKM,
		NextServiceKM: account.NextServiceKM,
	})
}

// UpdateGoal overwrites the daily earnings goal. Any parseable number is
// accepted, including zero and negatives; the goal computation guards them.
func (h *Handlers) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r)

	if err := r.ParseForm(); err != nil {
		h.renderSettings(w, r, account, "Invalid form submission")
		return
	}

	goalCents, err := models.ParseSignedDecimalToCents(r.FormValue("goal"))
	if err != nil {
		h.renderSettings(w, r, account, "Enter a numeric goal")
		return
	}

	if err := h.db.UpdateDailyGoal(r.Context(), account.ID, goalCents); err != nil {
		logger.Error("update goal failed", zap.Error(err), zap.Int64("account_id", account.ID))
		h.renderSettings(w, r, account, "Could not save the goal. Please try again.")
		return
	}

	http.Redirect(w, r, "/settings", http.StatusFound)
}

// UpdateOdometer overwrites the current and/or next-service odometer
// readings. A field left blank is unchanged.
func (h *Handlers) UpdateOdometer(w http.ResponseWriter, r *http.Request) {
	account := GetAccountFromContext(r)

	if err := r.ParseForm(); err != nil {
		h.renderSettings(w, r, account, "Invalid form submission")
		return
	}

	var currentKM, nextServiceKM *int64
	if v := strings.TrimSpace(r.FormValue("odometer_km")); v != "" {
		km, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			h.renderSettings(w, r, account, "Odometer must be a number")
			return
		}
		currentKM = &km
	}
	if v := strings.TrimSpace(r.FormValue("next_service_km")); v != "" {
		km, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			h.renderSettings(w, r, account, "Next service must be a number")
			return
		}
		nextServiceKM = &km
	}

	if err := h.db.UpdateOdometer(r.Context(), account.ID, currentKM, nextServiceKM); err != nil {
		logger.Error("update odometer failed", zap.Error(err), zap.Int64("account_id", account.ID))
		h.renderSettings(w, r, account, "Could not save odometer readings. Please try again.")
		return
	}

	http.Redirect(w, r, "/settings", http.StatusFound)
}
