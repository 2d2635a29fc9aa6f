package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"motogiro/internal/handlers"
	"motogiro/internal/report"
	"motogiro/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupRouter(t *testing.T) {
	db, err := storage.NewDB(":memory:")
	require.NoError(t, err, "failed to create database")
	defer db.Close()

	if _, err := os.Stat("../../web/templates"); os.IsNotExist(err) {
		t.Skip("Template directory not found, skipping router test")
	}

	h := handlers.NewHandlers(db, report.NewGenerator(db), "../../web/templates", false)

	mux := setupRouter(h, "../../web/static")

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{
			name:       "Dashboard requires auth",
			method:     "GET",
			path:       "/",
			wantStatus: http.StatusFound,
		},
		{
			name:       "Login form is public",
			method:     "GET",
			path:       "/login",
			wantStatus: http.StatusOK,
		},
		{
			name:       "Register form is public",
			method:     "GET",
			path:       "/register",
			wantStatus: http.StatusOK,
		},
		{
			name:       "Static file access",
			method:     "GET",
			path:       "/static/style.css",
			wantStatus: http.StatusOK,
		},
		{
			name:       "CSV export requires auth",
			method:     "GET",
			path:       "/export.csv",
			wantStatus: http.StatusFound,
		},
		{
			name:       "Chart data requires auth",
			method:     "GET",
			path:       "/chart/weekly",
			wantStatus: http.StatusFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, http.NoBody)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code,
				"%s %s returned unexpected status", tt.method, tt.path)
		})
	}
}
