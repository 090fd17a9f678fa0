package handlers

import (
	"database/sql"
	"net/http"
)

const serviceVersion = "1.0.0"

// HealthResponse reports service and database status.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Version  string `json:"version"`
}

// Healthz returns a health-check handler that pings the database.
func Healthz(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		database := "connected"
		if err := db.PingContext(r.Context()); err != nil {
			database = "not connected"
		}
		writeJSON(w, http.StatusOK, HealthResponse{
			Status:   "up",
			Database: database,
			Version:  serviceVersion,
		})
	}
}
