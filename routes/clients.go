package routes

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/shiyao1122/activity-system/controllers/clients"
	"github.com/shiyao1122/activity-system/middleware"
)

// ClientRoutes wires the reporting API under /api/v1, behind the shared
// X-API-Key and a per-IP rate limit on the write path.
func ClientRoutes(r *mux.Router) {
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.APIKeyMiddleware)

	maxReq := 600
	if s := os.Getenv("REPORT_RATE_LIMIT"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			maxReq = v
		}
	}
	var trusted []string
	if s := os.Getenv("TRUSTED_PROXIES"); s != "" {
		trusted = append(trusted, s)
	}
	reportLimiter := middleware.NewIPRateLimiter(maxReq, time.Minute, trusted)

	api.Handle("/task/report", reportLimiter.Middleware(http.HandlerFunc(clients.TaskReportHandler))).Methods(http.MethodPost)
	api.Handle("/user/status", http.HandlerFunc(clients.UserStatusHandler)).Methods(http.MethodGet)
	api.Handle("/activity/{id}", http.HandlerFunc(clients.ActivityDetailsHandler)).Methods(http.MethodGet)
}
