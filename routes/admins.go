package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/shiyao1122/activity-system/controllers/admins"
	"github.com/shiyao1122/activity-system/middleware"
)

// AdminRoutes wires the management API under /api/admin, behind X-Admin-Key.
func AdminRoutes(r *mux.Router) {
	api := r.PathPrefix("/api/admin").Subrouter()
	api.Use(middleware.AdminKeyMiddleware)

	// Dashboard
	api.Handle("/stats/{activityId}", http.HandlerFunc(admins.StatsHandler)).Methods(http.MethodGet)
	api.Handle("/export/rank", http.HandlerFunc(admins.ExportRankHandler)).Methods(http.MethodGet)

	// Manual adjustment
	api.Handle("/task/adjust", http.HandlerFunc(admins.AdjustPointsHandler)).Methods(http.MethodPost)

	// Activity
	api.Handle("/activity", http.HandlerFunc(admins.ActivityCreateHandler)).Methods(http.MethodPost)
	api.Handle("/activity", http.HandlerFunc(admins.ActivityListHandler)).Methods(http.MethodGet)
	api.Handle("/activity/{id}", http.HandlerFunc(admins.ActivityGetHandler)).Methods(http.MethodGet)
	api.Handle("/activity/{id}", http.HandlerFunc(admins.ActivityUpdateHandler)).Methods(http.MethodPut)
	api.Handle("/activity/{id}", http.HandlerFunc(admins.ActivityDeleteHandler)).Methods(http.MethodDelete)
	api.Handle("/activity/{id}/clone", http.HandlerFunc(admins.ActivityCloneHandler)).Methods(http.MethodPost)

	// Task
	api.Handle("/task", http.HandlerFunc(admins.TaskCreateHandler)).Methods(http.MethodPost)
	api.Handle("/task", http.HandlerFunc(admins.TaskListHandler)).Methods(http.MethodGet)
	api.Handle("/task/{id}", http.HandlerFunc(admins.TaskUpdateHandler)).Methods(http.MethodPut)
	api.Handle("/task/{id}", http.HandlerFunc(admins.TaskDeleteHandler)).Methods(http.MethodDelete)

	// Translation assist
	api.Handle("/translate", http.HandlerFunc(admins.TranslateHandler)).Methods(http.MethodPost)
}
