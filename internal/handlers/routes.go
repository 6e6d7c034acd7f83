package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ukydev/fleet-maintenance/internal/middleware"
	"github.com/ukydev/fleet-maintenance/internal/models"
)

// SetupRoutes configures all API routes
func SetupRoutes(r *mux.Router, authHandler *AuthHandler, dashboard *DashboardHandler, actions *ActionHandler, m *middleware.AuthMiddleware) {
	r.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(m.Authenticate)

	// Auth endpoints
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/me", authHandler.Me).Methods("GET")

	// Dashboard endpoints
	api.HandleFunc("/dashboard/pm-board", dashboard.PMBoard).Methods("GET")
	api.HandleFunc("/dashboard/scoreboard", dashboard.Scoreboard).Methods("GET")
	api.HandleFunc("/dashboard/trends", dashboard.Trends).Methods("GET")
	api.HandleFunc("/events", dashboard.Events).Methods("GET")
	api.HandleFunc("/assets/{id}/health", dashboard.AssetHealth).Methods("GET")

	// Closing a request is the one event write; gated by permission so
	// mechanics can close their own work orders but operators cannot
	api.Handle("/events/{id}/close", m.RequirePermission("close_request")(http.HandlerFunc(dashboard.CloseRequest))).Methods("POST")

	// Accountability actions: manager or admin only
	managerOnly := m.RequireRole(models.RoleManager)
	api.Handle("/actions", managerOnly(http.HandlerFunc(actions.Create))).Methods("POST")
	api.Handle("/actions", managerOnly(http.HandlerFunc(actions.List))).Methods("GET")
	api.Handle("/actions/{id}/resolve", managerOnly(http.HandlerFunc(actions.Resolve))).Methods("POST")
	api.Handle("/actions/{id}/dismiss", managerOnly(http.HandlerFunc(actions.Dismiss))).Methods("POST")
}
