package api

import (
	"net/http"
	"time"
)

// endpoint describes a route for /api/docs.
type endpoint struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
	Auth        bool   `json:"auth"`
}

var endpoints = []endpoint{
	{"POST", "/api/auth", "Register a new user", false},
	{"PUT", "/api/auth", "Login existing user", false},
	{"DELETE", "/api/auth", "Logout a user", true},
	{"GET", "/api/order/menu", "Get the pizza menu", false},
	{"PUT", "/api/order/menu", "Add an item to the menu (admin)", true},
	{"GET", "/api/order", "Get the orders for the authenticated user", true},
	{"POST", "/api/order", "Create an order for the authenticated user", true},
	{"GET", "/api/franchise", "List all the franchises", false},
	{"POST", "/api/franchise", "Create a new franchise (admin)", true},
	{"DELETE", "/api/franchise/:franchiseId", "Delete a franchise (admin)", true},
	{"POST", "/api/franchise/:franchiseId/store", "Create a new franchise store", true},
	{"DELETE", "/api/franchise/:franchiseId/store/:storeId", "Delete a store", true},
	{"GET", "/api/health/status", "Get service health status", false},
	{"GET", "/api/health/metrics", "Get detailed service metrics", false},
	{"GET", "/api/health/ready", "Check database and integration readiness", false},
}

func (h *handlers) healthStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"version":   h.deps.Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// healthMetrics always answers 200 with the current summary.
func (h *handlers) healthMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Metrics.BuildSummary())
}

func (h *handlers) docs(w http.ResponseWriter, r *http.Request) {
	factoryURL := ""
	if h.deps.Factory != nil {
		factoryURL = h.deps.Factory.BaseURL()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"version":   h.deps.Version,
		"endpoints": endpoints,
		"config":    map[string]string{"factory": factoryURL},
	})
}

func (h *handlers) welcome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "welcome to JWT Pizza",
		"version": h.deps.Version,
	})
}
