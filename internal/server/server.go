/*
Package server implements the application's network transport layer.
It builds the echo router, configures timeouts, and holds the handlers
the routes dispatch to.
*/
package server

import (
	"fmt"
	"net/http"
	"time"

	user "Glupulse_MealPlan/internal/User"
	"Glupulse_MealPlan/internal/admin"
	"Glupulse_MealPlan/internal/auth"
	"Glupulse_MealPlan/internal/database"
	"github.com/prometheus/client_golang/prometheus"
)

// Server defines the configuration and dependencies for the HTTP service.
type Server struct {
	// port specifies the TCP port the server will listen on.
	port int

	// db provides access to the database service and connection pool.
	db database.Service

	auth      *auth.Authenticator
	mealPlans *user.MealPlanHandler
	foods     *user.FoodHandler
	admin     *admin.Handler

	// gatherer backs /metrics.
	gatherer prometheus.Gatherer
}

// Deps are the collaborators main wires into the server.
type Deps struct {
	DB        database.Service
	Auth      *auth.Authenticator
	MealPlans *user.MealPlanHandler
	Foods     *user.FoodHandler
	Admin     *admin.Handler
	Gatherer  prometheus.Gatherer
}

func New(port int, d Deps) *Server {
	if port == 0 {
		port = 8080
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}
	return &Server{
		port:      port,
		db:        d.DB,
		auth:      d.Auth,
		mealPlans: d.MealPlans,
		foods:     d.Foods,
		admin:     d.Admin,
		gatherer:  d.Gatherer,
	}
}

// HTTPServer returns a configured *http.Server with production-ready network timeouts.
// WriteTimeout leaves room for a slow model call.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.RegisterRoutes(), // Injected from routes.go
		IdleTimeout:  time.Minute,        // Time to wait for the next request on keep-alive connections.
		ReadTimeout:  10 * time.Second,   // Maximum duration for reading the entire request.
		WriteTimeout: 90 * time.Second,   // Maximum duration before timing out writes of the response.
	}
}
