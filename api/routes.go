package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/garnizeh/cpdtrack/internal/blob"
	"github.com/garnizeh/cpdtrack/internal/config"
	"github.com/garnizeh/cpdtrack/internal/cpd"
	"github.com/garnizeh/cpdtrack/internal/db"
	"github.com/garnizeh/cpdtrack/internal/identity"
	"github.com/garnizeh/cpdtrack/internal/repository/sqlite"
	"github.com/garnizeh/cpdtrack/internal/session"
)

// SetupRoutes wires repositories, services and handlers. A nil mailer logs
// verification links instead of sending them.
func SetupRoutes(cfg *config.Config, version, buildTime string, conn *db.DB, blobs blob.Store, mailer identity.Mailer) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Repository and services
	repo := sqlite.New(conn, logger)
	broker := session.NewBroker(logger)
	identitySvc := identity.NewService(logger, repo, repo, repo, mailer, broker, identity.Options{
		Secret:               cfg.JWTSecret,
		TokenDuration:        cfg.TokenDuration,
		VerifyTokenDuration:  cfg.Auth.VerifyTokenDuration,
		RequireVerifiedEmail: cfg.Auth.RequireVerifiedEmail,
		PublicURL:            cfg.Auth.PublicURL,
	})
	cpdSvc := cpd.NewService(logger, repo, repo, repo, blobs, cpd.Options{
		ValidateOnEdit: cfg.Logs.ValidateOnEdit,
		RecentLimit:    cfg.Logs.RecentLimit,
	})

	// Create handlers
	systemHandler := NewSystemHandler(conn.GetConn())
	authHandler := NewAuthHandler(identitySvc, identity.NewGoogle(identitySvc, cfg.Google), cfg.Auth.LoginURL, cfg.Google.SuccessURL)
	logsHandler := NewLogsHandler(cpdSvc, cfg.Storage.MaxUploadSize)
	reportsHandler := NewReportsHandler(cpdSvc)
	profileHandler := NewProfileHandler(identitySvc)
	eventsHandler := NewEventsHandler(broker)

	// Preflight requests only need the CORS headers.
	r.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/v1/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/v1/auth/signin", authHandler.Signin).Methods("POST")
	r.HandleFunc("/v1/auth/verify", authHandler.Verify).Methods("GET")
	r.HandleFunc("/v1/auth/google", authHandler.GoogleLogin).Methods("GET")
	r.HandleFunc("/v1/auth/google/callback", authHandler.GoogleCallback).Methods("GET")

	if local, ok := blobs.(*blob.Local); ok {
		r.PathPrefix("/attachments/").Handler(http.StripPrefix("/attachments/", http.FileServer(http.Dir(local.Dir())))).Methods("GET")
	}

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(AuthMiddleware(identitySvc))

	// Auth endpoints
	authV1 := apiV1.PathPrefix("/auth").Subrouter()
	authV1.HandleFunc("/signout", authHandler.Signout).Methods("POST")
	authV1.HandleFunc("/session", authHandler.Session).Methods("GET")
	apiV1.HandleFunc("/session/events", eventsHandler.Stream).Methods("GET")

	// Profile endpoints
	apiV1.HandleFunc("/profile", profileHandler.GetProfile).Methods("GET")
	apiV1.HandleFunc("/profile", profileHandler.UpdateProfile).Methods("PATCH")

	// Log endpoints
	apiV1.HandleFunc("/logs", logsHandler.ListLogs).Methods("GET")
	apiV1.HandleFunc("/logs", logsHandler.CreateLog).Methods("POST")
	apiV1.HandleFunc("/logs/{id}", logsHandler.GetLog).Methods("GET")
	apiV1.HandleFunc("/logs/{id}", logsHandler.UpdateLog).Methods("PUT")
	apiV1.HandleFunc("/logs/{id}", logsHandler.DeleteLog).Methods("DELETE")

	// Reporting and goal endpoints
	apiV1.HandleFunc("/stats", reportsHandler.Stats).Methods("GET")
	apiV1.HandleFunc("/years", reportsHandler.Years).Methods("GET")
	apiV1.HandleFunc("/compliance", reportsHandler.Compliance).Methods("GET")
	apiV1.HandleFunc("/dashboard", reportsHandler.Dashboard).Methods("GET")
	apiV1.HandleFunc("/goals/{year:[0-9]{4}}", reportsHandler.GetGoal).Methods("GET")
	apiV1.HandleFunc("/goals/{year:[0-9]{4}}", reportsHandler.SetGoal).Methods("PUT")

	return r
}
