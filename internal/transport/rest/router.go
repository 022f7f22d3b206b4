package rest

import (
	"complykit/internal/service"
	"complykit/internal/transport/rest/handler"
	"complykit/internal/transport/rest/middleware"
	"complykit/internal/transport/ws"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService          *service.AuthService
	QuestionnaireService *service.QuestionnaireService
	ResultService        *service.ResultService
	SummaryService       *service.SummaryService
	DocumentService      *service.DocumentService
	WSHub                *ws.Hub
	CORSAllowedOrigins   []string
	Logger               *zap.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	questionnaireHandler := handler.NewQuestionnaireHandler(c.QuestionnaireService, c.Logger)
	resultHandler := handler.NewResultHandler(c.QuestionnaireService, c.ResultService, c.SummaryService, c.Logger)
	documentHandler := handler.NewDocumentHandler(c.DocumentService, c.Logger)
	wsHandler := ws.NewHandler(c.WSHub, c.SummaryService, c.Logger)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService, c.ResultService, c.Logger)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.CORSAllowedOrigins))
	r.Use(middleware.Metrics)

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/questionnaire/steps", questionnaireHandler.Steps).Methods("GET", "OPTIONS")
	v1.HandleFunc("/assessments/classify", questionnaireHandler.Classify).Methods("POST", "OPTIONS")
	v1.HandleFunc("/results/{id}/summary", resultHandler.Summary).Methods("GET", "OPTIONS")

	// WebSocket routes
	v1.HandleFunc("/ws/results/{id}", wsHandler.ResultWS).Methods("GET")

	// Anonymous or signed-in routes
	openRoutes := v1.NewRoute().Subrouter()
	openRoutes.Use(authMW.OptionalUser)

	openRoutes.HandleFunc("/sessions", questionnaireHandler.Start).Methods("POST", "OPTIONS")
	openRoutes.HandleFunc("/sessions/{id}", questionnaireHandler.Get).Methods("GET", "OPTIONS")
	openRoutes.HandleFunc("/sessions/{id}/answers/{questionId}", questionnaireHandler.SetAnswer).Methods("PUT", "OPTIONS")
	openRoutes.HandleFunc("/sessions/{id}/advance", questionnaireHandler.Advance).Methods("POST", "OPTIONS")
	openRoutes.HandleFunc("/sessions/{id}/retreat", questionnaireHandler.Retreat).Methods("POST", "OPTIONS")
	openRoutes.HandleFunc("/results", resultHandler.Submit).Methods("POST", "OPTIONS")
	// History shares the path with Submit, so it lives here and checks the user itself
	openRoutes.HandleFunc("/results", resultHandler.History).Methods("GET")

	// User routes (require identity)
	userRoutes := v1.NewRoute().Subrouter()
	userRoutes.Use(authMW.RequireUser)

	userRoutes.HandleFunc("/results/latest", resultHandler.Latest).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/results/claim", resultHandler.Claim).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/documents/{kind}", documentHandler.Generate).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/documents/{kind}", documentHandler.Get).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/documents/{kind}/preview", documentHandler.Preview).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(allowedOrigins []string) mux.MiddlewareFunc {
	origins := strings.Join(allowedOrigins, ", ")
	if origins == "" {
		origins = "*"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+middleware.ClientIDHeader)

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
