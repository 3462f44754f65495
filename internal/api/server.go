// Package api exposes predictions over HTTP and pushes refreshed batches to websocket clients.
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/match-predictor/internal/metrics"
	"github.com/yourusername/match-predictor/internal/models"
	"github.com/yourusername/match-predictor/internal/service"
)

const banner = "Welcome to the match prediction API"

// Predictor is the prediction surface served over HTTP.
type Predictor interface {
	Predict(ctx context.Context, req service.Request) ([]service.MatchPrediction, error)
	MatchOptions(ctx context.Context, req service.Request, matchID string) ([]models.LabeledQuote, error)
}

// Config holds the HTTP server settings.
type Config struct {
	AllowedOrigins   []string
	DefaultBand      models.Band
	WebsocketEnabled bool
	RequestTimeout   time.Duration
}

// Server wires the HTTP routes to the prediction service and websocket hub
type Server struct {
	predictor Predictor
	hub       *Hub
	cfg       Config
	logger    *logrus.Logger
	upgrader  websocket.Upgrader
	router    chi.Router
}

// NewServer creates the API server. hub may be nil when websockets are disabled.
func NewServer(predictor Predictor, hub *Hub, cfg Config, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	s := &Server{
		predictor: predictor,
		hub:       hub,
		cfg:       cfg,
		logger:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.requestMetrics)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// websocket connections outlive the request timeout
	if s.cfg.WebsocketEnabled && s.hub != nil {
		r.Get("/ws", s.handleWebsocket)
	}
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(s.cfg.RequestTimeout))
		r.Get("/", s.handleIndex)
		r.Get("/predict", s.handlePredict)
		r.Get("/matches/{id}/options", s.handleOptions)
	})

	return r
}

// requestMetrics counts requests per route pattern and logs them
func (s *Server) requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.RecordHTTPRequest(route, strconv.Itoa(status))

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"route":       route,
			"status":      status,
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  chimiddleware.GetReqID(r.Context()),
		}).Debug("HTTP request")
	})
}
