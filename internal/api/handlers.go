package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/yourusername/match-predictor/internal/models"
	"github.com/yourusername/match-predictor/internal/service"
)

// PredictResponse is the body of GET /predict.
type PredictResponse struct {
	Country string                    `json:"country"`
	Results []service.MatchPrediction `json:"results"`
}

// OptionsResponse is the body of GET /matches/{id}/options.
type OptionsResponse struct {
	MatchID string                `json:"match_id"`
	Options []models.LabeledQuote `json:"options"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, banner)
}

// handlePredict serves GET /predict?pays=&country_code=&count=&min_price=&max_price=&floor=
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRequest(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if req.Country == "" {
		s.respondError(w, http.StatusBadRequest, "query parameter 'pays' is required", nil)
		return
	}

	results, err := s.predictor.Predict(r.Context(), req)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	if results == nil {
		results = []service.MatchPrediction{}
	}
	s.respondJSON(w, http.StatusOK, PredictResponse{Country: req.Country, Results: results})
}

// handleOptions serves GET /matches/{id}/options?country_code=&count=
func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRequest(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	matchID := chi.URLParam(r, "id")

	options, err := s.predictor.MatchOptions(r.Context(), req, matchID)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	if options == nil {
		options = []models.LabeledQuote{}
	}
	s.respondJSON(w, http.StatusOK, OptionsResponse{MatchID: matchID, Options: options})
}

// handleWebsocket upgrades the connection and registers the client with the hub.
// An optional ?pays= subscribes the client to one country.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	c := NewClient(uuid.New().String(), conn, s.hub, r.URL.Query().Get("pays"))
	s.hub.Register(c)

	// the request context ends when the handler returns
	ctx := context.WithoutCancel(r.Context())
	go c.WritePump(ctx)
	go c.ReadPump(ctx)
}

// parseRequest reads the shared query parameters. A band is built only when
// one of its bounds is given; missing bounds fall back to the default band.
func (s *Server) parseRequest(r *http.Request) (service.Request, error) {
	q := r.URL.Query()
	req := service.Request{Country: q.Get("pays")}

	var err error
	if req.CountryCode, err = intParam(q.Get("country_code")); err != nil {
		return req, fmt.Errorf("invalid country_code: %w", err)
	}
	if req.Count, err = intParam(q.Get("count")); err != nil {
		return req, fmt.Errorf("invalid count: %w", err)
	}

	band := s.cfg.DefaultBand
	overridden := false
	for _, p := range []struct {
		name string
		dst  *float64
	}{
		{"min_price", &band.MinPrice},
		{"max_price", &band.MaxPrice},
		{"floor", &band.ProbabilityFloor},
	} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return req, fmt.Errorf("invalid %s: %q", p.name, raw)
		}
		*p.dst = v
		overridden = true
	}
	if overridden {
		if err := band.Validate(); err != nil {
			return req, err
		}
		req.Band = &band
	}
	return req, nil
}

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", raw)
	}
	if v < 0 {
		return 0, fmt.Errorf("%d is negative", v)
	}
	return v, nil
}

func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrCountryRequired):
		s.respondError(w, http.StatusBadRequest, "query parameter 'pays' is required", nil)
	case errors.Is(err, models.ErrInvalidBand):
		s.respondError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, models.ErrMatchNotFound):
		s.respondError(w, http.StatusNotFound, "match not found", nil)
	default:
		s.respondError(w, http.StatusBadGateway, "unable to fetch data from the live feed", err)
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		s.logger.WithError(err).Error(message)
	}
	s.respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}
