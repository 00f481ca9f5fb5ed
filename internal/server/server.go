// Package server serves a sprint report over HTTP: the rendered HTML report
// and a small JSON API over its data.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/robby/sprintreport/internal/report"
)

const shutdownTimeout = 5 * time.Second

// Server exposes one report.
type Server struct {
	report *report.Report
	router *mux.Router
}

// New creates a server for a report. The report's template renders GET /.
func New(r *report.Report) *Server {
	s := &Server{report: r, router: mux.NewRouter()}
	s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	s.router.Use(logRequests)

	s.router.HandleFunc("/", s.handleReport).Methods(http.MethodGet)

	s.router.HandleFunc("/api/report", s.handleData).Methods(http.MethodGet)
	s.router.HandleFunc("/api/cards/{id}", s.handleCard).Methods(http.MethodGet)
	s.router.HandleFunc("/api/labels/{id}/cards", s.handleLabelCards).Methods(http.MethodGet)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("Report server starting", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.report.Generate(&buf); err != nil {
		slog.Error("Failed to render report", "error", err)
		http.Error(w, "failed to render report", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.report.Data())
}

func (s *Server) handleCard(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	card, ok := s.report.Card(id)
	if !ok {
		writeError(w, http.StatusNotFound, "card not found: "+id)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (s *Server) handleLabelCards(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, ok := s.report.Label(id); !ok {
		writeError(w, http.StatusNotFound, "label not found: "+id)
		return
	}
	cards := s.report.CardsWithLabel(id)
	if cards == nil {
		cards = []report.CardView{}
	}
	writeJSON(w, http.StatusOK, cards)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("Request served", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
