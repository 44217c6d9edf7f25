package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/plot/vg"

	"tem/calculator"
	"tem/export"
	"tem/material"
	"tem/model"
	"tem/store"
)

type Server struct {
	cfg      calculator.Config
	catalog  *material.Catalog
	store    store.Store
	metrics  *Metrics
	log      log.FieldLogger
	upgrader websocket.Upgrader
}

func NewServer(cfg calculator.Config, catalog *material.Catalog, st store.Store, logger log.FieldLogger) *Server {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Server{
		cfg:     cfg,
		catalog: catalog,
		store:   st,
		metrics: NewMetrics(),
		log:     logger.WithField("component", "server"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/ws", s.serveWs)
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))
	r.Route("/runs", func(r chi.Router) {
		r.Get("/", s.listRuns)
		r.Post("/", s.createRun)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getRun)
			r.Delete("/", s.deleteRun)
			r.Get("/nodes.csv", s.getNodesCSV)
			r.Get("/field.png", s.getFieldPNG)
		})
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.WithFields(log.Fields{
			"method":  r.Method,
			"path":    r.URL.Path,
			"status":  ww.Status(),
			"elapsed": time.Since(start),
		}).Debug("request")
	})
}

// Serve listens on the configured address until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.cfg.Addr).Info("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) loadRun(w http.ResponseWriter, r *http.Request) (*model.Run, bool) {
	run, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		s.log.WithError(err).Error("load run")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return run, true
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids)
}

// createRun solves synchronously. A solver that stops at the iteration cap
// still answers 201 with converged=false.
func (s *Server) createRun(w http.ResponseWriter, r *http.Request) {
	var req model.RunRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid run request: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	summary, res, err := s.execute(r.Context(), req, nil)
	var ce *calculator.ConvergenceError
	switch {
	case err == nil, errors.As(err, &ce):
		writeJSON(w, http.StatusCreated, summary)
	case res == nil && errors.Is(err, calculator.ErrConfig),
		errors.Is(err, calculator.ErrBoundaryConfig),
		errors.Is(err, calculator.ErrInitialization):
		writeJSON(w, http.StatusBadRequest, summary)
	default:
		writeJSON(w, http.StatusInternalServerError, summary)
	}
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	if run, ok := s.loadRun(w, r); ok {
		writeJSON(w, http.StatusOK, run.Summary)
	}
}

func (s *Server) deleteRun(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getNodesCSV(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	if err := export.WriteCSV(w, run.Nodes, true); err != nil {
		s.log.WithError(err).Error("write csv")
	}
}

func (s *Server) getFieldPNG(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if err := export.HeatMap(w, run.Nodes, 16*vg.Centimeter, 8*vg.Centimeter, "png"); err != nil {
		s.log.WithError(err).Error("render heat map")
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	}
}
