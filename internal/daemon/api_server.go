package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"slidecast/internal/api"
	"slidecast/internal/config"
	"slidecast/internal/jobstore"
	"slidecast/internal/logging"
	"slidecast/internal/services"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:   strings.TrimSpace(cfg.Paths.APIBind),
		logger: logging.NewComponentLogger(logger, "api-server"),
		daemon: d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", srv.handleHealth)
	mux.HandleFunc("/api/video/process", srv.handleProcess)
	mux.HandleFunc("/api/jobs/", srv.handleJob)
	mux.HandleFunc("/api/videos/history", srv.handleHistory)
	mux.HandleFunc("/api/video/", srv.handleDelete)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	if s.bind == "" {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"running": s.daemon.Running(),
	})
}

func (s *apiServer) handleProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req jobstore.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	job, err := s.daemon.Submit(r.Context(), req)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusAccepted, api.ProcessResponse{JobID: job.ID, Status: job.Status})
}

// handleJob serves GET /api/jobs/{id} and POST /api/jobs/{id}/cancel.
func (s *apiServer) handleJob(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	if cancelID, ok := strings.CutSuffix(rest, "/cancel"); ok {
		s.handleCancel(w, r, cancelID)
		return
	}
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := rest
	if id == "" || strings.Contains(id, "/") {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}
	job, err := s.daemon.store.GetByID(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err, "job not found")
		return
	}
	history, err := s.daemon.store.History(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromJob(job, history))
}

func (s *apiServer) handleCancel(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if id == "" || strings.Contains(id, "/") {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if err := s.daemon.store.RequestCancel(r.Context(), id); err != nil {
		s.writeStoreError(w, err, "job not found")
		return
	}
	job, err := s.daemon.store.GetByID(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err, "job not found")
		return
	}
	s.writeJSON(w, http.StatusOK, api.ProcessResponse{JobID: job.ID, Status: job.Status})
}

func (s *apiServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var statuses []jobstore.Status
	for _, value := range r.URL.Query()["status"] {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			statuses = append(statuses, jobstore.Status(trimmed))
		}
	}
	if len(statuses) == 0 {
		statuses = []jobstore.Status{jobstore.StatusCompleted}
	}
	jobs, err := s.daemon.store.List(r.Context(), statuses...)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	payloads := make([]api.Job, 0, len(jobs))
	for _, job := range jobs {
		payloads = append(payloads, api.FromJob(job, nil))
	}
	s.writeJSON(w, http.StatusOK, api.HistoryResponse{Videos: payloads})
}

func (s *apiServer) handleDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/video/")
	if id == "" || strings.Contains(id, "/") {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if err := s.daemon.DeleteJob(r.Context(), id); err != nil {
		s.writeStoreError(w, err, "job not found")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

func (s *apiServer) writeStoreError(w http.ResponseWriter, err error, notFound string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		s.writeError(w, http.StatusNotFound, notFound)
	case errors.Is(err, services.ErrValidation):
		s.writeError(w, http.StatusConflict, err.Error())
	default:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
