package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// maxRequestBytes bounds the size of an accepted request body.
const maxRequestBytes = 8 << 20

type server struct {
	logger *slog.Logger
}

// NewHandler returns the HTTP surface of the analysis service. POST /plot
// and POST / accept a Request and answer with a Response or an error body.
func NewHandler(logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &server{logger: logger}
	mux := http.NewServeMux()
	mux.HandleFunc("/plot", s.handlePlot)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/", s.handlePlot)
	return mux
}

// ListenAndServe runs the service on addr until ctx is cancelled.
func ListenAndServe(ctx context.Context, addr string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewHandler(logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info("analysis service listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("analysis service shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handlePlot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
		return
	}

	var req Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		s.logger.Warn("plot request rejected", "error", err)
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON: " + err.Error()})
		return
	}

	start := time.Now()
	resp, err := Compute(req)
	switch {
	case errors.Is(err, ErrNoData):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	case err != nil:
		s.logger.Error("plot failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
		return
	}
	s.logger.Info("plot ok",
		"rows", len(req.Data),
		"series", len(resp.Series),
		"intersection", resp.Intersection != nil,
		"elapsed", time.Since(start),
	)
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
