package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/specialistvlad/tickgrid/internal/frame"
)

// reportView is the JSON shape served on /report.
type reportView struct {
	RunID         string            `json:"run_id"`
	Frame         uint64            `json:"frame"`
	Success       bool              `json:"success"`
	Failed        []string          `json:"failed"`
	Skipped       []string          `json:"skipped"`
	DispatchOrder []string          `json:"dispatch_order"`
	Durations     map[string]string `json:"durations"`
	Errors        map[string]string `json:"errors,omitempty"`
	Elapsed       string            `json:"elapsed"`
}

func newReportView(runID string, r *frame.Report) reportView {
	v := reportView{
		RunID:         runID,
		Frame:         r.Frame,
		Success:       r.Success,
		Failed:        nonNil(r.Failed),
		Skipped:       nonNil(r.Skipped),
		DispatchOrder: nonNil(r.DispatchOrder),
		Durations:     make(map[string]string, len(r.Durations)),
		Elapsed:       r.Elapsed.String(),
	}
	for name, d := range r.Durations {
		v.Durations[name] = d.String()
	}
	if len(r.Errors) > 0 {
		v.Errors = make(map[string]string, len(r.Errors))
		for name, err := range r.Errors {
			v.Errors[name] = err.Error()
		}
	}
	return v
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Handler returns the HTTP handler that serves /health and /report.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)
	mux.HandleFunc("/report", a.reportHandler)
	return mux
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

func (a *App) reportHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Report endpoint hit.", "remote_addr", r.RemoteAddr)
	last := a.LastReport()
	if last == nil {
		http.Error(w, "no frame has finished yet", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(newReportView(a.runID, last)); err != nil {
		a.logger.Error("Failed to encode report.", "error", err)
	}
}

func (a *App) newHealthCheckServer() *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", a.config.HealthcheckPort),
		Handler:           a.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// serveHealthCheck runs srv until it is closed. A graceful shutdown is not
// reported as an error.
func (a *App) serveHealthCheck(srv *http.Server) error {
	a.logger.Info("Health check server starting.", "address", fmt.Sprintf("http://localhost%s/health", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("health check server failed: %w", err)
	}
	return nil
}

func (a *App) closeHealthCheckServer(srv *http.Server) {
	if srv == nil {
		a.logger.Debug("Health check server was not running.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a.logger.Info("Shutting down health check server.")
	if err := srv.Shutdown(ctx); err != nil {
		a.logger.Error("Health check server shutdown failed.", "error", err)
		return
	}
	a.logger.Debug("Health check server shut down gracefully.")
}
