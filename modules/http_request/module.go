// Package http_request provides the "http_request" job kind: one HTTP call
// per run, failing on transport errors or an unexpected status.
package http_request

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/specialistvlad/tickgrid/internal/ctxlog"
	"github.com/specialistvlad/tickgrid/internal/registry"
	"github.com/specialistvlad/tickgrid/internal/stage"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Client is shared by all jobs to reuse connections. Defaults to a
	// plain http.Client.
	Client *http.Client
}

// Input defines the arguments of an http_request job.
type Input struct {
	URL    string `cty:"url,required"`
	Method string `cty:"method"`
	Body   string `cty:"body"`
	// ExpectStatus is the required status code; zero accepts any 2xx.
	ExpectStatus int    `cty:"expect_status"`
	Timeout      string `cty:"timeout"`
}

func newInput() *Input {
	return &Input{Method: http.MethodGet, Timeout: "10s"}
}

// NewJob validates input and returns the runnable request job.
func (m *Module) NewJob(input *Input) (stage.Job, error) {
	timeout, err := time.ParseDuration(input.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout %q: %w", input.Timeout, err)
	}
	method := strings.ToUpper(input.Method)
	client := m.Client
	if client == nil {
		client = &http.Client{}
	}
	in := *input

	return stage.JobFunc(func(ctx context.Context) error {
		logger := ctxlog.FromContext(ctx).With("method", method, "url", in.URL)
		logger.Debug("Making HTTP request.")

		reqCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		var body io.Reader
		if in.Body != "" {
			body = strings.NewReader(in.Body)
		}
		req, err := http.NewRequestWithContext(reqCtx, method, in.URL, body)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to execute request: %w", err)
		}
		defer resp.Body.Close()
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)

		logger.Debug("Received HTTP response.", "status", resp.Status)
		if !statusOK(resp.StatusCode, in.ExpectStatus) {
			return fmt.Errorf("unexpected status %s from %s", resp.Status, in.URL)
		}
		return nil
	}), nil
}

func statusOK(got, want int) bool {
	if want != 0 {
		return got == want
	}
	return got >= 200 && got < 300
}

// Register registers the job kind with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register("http_request", &registry.JobKind{
		Description: "Performs one HTTP request per run.",
		NewInput:    func() any { return newInput() },
		Build: func(_ context.Context, input any) (stage.Job, error) {
			return m.NewJob(input.(*Input))
		},
	})
}
