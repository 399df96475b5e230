// Package socketio provides the "socketio" job kind: connect to a Socket.IO
// server, optionally emit an event, optionally wait for a reply event.
package socketio

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/specialistvlad/tickgrid/internal/ctxlog"
	"github.com/specialistvlad/tickgrid/internal/registry"
	"github.com/specialistvlad/tickgrid/internal/stage"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments of a socketio job.
type Input struct {
	URL                string    `cty:"url,required"`
	Namespace          string    `cty:"namespace"`
	EmitEvent          string    `cty:"emit_event"`
	EmitData           cty.Value `cty:"emit_data"`
	OnEvent            string    `cty:"on_event"`
	Timeout            string    `cty:"timeout"`
	InsecureSkipVerify bool      `cty:"insecure_skip_verify"`
}

func newInput() *Input {
	return &Input{Namespace: "/", Timeout: "10s"}
}

// config is the validated, immutable form of Input shared by every run.
type config struct {
	baseURL   string
	path      string
	namespace string
	emitEvent string
	emitData  any
	onEvent   string
	timeout   time.Duration
	insecure  bool
}

func newConfig(input *Input) (*config, error) {
	timeout, err := time.ParseDuration(input.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout %q: %w", input.Timeout, err)
	}
	parsedURL, err := url.Parse(input.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("URL %q must include scheme and host", input.URL)
	}

	var data any
	if !input.EmitData.IsNull() {
		if !input.EmitData.IsWhollyKnown() {
			return nil, fmt.Errorf("emit_data is not known")
		}
		raw, err := ctyjson.Marshal(input.EmitData, input.EmitData.Type())
		if err != nil {
			return nil, fmt.Errorf("failed to encode emit_data: %w", err)
		}
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("failed to encode emit_data: %w", err)
		}
	}

	return &config{
		baseURL:   fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host),
		path:      parsedURL.Path,
		namespace: input.Namespace,
		emitEvent: input.EmitEvent,
		emitData:  data,
		onEvent:   input.OnEvent,
		timeout:   timeout,
		insecure:  input.InsecureSkipVerify,
	}, nil
}

// NewJob validates input and returns the runnable Socket.IO job.
func NewJob(input *Input) (stage.Job, error) {
	cfg, err := newConfig(input)
	if err != nil {
		return nil, err
	}
	return stage.JobFunc(func(ctx context.Context) error {
		return cfg.run(ctx)
	}), nil
}

// run performs one connect / emit / await cycle.
func (c *config) run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx).With("job", "socketio", "url", c.baseURL, "on_event", c.onEvent, "emit_event", c.emitEvent)
	logger.Debug("Socket.IO job started.")
	defer logger.Debug("Socket.IO job finished.")

	var isConnected atomic.Bool
	done := make(chan error, 1)
	report := func(err error) {
		select {
		case done <- err:
		default:
		}
	}

	opCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	opts := socket.DefaultOptions()
	opts.SetPath(c.path)
	if c.insecure {
		logger.Warn("Skipping TLS certificate verification.")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(c.baseURL, opts)
	io := manager.Socket(c.namespace, opts)
	defer io.Disconnect()

	io.On(types.EventName("connect"), func(...any) {
		isConnected.Store(true)
		logger.Debug("Connected.", "namespace", c.namespace, "sid", io.Id())
		if c.emitEvent != "" {
			logger.Debug("Emitting event.", "event", c.emitEvent)
			io.Emit(c.emitEvent, c.emitData)
		}
		if c.onEvent == "" {
			report(nil)
		}
	})

	io.On(types.EventName("connect_error"), func(errs ...any) {
		if len(errs) > 0 {
			if err, ok := errs[0].(error); ok {
				report(fmt.Errorf("connection failed: %w", err))
				return
			}
		}
		report(fmt.Errorf("connection failed"))
	})

	if c.onEvent != "" {
		io.On(types.EventName(c.onEvent), func(data ...any) {
			logger.Debug("Received reply event.", "args", len(data))
			report(nil)
		})
	}

	io.Connect()

	select {
	case <-opCtx.Done():
		if isConnected.Load() {
			return fmt.Errorf("timed out after connecting while waiting for event '%s'", c.onEvent)
		}
		return fmt.Errorf("timed out while waiting for initial connection")
	case err := <-done:
		return err
	}
}

// Register registers the job kind with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register("socketio", &registry.JobKind{
		Description: "Connects to a Socket.IO server, emits and awaits events.",
		NewInput:    func() any { return newInput() },
		Build: func(_ context.Context, input any) (stage.Job, error) {
			return NewJob(input.(*Input))
		},
	})
}
