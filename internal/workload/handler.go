// Package workload implements a request handler that simulates a backend
// with a one-time initialization cost (cold start) and a fixed per-request
// processing latency.
package workload

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"go.uber.org/zap"
)

// State is the initialization state of a Handler.
type State int

const (
	Uninitialized State = iota
	Ready
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// ResponseBody is returned on every successful invocation.
const ResponseBody = "OK"

// Handler serves invocations for one execution environment. Build one per
// process and reuse it for every invocation.
type Handler struct {
	cfg    Config
	logger *zap.Logger
	sleep  Sleeper

	// initLock is held for the whole cold start; a one-slot channel so
	// waiters can give up when their context ends.
	initLock chan struct{}

	mu    sync.Mutex
	state State
}

// Option customizes a Handler.
type Option func(*Handler)

// WithLogger sets the logger used for progress lines.
func WithLogger(l *zap.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithSleeper replaces the timer-based wait.
func WithSleeper(s Sleeper) Option {
	return func(h *Handler) {
		if s != nil {
			h.sleep = s
		}
	}
}

// New returns an uninitialized Handler.
func New(cfg Config, opts ...Option) *Handler {
	h := &Handler{
		cfg:    cfg,
		logger: zap.NewNop(),
		sleep:  TimerSleep,
		state:  Uninitialized,

		initLock: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// State reports whether the cold start has been paid.
func (h *Handler) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Handle runs one invocation. The payload is ignored. The only error is the
// context's, when the caller gives up before the delays elapse.
func (h *Handler) Handle(ctx context.Context, _ json.RawMessage) (events.APIGatewayProxyResponse, error) {
	logger := h.logger
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		logger = logger.With(zap.String("requestId", lc.AwsRequestID))
	}

	if err := h.initialize(ctx, logger); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	logger.Info("execution start", zap.Duration("workTime", h.cfg.WorkTime))
	start := time.Now()
	if err := h.sleep(ctx, h.cfg.WorkTime); err != nil {
		logger.Warn("execution aborted", zap.Error(err))
		return events.APIGatewayProxyResponse{}, err
	}
	logger.Info("execution end", zap.Duration("elapsed", time.Since(start)))

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Body:       ResponseBody,
	}, nil
}

// initialize pays the cold start once. Callers racing on a fresh handler
// wait for the first one to finish, or for their own context to end.
func (h *Handler) initialize(ctx context.Context, logger *zap.Logger) error {
	if h.State() == Ready {
		return nil
	}

	select {
	case h.initLock <- struct{}{}:
	case <-ctx.Done():
		logger.Warn("init wait aborted", zap.Error(ctx.Err()))
		return ctx.Err()
	}
	defer func() { <-h.initLock }()

	if h.State() == Ready {
		return nil
	}

	logger.Info("init start", zap.Duration("coldStartTime", h.cfg.ColdStartTime))
	start := time.Now()
	if err := h.sleep(ctx, h.cfg.ColdStartTime); err != nil {
		logger.Warn("init aborted", zap.Error(err))
		return err
	}
	h.mu.Lock()
	h.state = Ready
	h.mu.Unlock()
	logger.Info("init end", zap.Duration("elapsed", time.Since(start)))
	return nil
}
