package loadtest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Target is an endpoint under load.
type Target struct {
	Name string
	URL  string
}

// Sample is the outcome of one request.
type Sample struct {
	Target  string
	Phase   string
	Start   time.Time
	Latency time.Duration
	// Status is zero when the request failed before a response.
	Status int
	Err    error
}

// Failed reports whether the sample counts as an error.
func (s Sample) Failed() bool {
	return s.Err != nil || s.Status != http.StatusOK
}

// Runner sends the requests of a plan.
type Runner struct {
	client *http.Client
	logger *zap.Logger
	runID  string
}

// RunIDHeader carries the run id on every request, when one is set.
const RunIDHeader = "X-Loadgen-Run"

type Option func(*Runner)

func WithHTTPClient(c *http.Client) Option {
	return func(r *Runner) {
		r.client = c
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithRunID tags every request with id so access logs can be filtered by run.
func WithRunID(id string) Option {
	return func(r *Runner) {
		r.runID = id
	}
}

func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		client: http.DefaultClient,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run plays every phase of plan against all targets at once, so each target
// sees the same traffic shape. Cancelling ctx stops the run; the samples
// collected so far are returned with the context error.
func (r *Runner) Run(ctx context.Context, targets []Target, plan Plan) ([]Sample, error) {
	if len(targets) == 0 {
		return nil, errors.New("no targets")
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		samples []Sample
	)
	record := func(s Sample) {
		mu.Lock()
		samples = append(samples, s)
		mu.Unlock()
	}

	for _, phase := range plan.Phases {
		logger := r.logger.With(zap.String("phase", phase.Name))
		logger.Info("phase start",
			zap.Duration("duration", phase.Duration),
			zap.Float64("rps", phase.RPS),
			zap.Int("concurrency", phase.Concurrency),
		)

		g := new(errgroup.Group)
		for _, target := range targets {
			g.Go(func() error {
				r.runPhase(ctx, target, phase, plan.requestTimeout(), record)
				return nil
			})
		}
		_ = g.Wait()

		if err := ctx.Err(); err != nil {
			logger.Warn("run cancelled", zap.Error(err))
			return samples, err
		}
		logger.Info("phase end")
	}
	return samples, nil
}

// runPhase paces requests to one target for the phase duration. Requests
// still in flight when the phase ends are waited for.
func (r *Runner) runPhase(ctx context.Context, target Target, phase Phase, timeout time.Duration, record func(Sample)) {
	phaseCtx, cancel := context.WithTimeout(ctx, phase.Duration)
	defer cancel()

	limiter := rate.NewLimiter(rate.Limit(phase.RPS), 1)
	g := new(errgroup.Group)
	g.SetLimit(phase.Concurrency)
	for {
		if err := limiter.Wait(phaseCtx); err != nil {
			break
		}
		g.Go(func() error {
			s := r.do(ctx, target, timeout)
			s.Phase = phase.Name
			record(s)
			return nil
		})
	}
	_ = g.Wait()
}

func (r *Runner) do(ctx context.Context, target Target, timeout time.Duration) Sample {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	s := Sample{Target: target.Name, Start: time.Now()}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.URL, nil)
	if err != nil {
		s.Err = fmt.Errorf("building request: %w", err)
		return s
	}
	if r.runID != "" {
		req.Header.Set(RunIDHeader, r.runID)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		s.Latency = time.Since(s.Start)
		s.Err = err
		return s
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	s.Latency = time.Since(s.Start)
	s.Status = resp.StatusCode
	if s.Status != http.StatusOK {
		r.logger.Debug("unexpected status", zap.String("target", target.Name), zap.Int("status", s.Status))
	}
	return s
}
