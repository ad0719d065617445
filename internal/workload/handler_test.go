package workload

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// recordingSleeper captures requested delays without waiting.
type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.delays = append(r.delays, d)
	r.mu.Unlock()
	return ctx.Err()
}

func (r *recordingSleeper) take() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.delays
	r.delays = nil
	return out
}

func testConfig() Config {
	return Config{Profile: ProfileStandard, WorkTime: 20 * time.Millisecond, ColdStartTime: 200 * time.Millisecond}
}

func TestHandle_FirstInvocationPaysColdStart(t *testing.T) {
	rec := &recordingSleeper{}
	h := New(testConfig(), WithSleeper(rec.sleep))
	require.Equal(t, Uninitialized, h.State())

	resp, err := h.Handle(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, ResponseBody, resp.Body)
	assert.Equal(t, []time.Duration{200 * time.Millisecond, 20 * time.Millisecond}, rec.take())
	assert.Equal(t, Ready, h.State())

	for i := 0; i < 3; i++ {
		resp, err = h.Handle(context.Background(), []byte(`{"ignored":true}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, ResponseBody, resp.Body)
		assert.Equal(t, []time.Duration{20 * time.Millisecond}, rec.take(), "warm invocation %d", i)
		assert.Equal(t, Ready, h.State())
	}
}

func TestHandle_FreshHandlerStartsCold(t *testing.T) {
	rec := &recordingSleeper{}
	first := New(testConfig(), WithSleeper(rec.sleep))
	_, err := first.Handle(context.Background(), nil)
	require.NoError(t, err)
	rec.take()

	second := New(testConfig(), WithSleeper(rec.sleep))
	require.Equal(t, Uninitialized, second.State())
	_, err = second.Handle(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{200 * time.Millisecond, 20 * time.Millisecond}, rec.take())
}

func TestHandle_ZeroDelaysReturnImmediately(t *testing.T) {
	h := New(Config{Profile: ProfileStandard})

	start := time.Now()
	resp, err := h.Handle(context.Background(), nil)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 50*time.Millisecond)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, ResponseBody, resp.Body)
	assert.Equal(t, Ready, h.State())
}

func TestHandle_ObservedLatency(t *testing.T) {
	if testing.Short() {
		t.Skip("uses wall-clock timers")
	}
	cfg := Config{Profile: ProfileStandard, WorkTime: 15 * time.Millisecond, ColdStartTime: 120 * time.Millisecond}
	h := New(cfg)

	start := time.Now()
	_, err := h.Handle(context.Background(), nil)
	require.NoError(t, err)
	cold := time.Since(start)
	assert.GreaterOrEqual(t, cold, cfg.ColdStartTime+cfg.WorkTime)

	start = time.Now()
	_, err = h.Handle(context.Background(), nil)
	require.NoError(t, err)
	warm := time.Since(start)
	assert.GreaterOrEqual(t, warm, cfg.WorkTime)
	assert.Less(t, warm, cfg.ColdStartTime, "warm invocation must not pay the cold start")
}

func TestHandle_CancelledDuringInitStaysUninitialized(t *testing.T) {
	h := New(Config{Profile: ProfileStandard, WorkTime: time.Millisecond, ColdStartTime: time.Hour})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := h.Handle(ctx, nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, Uninitialized, h.State())
}

func TestHandle_ConcurrentCallsInitializeOnce(t *testing.T) {
	var (
		mu         sync.Mutex
		coldStarts int
	)
	cfg := testConfig()
	sleeper := func(ctx context.Context, d time.Duration) error {
		if d == cfg.ColdStartTime {
			mu.Lock()
			coldStarts++
			mu.Unlock()
		}
		return nil
	}
	h := New(cfg, WithSleeper(sleeper))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := h.Handle(context.Background(), nil)
			assert.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, coldStarts)
	assert.Equal(t, Ready, h.State())
}

func TestHandle_WaiterGivesUpDuringColdStart(t *testing.T) {
	cfg := testConfig()
	inColdStart := make(chan struct{})
	release := make(chan struct{})
	sleeper := func(ctx context.Context, d time.Duration) error {
		if d == cfg.ColdStartTime {
			close(inColdStart)
			<-release
		}
		return nil
	}
	h := New(cfg, WithSleeper(sleeper))

	first := make(chan error, 1)
	go func() {
		_, err := h.Handle(context.Background(), nil)
		first <- err
	}()
	<-inColdStart

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := h.Handle(ctx, nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, Uninitialized, h.State())

	close(release)
	require.NoError(t, <-first)
	assert.Equal(t, Ready, h.State())
}

func TestHandle_LogsPhases(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	rec := &recordingSleeper{}
	h := New(testConfig(), WithSleeper(rec.sleep), WithLogger(zap.New(core)))

	ctx := lambdacontext.NewContext(context.Background(), &lambdacontext.LambdaContext{AwsRequestID: "req-1"})
	_, err := h.Handle(ctx, nil)
	require.NoError(t, err)

	var messages []string
	for _, entry := range logs.All() {
		messages = append(messages, entry.Message)
		assert.Equal(t, "req-1", entry.ContextMap()["requestId"])
	}
	assert.Equal(t, []string{"init start", "init end", "execution start", "execution end"}, messages)

	logs.TakeAll()
	_, err = h.Handle(context.Background(), nil)
	require.NoError(t, err)
	messages = messages[:0]
	for _, entry := range logs.All() {
		messages = append(messages, entry.Message)
	}
	assert.Equal(t, []string{"execution start", "execution end"}, messages)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "uninitialized", Uninitialized.String())
	assert.Equal(t, "ready", Ready.String())
	assert.Equal(t, "unknown", State(42).String())
}
