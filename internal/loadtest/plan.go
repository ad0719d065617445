// Package loadtest drives identical request plans against several API
// endpoints at once and summarizes their latencies.
package loadtest

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

// DefaultRequestTimeout bounds a single request when the plan does not.
const DefaultRequestTimeout = 10 * time.Second

// Phase is a stretch of constant request rate.
type Phase struct {
	Name     string        `toml:"name" validate:"required"`
	Duration time.Duration `toml:"duration" validate:"gt=0"`
	// RPS is the request rate per target.
	RPS float64 `toml:"rps" validate:"gt=0"`
	// Concurrency caps in-flight requests per target.
	Concurrency int `toml:"concurrency" validate:"gte=1"`
}

// Plan is an ordered list of phases, e.g.
//
//	name = "burst"
//	request_timeout = "5s"
//
//	[[phase]]
//	name = "warm-up"
//	duration = "1m"
//	rps = 2
//	concurrency = 4
type Plan struct {
	Name           string        `toml:"name"`
	RequestTimeout time.Duration `toml:"request_timeout" validate:"gte=0"`
	Phases         []Phase       `toml:"phase" validate:"required,min=1,dive"`
}

// DefaultPlan warms both pools, ramps up, bursts well past the provisioned
// capacity for a minute and cools down, which is where the average and
// maximum statistics disagree.
func DefaultPlan() Plan {
	return Plan{
		Name:           "default",
		RequestTimeout: DefaultRequestTimeout,
		Phases: []Phase{
			{Name: "warm-up", Duration: time.Minute, RPS: 2, Concurrency: 4},
			{Name: "ramp", Duration: 3 * time.Minute, RPS: 20, Concurrency: 32},
			{Name: "burst", Duration: time.Minute, RPS: 80, Concurrency: 128},
			{Name: "cool-down", Duration: 3 * time.Minute, RPS: 2, Concurrency: 4},
		},
	}
}

// Validate reports the first invalid field.
func (p Plan) Validate() error {
	if err := validator.New().Struct(p); err != nil {
		return fmt.Errorf("invalid plan %q: %w", p.Name, err)
	}
	if dup := lo.FindDuplicatesBy(p.Phases, func(ph Phase) string { return ph.Name }); len(dup) > 0 {
		return fmt.Errorf("invalid plan %q: duplicate phase %q", p.Name, dup[0].Name)
	}
	return nil
}

// TotalDuration is the sum of the phase durations.
func (p Plan) TotalDuration() time.Duration {
	return lo.SumBy(p.Phases, func(ph Phase) time.Duration { return ph.Duration })
}

func (p Plan) requestTimeout() time.Duration {
	if p.RequestTimeout > 0 {
		return p.RequestTimeout
	}
	return DefaultRequestTimeout
}

// ParsePlan decodes and validates a TOML plan.
func ParsePlan(r io.Reader) (Plan, error) {
	var p Plan
	md, err := toml.NewDecoder(r).Decode(&p)
	if err != nil {
		return Plan{}, fmt.Errorf("decoding plan: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Plan{}, fmt.Errorf("decoding plan: unknown key %q", undecoded[0].String())
	}
	if err := p.Validate(); err != nil {
		return Plan{}, err
	}
	return p, nil
}

// LoadPlan reads a TOML plan from path.
func LoadPlan(path string) (Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return Plan{}, err
	}
	defer f.Close()
	return ParsePlan(f)
}
