package workload

import (
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
)

// Environment variable names read by the workload function.
const (
	EnvWorkTimeMillis      = "WORKING_TIME_MILLIS"
	EnvColdStartTimeMillis = "COLD_START_TIME_MILLIS"
	EnvProfile             = "WORKLOAD_PROFILE"
)

// Profile names a set of default delays.
type Profile string

const (
	// ProfileStandard is the default profile: short cold start, moderate work.
	ProfileStandard Profile = "standard"
	// ProfileSlowStart models a function with an expensive initialization.
	ProfileSlowStart Profile = "slow-start"
)

// ParseProfile returns the profile named by s. Unknown names map to
// ProfileStandard and ok is false.
func ParseProfile(s string) (Profile, bool) {
	switch p := Profile(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return ProfileStandard, true
	case ProfileStandard, ProfileSlowStart:
		return p, true
	default:
		return ProfileStandard, false
	}
}

// Config holds the simulated delays. It is read once per process.
type Config struct {
	Profile       Profile
	WorkTime      time.Duration
	ColdStartTime time.Duration
}

// Defaults returns the delays used by p when the environment does not set them.
func Defaults(p Profile) Config {
	switch p {
	case ProfileSlowStart:
		return Config{
			Profile:       ProfileSlowStart,
			WorkTime:      10 * time.Millisecond,
			ColdStartTime: 500 * time.Millisecond,
		}
	default:
		return Config{
			Profile:       ProfileStandard,
			WorkTime:      20 * time.Millisecond,
			ColdStartTime: 200 * time.Millisecond,
		}
	}
}

// maxMillis is the largest delay that fits in a time.Duration.
const maxMillis = math.MaxInt64 / int64(time.Millisecond)

// millis is the raw env representation; both fields stay nil when unset.
type millis struct {
	WorkTime      *int64 `env:"WORKING_TIME_MILLIS"`
	ColdStartTime *int64 `env:"COLD_START_TIME_MILLIS"`
}

// LoadConfig reads the configuration from the process environment.
func LoadConfig(logger *zap.Logger) Config {
	return LoadConfigFrom(env.ToMap(os.Environ()), logger)
}

// LoadConfigFrom reads the configuration from environ. Values that are not
// non-negative integers, or that overflow a time.Duration, are dropped with a warning so the profile default
// applies; loading never fails.
func LoadConfigFrom(environ map[string]string, logger *zap.Logger) Config {
	if logger == nil {
		logger = zap.NewNop()
	}

	profile, ok := ParseProfile(environ[EnvProfile])
	if !ok {
		logger.Warn("unknown workload profile, using default",
			zap.String("profile", environ[EnvProfile]),
			zap.String("default", string(profile)),
		)
	}
	cfg := Defaults(profile)

	sanitized := make(map[string]string, 2)
	for _, key := range []string{EnvWorkTimeMillis, EnvColdStartTimeMillis} {
		raw, present := environ[key]
		if !present {
			continue
		}
		v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil || v < 0 || v > maxMillis {
			logger.Warn("ignoring invalid delay, using profile default",
				zap.String("variable", key),
				zap.String("value", raw),
			)
			continue
		}
		sanitized[key] = strconv.FormatInt(v, 10)
	}

	var raw millis
	if err := env.ParseWithOptions(&raw, env.Options{Environment: sanitized}); err != nil {
		// sanitized only holds integers, so this is unreachable in practice
		logger.Warn("failed to parse delays, using profile defaults", zap.Error(err))
		return cfg
	}
	if raw.WorkTime != nil {
		cfg.WorkTime = time.Duration(*raw.WorkTime) * time.Millisecond
	}
	if raw.ColdStartTime != nil {
		cfg.ColdStartTime = time.Duration(*raw.ColdStartTime) * time.Millisecond
	}
	return cfg
}

// Environment returns the variables that reproduce c in a function's environment.
func (c Config) Environment() map[string]string {
	return map[string]string{
		EnvProfile:             string(c.Profile),
		EnvWorkTimeMillis:      strconv.FormatInt(c.WorkTime.Milliseconds(), 10),
		EnvColdStartTimeMillis: strconv.FormatInt(c.ColdStartTime.Milliseconds(), 10),
	}
}
