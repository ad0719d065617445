package config

import (
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/caarlos0/env/v11"
)

// SynthEnvironmentVariables are host-specific build settings.
type SynthEnvironmentVariables struct {
	// Packaging overrides the 'packaging' context, "docker" or "local".
	Packaging string `env:"WORKLOAD_PACKAGING"`
	// GoProxy is forwarded to local builds.
	GoProxy string `env:"GOPROXY" envDefault:"https://proxy.golang.org,direct"`
}

// GetEnvironmentVariables parses T from the environment while the stack is
// synthesized. Otherwise it returns the zero T, envDefault tags included.
func GetEnvironmentVariables[T any](scope constructs.Construct) T {
	var envObj T

	// only run if we are synthesizing the stack
	if !IsStackInSynthesis(scope) {
		return envObj
	}

	err := env.Parse(&envObj)
	if err != nil {
		panic(err)
	}

	return envObj
}
