package workload_function

import (
	"fmt"
	"strings"
)

// Packaging selects how the handler binary is built during synth.
type Packaging string

const (
	// PackagingDocker builds through the GoFunction bundler, inside its
	// bundling image unless a host toolchain is found.
	PackagingDocker Packaging = "docker"
	// PackagingLocal builds with the host toolchain through lib/goasset.
	PackagingLocal Packaging = "local"
)

func ParsePackaging(s string) (Packaging, error) {
	switch p := Packaging(strings.ToLower(strings.TrimSpace(s))); p {
	case PackagingDocker, PackagingLocal:
		return p, nil
	default:
		return "", fmt.Errorf("invalid packaging %q", s)
	}
}
