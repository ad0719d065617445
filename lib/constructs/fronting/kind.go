package fronting

import (
	"fmt"
	"strings"
)

// Kind represents the type of API front end.
type Kind string

const (
	KindRest Kind = "rest"
	KindHttp Kind = "http"
)

// ParseKind converts a raw string into a Kind, returning an error for invalid values.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindRest, KindHttp:
		return k, nil
	default:
		return "", fmt.Errorf("invalid fronting type %q", s)
	}
}

// New returns a Fronting implementation for the given Kind.
func New(kind Kind) Fronting {
	switch kind {
	case KindRest:
		return NewRestApiFronting()
	case KindHttp:
		return NewHttpApiFronting()
	default:
		// ParseKind should prevent this
		panic(fmt.Sprintf("unsupported fronting kind %q", kind))
	}
}
