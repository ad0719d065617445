package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/samber/lo"

	"github.com/pcdemo/autoscaling/internal/loadtest"
	"github.com/pcdemo/autoscaling/internal/stackinfo"
)

// parseTargets reads --url values of the form name=url.
func parseTargets(values []string) ([]loadtest.Target, error) {
	targets := make([]loadtest.Target, 0, len(values))
	for _, v := range values {
		name, raw, ok := strings.Cut(v, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --url %q, expected name=url", v)
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("invalid --url %q: not an http(s) URL", v)
		}
		targets = append(targets, loadtest.Target{Name: name, URL: raw})
	}
	if dups := lo.FindDuplicatesBy(targets, func(t loadtest.Target) string { return t.Name }); len(dups) > 0 {
		return nil, fmt.Errorf("duplicate target name %q", dups[0].Name)
	}
	return targets, nil
}

// stackTargets turns the stack subjects into targets, optionally keeping only
// the named ones.
func stackTargets(stack *stackinfo.Stack, only []string) ([]loadtest.Target, error) {
	subjects := stack.Subjects
	if len(only) > 0 {
		subjects = nil
		for _, name := range only {
			s, ok := stack.Subject(name)
			if !ok {
				return nil, fmt.Errorf("stack %s has no subject %q", stack.Name, name)
			}
			subjects = append(subjects, s)
		}
	}
	return lo.Map(subjects, func(s stackinfo.Subject, _ int) loadtest.Target {
		return loadtest.Target{Name: s.Name, URL: s.ApiUrl}
	}), nil
}
