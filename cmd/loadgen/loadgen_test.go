package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pcdemo/autoscaling/internal/loadtest"
	"github.com/pcdemo/autoscaling/internal/stackinfo"
)

func TestParseTargets(t *testing.T) {
	targets, err := parseTargets([]string{
		"avg=https://a.example.com/prod/",
		"max=http://localhost:8080",
	})
	require.NoError(t, err)
	require.Equal(t, []loadtest.Target{
		{Name: "avg", URL: "https://a.example.com/prod/"},
		{Name: "max", URL: "http://localhost:8080"},
	}, targets)

	targets, err = parseTargets(nil)
	require.NoError(t, err)
	require.Empty(t, targets)

	for _, bad := range [][]string{
		{"https://a.example.com"},
		{"=https://a.example.com"},
		{"a=ftp://a.example.com"},
		{"a=not a url"},
		{"a=https://x.example.com", "a=https://y.example.com"},
	} {
		_, err := parseTargets(bad)
		require.Error(t, err, bad)
	}
}

func demoStack() *stackinfo.Stack {
	return &stackinfo.Stack{
		Name:          "PcAutoscalingDemo",
		DashboardName: "PcAutoscalingDemo-pc-autoscaling",
		Subjects: []stackinfo.Subject{
			{Name: "Average", ApiUrl: "https://avg.example.com/prod/", FunctionName: "fn-avg", AliasName: "live"},
			{Name: "Maximum", ApiUrl: "https://max.example.com/prod/", FunctionName: "fn-max", AliasName: "live"},
		},
	}
}

func TestStackTargets(t *testing.T) {
	all, err := stackTargets(demoStack(), nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "Average", all[0].Name)

	only, err := stackTargets(demoStack(), []string{"maximum"})
	require.NoError(t, err)
	require.Equal(t, []loadtest.Target{{Name: "Maximum", URL: "https://max.example.com/prod/"}}, only)

	_, err = stackTargets(demoStack(), []string{"median"})
	require.ErrorContains(t, err, "no subject")
}

func TestPrintEndpoints(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printEndpoints(&buf, demoStack()))

	out := buf.String()
	require.Contains(t, out, "dashboard: PcAutoscalingDemo-pc-autoscaling\n")
	require.Contains(t, out, "https://max.example.com/prod/")
	require.Contains(t, out, "fn-avg")
}

func TestEmitReport_NoLocation(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, emitReport(t.Context(), &buf, &awsFlags{}, nil, "# r\n"))
	require.Equal(t, "# r\n", buf.String())
}
