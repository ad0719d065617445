// Package stackinfo discovers the demo's endpoints and functions from the
// CloudFormation outputs of a deployed stack.
package stackinfo

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/cloudformation"
	"github.com/samber/lo"
)

// Output key suffixes; a subject named "Average" exports "AverageApiUrl".
const (
	SuffixApiUrl       = "ApiUrl"
	SuffixFunctionName = "FunctionName"
	SuffixAliasName    = "AliasName"

	OutputDashboardName = "DashboardName"
)

var (
	ErrStackNotFound = errors.New("stack not found")
	ErrNoSubjects    = errors.New("stack exports no subjects")
)

// OutputKey names the output carrying suffix for subject.
func OutputKey(subject, suffix string) string {
	return subject + suffix
}

// Subject is one deployed scaling strategy.
type Subject struct {
	Name         string
	ApiUrl       string
	FunctionName string
	AliasName    string
}

// Resource is the CloudWatch "Resource" dimension of the alias.
func (s Subject) Resource() string {
	return s.FunctionName + ":" + s.AliasName
}

type Stack struct {
	Name          string
	DashboardName string
	// Subjects are sorted by name.
	Subjects []Subject
}

// Subject returns the subject called name, case-insensitively.
func (s *Stack) Subject(name string) (Subject, bool) {
	return lo.Find(s.Subjects, func(sub Subject) bool { return strings.EqualFold(sub.Name, name) })
}

// DescribeStacksAPI is the part of cloudformationiface.CloudFormationAPI used here.
type DescribeStacksAPI interface {
	DescribeStacksWithContext(aws.Context, *cloudformation.DescribeStacksInput, ...request.Option) (*cloudformation.DescribeStacksOutput, error)
}

// Describe loads the outputs of stackName.
func Describe(ctx context.Context, api DescribeStacksAPI, stackName string) (*Stack, error) {
	out, err := api.DescribeStacksWithContext(ctx, &cloudformation.DescribeStacksInput{
		StackName: aws.String(stackName),
	})
	if err != nil {
		return nil, fmt.Errorf("describing stack %s: %w", stackName, err)
	}
	if len(out.Stacks) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrStackNotFound, stackName)
	}

	outputs := make(map[string]string, len(out.Stacks[0].Outputs))
	for _, o := range out.Stacks[0].Outputs {
		outputs[aws.StringValue(o.OutputKey)] = aws.StringValue(o.OutputValue)
	}
	return FromOutputs(stackName, outputs)
}

// FromOutputs groups output values by subject. A subject is any output key
// ending in ApiUrl; its function and alias outputs are optional.
func FromOutputs(stackName string, outputs map[string]string) (*Stack, error) {
	names := lo.FilterMap(lo.Keys(outputs), func(key string, _ int) (string, bool) {
		name, ok := strings.CutSuffix(key, SuffixApiUrl)
		return name, ok && name != ""
	})
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSubjects, stackName)
	}
	slices.Sort(names)

	return &Stack{
		Name:          stackName,
		DashboardName: outputs[OutputDashboardName],
		Subjects: lo.Map(names, func(name string, _ int) Subject {
			return Subject{
				Name:         name,
				ApiUrl:       outputs[OutputKey(name, SuffixApiUrl)],
				FunctionName: outputs[OutputKey(name, SuffixFunctionName)],
				AliasName:    outputs[OutputKey(name, SuffixAliasName)],
			}
		}),
	}, nil
}
