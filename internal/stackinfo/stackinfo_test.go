package stackinfo

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/cloudformation"
	"github.com/stretchr/testify/require"
)

type fakeCloudFormation struct {
	out   *cloudformation.DescribeStacksOutput
	err   error
	asked string
}

func (f *fakeCloudFormation) DescribeStacksWithContext(_ aws.Context, in *cloudformation.DescribeStacksInput, _ ...request.Option) (*cloudformation.DescribeStacksOutput, error) {
	f.asked = aws.StringValue(in.StackName)
	return f.out, f.err
}

func output(key, value string) *cloudformation.Output {
	return &cloudformation.Output{OutputKey: aws.String(key), OutputValue: aws.String(value)}
}

func TestDescribe(t *testing.T) {
	api := &fakeCloudFormation{out: &cloudformation.DescribeStacksOutput{
		Stacks: []*cloudformation.Stack{{
			Outputs: []*cloudformation.Output{
				output("MaximumApiUrl", "https://max.example.com/prod/"),
				output("MaximumFunctionName", "demo-max"),
				output("MaximumAliasName", "live"),
				output("AverageApiUrl", "https://avg.example.com/prod/"),
				output("AverageFunctionName", "demo-avg"),
				output("AverageAliasName", "live"),
				output("DashboardName", "PcAutoscalingDemo-pc-autoscaling"),
			},
		}},
	}}

	stack, err := Describe(context.Background(), api, "PcAutoscalingDemo")
	require.NoError(t, err)
	require.Equal(t, "PcAutoscalingDemo", api.asked)
	require.Equal(t, "PcAutoscalingDemo-pc-autoscaling", stack.DashboardName)
	require.Equal(t, []Subject{
		{Name: "Average", ApiUrl: "https://avg.example.com/prod/", FunctionName: "demo-avg", AliasName: "live"},
		{Name: "Maximum", ApiUrl: "https://max.example.com/prod/", FunctionName: "demo-max", AliasName: "live"},
	}, stack.Subjects)

	sub, ok := stack.Subject("maximum")
	require.True(t, ok)
	require.Equal(t, "demo-max:live", sub.Resource())

	_, ok = stack.Subject("median")
	require.False(t, ok)
}

func TestDescribe_Errors(t *testing.T) {
	boom := errors.New("boom")
	_, err := Describe(context.Background(), &fakeCloudFormation{err: boom}, "x")
	require.ErrorIs(t, err, boom)

	_, err = Describe(context.Background(), &fakeCloudFormation{out: &cloudformation.DescribeStacksOutput{}}, "x")
	require.ErrorIs(t, err, ErrStackNotFound)

	_, err = Describe(context.Background(), &fakeCloudFormation{out: &cloudformation.DescribeStacksOutput{
		Stacks: []*cloudformation.Stack{{Outputs: []*cloudformation.Output{output("DashboardName", "d")}}},
	}}, "x")
	require.ErrorIs(t, err, ErrNoSubjects)
}

func TestFromOutputs_IgnoresBareSuffix(t *testing.T) {
	stack, err := FromOutputs("s", map[string]string{"ApiUrl": "x", "OnlyApiUrl": "https://only"})
	require.NoError(t, err)
	require.Len(t, stack.Subjects, 1)
	require.Equal(t, "Only", stack.Subjects[0].Name)
	require.Empty(t, stack.Subjects[0].FunctionName)
}
