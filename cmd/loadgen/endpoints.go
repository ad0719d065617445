package main

import (
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/service/cloudformation"
	"github.com/fbiville/markdown-table-formatter/pkg/markdown"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/pcdemo/autoscaling/internal/stackinfo"
)

func newEndpointsCmd(flags *awsFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "endpoints",
		Short: "List the subjects deployed by the stack",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stack, err := describeStack(cmd, flags)
			if err != nil {
				return err
			}
			return printEndpoints(cmd.OutOrStdout(), stack)
		},
	}
}

func describeStack(cmd *cobra.Command, flags *awsFlags) (*stackinfo.Stack, error) {
	sess, err := flags.session()
	if err != nil {
		return nil, fmt.Errorf("creating AWS session: %w", err)
	}
	return stackinfo.Describe(cmd.Context(), cloudformation.New(sess), flags.stack)
}

func printEndpoints(w io.Writer, stack *stackinfo.Stack) error {
	table, err := markdown.NewTableFormatterBuilder().
		WithPrettyPrint().
		Build("subject", "url", "function", "alias").
		Format(lo.Map(stack.Subjects, func(s stackinfo.Subject, _ int) []string {
			return []string{s.Name, s.ApiUrl, s.FunctionName, s.AliasName}
		}))
	if err != nil {
		return err
	}
	if stack.DashboardName != "" {
		fmt.Fprintf(w, "dashboard: %s\n\n", stack.DashboardName)
	}
	_, err = io.WriteString(w, table)
	return err
}
