package config

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/constructs-go/constructs/v10"
)

// IsStackInSynthesis reports whether the stack owning scope is being bundled,
// i.e. a real `cdk synth`/`deploy` rather than a test with bundling skipped.
func IsStackInSynthesis(scope constructs.Construct) bool {
	stack := awscdk.Stack_Of(scope)
	if stack == nil {
		return false
	}

	required := stack.BundlingRequired()
	return required != nil && *required
}
