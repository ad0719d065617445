package cdklogger

import (
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/jsii-runtime-go"
	"github.com/stretchr/testify/assert"
)

func TestPrefixed(t *testing.T) {
	tests := []struct {
		path, id, want string
	}{
		{"Stack/Fn", "Fn", "hello"},
		{"Stack", "Stack", "hello"},
		{"Stack/Fn", "Other", "[Other] hello"},
		{"Stack/Fn", "", "hello"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, prefixed(tt.path, tt.id, "hello"), "path=%s id=%s", tt.path, tt.id)
	}
}

func TestAnnotationsReachSynth(t *testing.T) {
	app := awscdk.NewApp(nil)
	stack := awscdk.NewStack(app, jsii.String("LoggerStack"), nil)

	LogInfo(stack, "", "info %d", 1)
	LogWarning(stack, "Child", "careful %s", "now")

	annotations := assertions.Annotations_FromStack(stack)
	annotations.HasInfo(jsii.String("/LoggerStack"), jsii.String("info 1"))
	annotations.HasWarning(jsii.String("/LoggerStack"), assertions.Match_StringLikeRegexp(jsii.String(`\[Child\] careful now`)))
}
