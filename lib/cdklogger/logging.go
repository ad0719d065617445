// Package cdklogger reports synth-time messages as CDK annotations, so they
// show up in `cdk synth` / `cdk deploy` output next to the construct path.
package cdklogger

import (
	"fmt"
	"strings"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

type level int

const (
	levelInfo level = iota
	levelWarning
	levelError
)

// LogInfo adds an INFO annotation to scope.
func LogInfo(scope constructs.Construct, constructID string, format string, args ...interface{}) {
	annotate(scope, levelInfo, constructID, format, args...)
}

// LogWarning adds a WARNING annotation to scope.
func LogWarning(scope constructs.Construct, constructID string, format string, args ...interface{}) {
	annotate(scope, levelWarning, constructID, format, args...)
}

// LogError adds an ERROR annotation to scope. Errors fail `cdk deploy`.
func LogError(scope constructs.Construct, constructID string, format string, args ...interface{}) {
	annotate(scope, levelError, constructID, format, args...)
}

func annotate(scope constructs.Construct, lvl level, constructID string, format string, args ...interface{}) {
	message := prefixed(*scope.Node().Path(), constructID, fmt.Sprintf(format, args...))
	annotations := awscdk.Annotations_Of(scope)
	switch lvl {
	case levelWarning:
		annotations.AddWarning(jsii.String(message))
	case levelError:
		annotations.AddError(jsii.String(message))
	default:
		annotations.AddInfo(jsii.String(message))
	}
}

// prefixed tags message with constructID unless the construct path already
// ends with it.
func prefixed(cdkPath, constructID, message string) string {
	if constructID == "" {
		return message
	}
	if strings.HasSuffix(cdkPath, "/"+constructID) || cdkPath == constructID {
		return message
	}
	return fmt.Sprintf("[%s] %s", constructID, message)
}
