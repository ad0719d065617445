package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func clearCdkEnv(t *testing.T) {
	for _, k := range []string{"CDK_DEPLOY_ACCOUNT", "CDK_DEPLOY_REGION", "CDK_DEFAULT_ACCOUNT", "CDK_DEFAULT_REGION"} {
		t.Setenv(k, "")
	}
}

func TestCdkEnv(t *testing.T) {
	clearCdkEnv(t)
	require.Nil(t, CdkEnv())

	t.Setenv("CDK_DEFAULT_ACCOUNT", "111111111111")
	t.Setenv("CDK_DEFAULT_REGION", "eu-west-1")
	e := CdkEnv()
	require.Equal(t, "111111111111", *e.Account)
	require.Equal(t, "eu-west-1", *e.Region)

	t.Setenv("CDK_DEPLOY_ACCOUNT", "222222222222")
	e = CdkEnv()
	require.Equal(t, "111111111111", *e.Account, "a deploy account without a region is ignored")

	t.Setenv("CDK_DEPLOY_REGION", "us-east-1")
	e = CdkEnv()
	require.Equal(t, "222222222222", *e.Account)
	require.Equal(t, "us-east-1", *e.Region)
}

func TestModuleRoot(t *testing.T) {
	root, err := ModuleRoot()
	require.NoError(t, err)
	require.FileExists(t, root+"/go.mod")
	require.FileExists(t, root+"/cdk.json")
}
