// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package auth

import (
	"context"
	"os"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/cloud"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFirstSetEnvVar(t *testing.T) {
	_ = os.Unsetenv("TEST_AUTH_VAR_1")
	t.Setenv("TEST_AUTH_VAR_2", "second")

	assert.Equal(t, "second", getFirstSetEnvVar("TEST_AUTH_VAR_1", "TEST_AUTH_VAR_2"))
	assert.Empty(t, getFirstSetEnvVar())
}

func TestUpdateBoolValueAnyTrue(t *testing.T) {
	t.Setenv("TEST_BOOL_VAR_1", "notabool")
	t.Setenv("TEST_BOOL_VAR_2", "1")

	assert.True(t, updateBoolValueAnyTrue(true, "UNSET_TEST_BOOL_VAR"))
	assert.False(t, updateBoolValueAnyTrue(false, "TEST_BOOL_VAR_1"))
	assert.True(t, updateBoolValueAnyTrue(false, "TEST_BOOL_VAR_1", "TEST_BOOL_VAR_2"))
}

func TestCloud(t *testing.T) {
	t.Setenv("ARM_ENVIRONMENT", "")
	t.Setenv("AZURE_ENVIRONMENT", "")
	assert.Equal(t, cloud.AzurePublic.ActiveDirectoryAuthorityHost, Cloud().ActiveDirectoryAuthorityHost)

	t.Setenv("AZURE_ENVIRONMENT", "china")
	assert.Equal(t, cloud.AzureChina.ActiveDirectoryAuthorityHost, Cloud().ActiveDirectoryAuthorityHost)

	t.Setenv("ARM_ENVIRONMENT", "usgovernment")
	assert.Equal(t, cloud.AzureGovernment.ActiveDirectoryAuthorityHost, Cloud().ActiveDirectoryAuthorityHost)
}

func TestNewTokenClientSecretNeedsTenant(t *testing.T) {
	t.Setenv("ARM_USE_MSI", "")
	t.Setenv("AZURE_USE_MSI", "")
	t.Setenv("ARM_CLIENT_SECRET", "s3cret")
	t.Setenv("ARM_CLIENT_ID", "00000000-0000-0000-0000-000000000001")
	t.Setenv("ARM_TENANT_ID", "")
	t.Setenv("AZURE_TENANT_ID", "")

	_, err := NewToken()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tenant id is empty")
}

func TestNewTokenClientSecret(t *testing.T) {
	t.Setenv("ARM_USE_MSI", "")
	t.Setenv("AZURE_USE_MSI", "")
	t.Setenv("ARM_CLIENT_SECRET", "s3cret")
	t.Setenv("ARM_CLIENT_ID", "00000000-0000-0000-0000-000000000001")
	t.Setenv("ARM_TENANT_ID", "00000000-0000-0000-0000-000000000002")

	cred, err := NewToken()
	require.NoError(t, err)
	assert.IsType(t, &azidentity.ClientSecretCredential{}, cred)
}

func TestStaticToken(t *testing.T) {
	t.Parallel()

	tok, err := StaticToken("fake-token").GetToken(context.Background(), policy.TokenRequestOptions{})
	require.NoError(t, err)
	assert.Equal(t, "fake-token", tok.Token)
	assert.False(t, tok.ExpiresOn.IsZero())
}
