// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package securevm

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDestroy(t *testing.T) {
	t.Parallel()

	p, srv := newTestProvisioner(t)
	cfg := testConfig()

	_, err := p.Deploy(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, srv.ResourceIDs(), 6)

	require.NoError(t, p.Destroy(context.Background(), cfg))
	assert.Empty(t, srv.ResourceIDs())
}

func TestDestroyMissingResourceGroup(t *testing.T) {
	t.Parallel()

	p, srv := newTestProvisioner(t)

	require.NoError(t, p.Destroy(context.Background(), testConfig()))

	calls := srv.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodHead, calls[0].Method)
}

func TestDestroyFailure(t *testing.T) {
	t.Parallel()

	p, srv := newTestProvisioner(t)
	cfg := testConfig()

	_, err := p.Deploy(context.Background(), cfg)
	require.NoError(t, err)

	srv.Fail(http.MethodDelete, "resourceGroups", http.StatusConflict, "ScopeLocked")

	err = p.Destroy(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ScopeLocked")
	assert.Len(t, srv.ResourceIDs(), 6)
}

func TestDestroyEmptyName(t *testing.T) {
	t.Parallel()

	p, srv := newTestProvisioner(t)
	cfg := testConfig()
	cfg.ResourceGroup.Name = ""

	require.Error(t, p.Destroy(context.Background(), cfg))
	assert.Empty(t, srv.Calls())
}
