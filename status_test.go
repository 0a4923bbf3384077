// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package securevm

import (
	"context"
	"net/http"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v2"
	"github.com/Azure/securevm/internal/armtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	t.Parallel()

	p, _ := newTestProvisioner(t)
	cfg := testConfig()

	_, err := p.Deploy(context.Background(), cfg)
	require.NoError(t, err)

	st, err := p.Status(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "vm-secure-01", st.VMName)
	assert.Equal(t, "succeeded", st.ProvisioningState)
	assert.Equal(t, "running", st.PowerState)
	assert.True(t, st.Running())
	assert.Equal(t, armtest.DefaultPublicIPAddress, st.PublicIPAddress)
}

func TestStatusNotDeployed(t *testing.T) {
	t.Parallel()

	p, _ := newTestProvisioner(t)

	_, err := p.Status(context.Background(), testConfig())
	require.ErrorIs(t, err, ErrNotDeployed)
}

func TestStatusError(t *testing.T) {
	t.Parallel()

	p, srv := newTestProvisioner(t)
	cfg := testConfig()

	_, err := p.Deploy(context.Background(), cfg)
	require.NoError(t, err)

	srv.Fail(http.MethodGet, "publicIPAddresses", http.StatusForbidden, "AuthorizationFailed")

	_, err = p.Status(context.Background(), cfg)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotDeployed)
	assert.Contains(t, err.Error(), "AuthorizationFailed")
}

func TestInstanceStates(t *testing.T) {
	t.Parallel()

	prov, power := instanceStates(armcompute.VirtualMachineInstanceView{
		Statuses: []*armcompute.InstanceViewStatus{
			nil,
			{Code: to.Ptr("ProvisioningState/updating")},
			{Code: to.Ptr("PowerState/deallocated")},
			{Code: to.Ptr("OSState/generalized")},
		},
	})
	assert.Equal(t, "updating", prov)
	assert.Equal(t, "deallocated", power)

	prov, power = instanceStates(armcompute.VirtualMachineInstanceView{})
	assert.Empty(t, prov)
	assert.Empty(t, power)
}
