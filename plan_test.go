// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package securevm

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v2"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlan(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	plan, err := NewPlan(cfg)
	require.NoError(t, err)

	assert.Equal(t, cfg.DeploymentID(), plan.DeploymentID)
	require.Len(t, plan.Resources, 6)

	for i, r := range plan.Resources {
		assert.Equal(t, StepResourceGroup+Step(i), r.Step)
		assert.NotEmpty(t, r.ID)

		id, err := arm.ParseResourceID(r.ID)
		require.NoError(t, err)
		assert.Equal(t, r.Name, id.Name)

		if r.Step != StepResourceGroup {
			assert.Equal(t, r.Type, id.ResourceType.String())
		}
	}

	vm := plan.Resource(StepVirtualMachine).Body.(armcompute.VirtualMachine)
	assert.Equal(t, redactedPassword, *vm.Properties.OSProfile.AdminPassword)
	assert.Equal(t, plan.Resource(StepNetworkInterface).ID, *vm.Properties.NetworkProfile.NetworkInterfaces[0].ID)
	assert.Equal(t, "Correct-Horse-42", cfg.Secrets.AdminPassword)

	nic := plan.Resource(StepNetworkInterface).Body.(armnetwork.Interface)
	ipcfg := nic.Properties.IPConfigurations[0].Properties
	assert.Equal(t, plan.Resource(StepPublicIP).ID, *ipcfg.PublicIPAddress.ID)
	assert.Equal(t, plan.Resource(StepVirtualNetwork).ID+"/subnets/snet-secure-vm", *ipcfg.Subnet.ID)

	vnet := plan.Resource(StepVirtualNetwork).Body.(armnetwork.VirtualNetwork)
	assert.Equal(t, plan.Resource(StepSecurityGroup).ID, *vnet.Properties.Subnets[0].Properties.NetworkSecurityGroup.ID)

	assert.Nil(t, plan.Resource(StepConnect))
}

func TestNewPlanNeedsSubscription(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Secrets.SubscriptionID = ""

	_, err := NewPlan(cfg)
	require.Error(t, err)
}

func TestPlanMatchesDeploy(t *testing.T) {
	t.Parallel()

	p, _ := newTestProvisioner(t)
	cfg := testConfig()

	plan, err := p.Plan(cfg)
	require.NoError(t, err)

	res, err := p.Deploy(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, res.ResourceGroupID, plan.Resource(StepResourceGroup).ID)
	assert.Equal(t, res.SecurityGroupID, plan.Resource(StepSecurityGroup).ID)
	assert.Equal(t, res.VirtualNetworkID, plan.Resource(StepVirtualNetwork).ID)
	assert.Equal(t, res.PublicIPID, plan.Resource(StepPublicIP).ID)
	assert.Equal(t, res.NetworkInterfaceID, plan.Resource(StepNetworkInterface).ID)
	assert.Equal(t, res.VirtualMachineID, plan.Resource(StepVirtualMachine).ID)
}

func TestPlanWriteJSON(t *testing.T) {
	t.Parallel()

	plan, err := NewPlan(testConfig())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, plan.WriteJSON(&buf))
	assert.NotContains(t, buf.String(), "Correct-Horse-42")

	var decoded struct {
		DeploymentID string `json:"deployment_id"`
		Resources    []struct {
			Step int             `json:"step"`
			Name string          `json:"name"`
			Body json.RawMessage `json:"body"`
		} `json:"resources"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Resources, 6)
	assert.Equal(t, 3, decoded.Resources[0].Step)
	assert.Equal(t, "vm-secure-01", decoded.Resources[5].Name)

	var nsg armnetwork.SecurityGroup
	require.NoError(t, json.Unmarshal(decoded.Resources[1].Body, &nsg))
	require.Len(t, nsg.Properties.SecurityRules, 2)
	assert.Equal(t, RDPRuleName, *nsg.Properties.SecurityRules[0].Name)
	assert.EqualValues(t, 1000, *nsg.Properties.SecurityRules[0].Properties.Priority)
}

func TestPlanWriteJSONDoesNotEscapeHTML(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Tags = map[string]string{"Owner": "<ops & security>"}

	plan, err := NewPlan(cfg)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, plan.WriteJSON(&buf))
	assert.Contains(t, buf.String(), `"Owner": "<ops & security>"`)
	assert.NotContains(t, buf.String(), `\u003c`)
}

func TestPlannedResourceDocument(t *testing.T) {
	t.Parallel()

	plan, err := NewPlan(testConfig())
	require.NoError(t, err)

	doc, err := plan.Resource(StepPublicIP).Document()
	require.NoError(t, err)

	m, ok := doc.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Standard", m["sku"].(map[string]any)["name"])

	_, err = (&PlannedResource{Type: "bad", Body: make(chan int)}).Document()
	assert.Error(t, err)
}
