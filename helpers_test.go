// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package securevm

import (
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/cloud"
	"github.com/Azure/securevm/config"
	"github.com/Azure/securevm/internal/armtest"
	"github.com/Azure/securevm/internal/auth"
	"github.com/stretchr/testify/require"
)

const testSubscriptionID = "11111111-2222-3333-4444-555555555555"

func testConfig() *config.Config {
	return &config.Config{
		Location:      "westeurope",
		ResourceGroup: config.ResourceGroup{Name: "rg-secure-vm"},
		Network: config.Network{
			NsgName:      "nsg-secure-vm",
			VnetName:     "vnet-secure-vm",
			SubnetName:   "snet-secure-vm",
			VnetPrefix:   "10.0.0.0/16",
			SubnetPrefix: "10.0.1.0/24",
		},
		VM: config.VM{
			Name: "vm-secure-01",
			Size: config.DefaultVMSize,
			Image: config.Image{
				Publisher: config.DefaultImagePublisher,
				Offer:     config.DefaultImageOffer,
				Sku:       config.DefaultImageSku,
				Version:   config.DefaultImageVersion,
			},
			OsDiskType: config.DefaultOsDiskType,
		},
		Tags: map[string]string{"project": "devsecops"},
		Secrets: config.Secrets{
			SubscriptionID:  testSubscriptionID,
			AdminUsername:   "azureops",
			AdminPassword:   "Correct-Horse-42",
			AllowedSourceIP: "198.51.100.7",
		},
	}
}

// newTestProvisioner returns a provisioner talking to a fresh ARM emulator.
func newTestProvisioner(t *testing.T) (*Provisioner, *armtest.Server) {
	t.Helper()

	srv := armtest.New(t)

	clients, err := NewClients(testSubscriptionID, auth.StaticToken("test"), ClientOptions(cloud.AzurePublic, srv.URL()))
	require.NoError(t, err)

	return NewProvisioner(clients, &ProvisionerOptions{PollFrequency: 10 * time.Millisecond}), srv
}
