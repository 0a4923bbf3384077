// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package securevm

import (
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/cloud"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v2"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork/v7"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
)

// resourceManagerAudience is the token audience of Azure Resource Manager in the public cloud.
const resourceManagerAudience = "https://management.azure.com/"

// Clients holds the ARM clients used by a Provisioner, all bound to one subscription.
type Clients struct {
	ResourceGroups    *armresources.ResourceGroupsClient
	SecurityGroups    *armnetwork.SecurityGroupsClient
	VirtualNetworks   *armnetwork.VirtualNetworksClient
	PublicIPAddresses *armnetwork.PublicIPAddressesClient
	Interfaces        *armnetwork.InterfacesClient
	VirtualMachines   *armcompute.VirtualMachinesClient
}

// NewClients creates every ARM client for subscriptionID. opts may be nil.
func NewClients(subscriptionID string, cred azcore.TokenCredential, opts *arm.ClientOptions) (*Clients, error) {
	var err error

	c := new(Clients)

	if c.ResourceGroups, err = armresources.NewResourceGroupsClient(subscriptionID, cred, opts); err != nil {
		return nil, fmt.Errorf("securevm.NewClients: resource groups client: %w", err)
	}

	if c.SecurityGroups, err = armnetwork.NewSecurityGroupsClient(subscriptionID, cred, opts); err != nil {
		return nil, fmt.Errorf("securevm.NewClients: security groups client: %w", err)
	}

	if c.VirtualNetworks, err = armnetwork.NewVirtualNetworksClient(subscriptionID, cred, opts); err != nil {
		return nil, fmt.Errorf("securevm.NewClients: virtual networks client: %w", err)
	}

	if c.PublicIPAddresses, err = armnetwork.NewPublicIPAddressesClient(subscriptionID, cred, opts); err != nil {
		return nil, fmt.Errorf("securevm.NewClients: public IP addresses client: %w", err)
	}

	if c.Interfaces, err = armnetwork.NewInterfacesClient(subscriptionID, cred, opts); err != nil {
		return nil, fmt.Errorf("securevm.NewClients: network interfaces client: %w", err)
	}

	if c.VirtualMachines, err = armcompute.NewVirtualMachinesClient(subscriptionID, cred, opts); err != nil {
		return nil, fmt.Errorf("securevm.NewClients: virtual machines client: %w", err)
	}

	return c, nil
}

// ClientOptions returns ARM client options for the given cloud.
// A non-empty endpoint replaces the Resource Manager endpoint, which is how emulators are targeted;
// plain HTTP is then allowed to carry the bearer token.
func ClientOptions(cld cloud.Configuration, endpoint string) *arm.ClientOptions {
	if endpoint == "" {
		return &arm.ClientOptions{ClientOptions: azcore.ClientOptions{Cloud: cld}}
	}

	return &arm.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Cloud: cloud.Configuration{
				ActiveDirectoryAuthorityHost: cld.ActiveDirectoryAuthorityHost,
				Services: map[cloud.ServiceName]cloud.ServiceConfiguration{
					cloud.ResourceManager: {
						Endpoint: endpoint,
						Audience: resourceManagerAudience,
					},
				},
			},
			InsecureAllowCredentialWithHTTP: true,
		},
	}
}
