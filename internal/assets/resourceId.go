// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package assets builds ARM resource IDs.
package assets

import "fmt"

// Resource types created by a deployment.
const (
	ResourceTypeResourceGroup    = "Microsoft.Resources/resourceGroups"
	ResourceTypeSecurityGroup    = "Microsoft.Network/networkSecurityGroups"
	ResourceTypeVirtualNetwork   = "Microsoft.Network/virtualNetworks"
	ResourceTypePublicIPAddress  = "Microsoft.Network/publicIPAddresses"
	ResourceTypeNetworkInterface = "Microsoft.Network/networkInterfaces"
	ResourceTypeVirtualMachine   = "Microsoft.Compute/virtualMachines"
)

// ResourceGroupID returns the ID of a resource group.
func ResourceGroupID(subscriptionID, resourceGroup string) string {
	return fmt.Sprintf("/subscriptions/%s/resourceGroups/%s", subscriptionID, resourceGroup)
}

// ResourceID returns the ID of a top level resource of resourceType ("Namespace/type") in a resource group.
func ResourceID(subscriptionID, resourceGroup, resourceType, name string) string {
	return fmt.Sprintf("%s/providers/%s/%s", ResourceGroupID(subscriptionID, resourceGroup), resourceType, name)
}

// SubnetID returns the ID of a subnet in a virtual network.
func SubnetID(subscriptionID, resourceGroup, vnetName, subnetName string) string {
	return ResourceID(subscriptionID, resourceGroup, ResourceTypeVirtualNetwork, vnetName) + "/subnets/" + subnetName
}
