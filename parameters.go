// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package securevm

import (
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v2"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork/v7"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/Azure/securevm/config"
	valto "github.com/Azure/securevm/to"
)

// Security rules of the network security group.
const (
	RDPRuleName      = "Allow-RDP-MyIP"
	RDPRulePriority  = 1000
	RDPPort          = "3389"
	DenyAllRuleName  = "Deny-All-Inbound"
	DenyAllPriority  = 4096
	IPConfigName     = "ipconfig1"
	anyPortOrAddress = "*"
)

// Tags written on every resource of a deployment, on top of the configured ones.
const (
	TagManagedBy    = "managed-by"
	TagDeploymentID = "deployment-id"
	managedByValue  = "securevm"
)

// Tags returns the tags of every resource: the configured ones plus the managed-by and deployment ID tags.
func Tags(cfg *config.Config) map[string]*string {
	tags := make(map[string]string, len(cfg.Tags)+2)
	for k, v := range cfg.Tags {
		tags[k] = v
	}

	tags[TagManagedBy] = managedByValue
	tags[TagDeploymentID] = cfg.DeploymentID()

	return valto.PtrMap(tags)
}

// ResourceGroupParameters returns the resource group request body.
func ResourceGroupParameters(cfg *config.Config) armresources.ResourceGroup {
	return armresources.ResourceGroup{
		Location: to.Ptr(cfg.Location),
		Tags:     Tags(cfg),
	}
}

// SecurityGroupParameters returns the network security group request body.
// RDP is allowed from the configured sources only; every other inbound flow is denied.
func SecurityGroupParameters(cfg *config.Config) armnetwork.SecurityGroup {
	return armnetwork.SecurityGroup{
		Location: to.Ptr(cfg.Location),
		Tags:     Tags(cfg),
		Properties: &armnetwork.SecurityGroupPropertiesFormat{
			SecurityRules: []*armnetwork.SecurityRule{
				rdpRule(cfg.AllowedSources()),
				denyAllInboundRule(),
			},
		},
	}
}

func rdpRule(sources []string) *armnetwork.SecurityRule {
	props := &armnetwork.SecurityRulePropertiesFormat{
		Protocol:                 to.Ptr(armnetwork.SecurityRuleProtocolTCP),
		SourcePortRange:          to.Ptr(anyPortOrAddress),
		DestinationPortRange:     to.Ptr(RDPPort),
		DestinationAddressPrefix: to.Ptr(anyPortOrAddress),
		Access:                   to.Ptr(armnetwork.SecurityRuleAccessAllow),
		Priority:                 to.Ptr[int32](RDPRulePriority),
		Direction:                to.Ptr(armnetwork.SecurityRuleDirectionInbound),
	}

	// ARM rejects a rule that sets both the single and the plural form.
	if len(sources) == 1 {
		props.SourceAddressPrefix = to.Ptr(sources[0])
	} else {
		props.SourceAddressPrefixes = valto.PtrSlice(sources)
	}

	return &armnetwork.SecurityRule{
		Name:       to.Ptr(RDPRuleName),
		Properties: props,
	}
}

func denyAllInboundRule() *armnetwork.SecurityRule {
	return &armnetwork.SecurityRule{
		Name: to.Ptr(DenyAllRuleName),
		Properties: &armnetwork.SecurityRulePropertiesFormat{
			Protocol:                 to.Ptr(armnetwork.SecurityRuleProtocolAsterisk),
			SourcePortRange:          to.Ptr(anyPortOrAddress),
			DestinationPortRange:     to.Ptr(anyPortOrAddress),
			SourceAddressPrefix:      to.Ptr(anyPortOrAddress),
			DestinationAddressPrefix: to.Ptr(anyPortOrAddress),
			Access:                   to.Ptr(armnetwork.SecurityRuleAccessDeny),
			Priority:                 to.Ptr[int32](DenyAllPriority),
			Direction:                to.Ptr(armnetwork.SecurityRuleDirectionInbound),
		},
	}
}

// VirtualNetworkParameters returns the virtual network request body.
// The single subnet is bound to the network security group nsgID.
func VirtualNetworkParameters(cfg *config.Config, nsgID string) armnetwork.VirtualNetwork {
	return armnetwork.VirtualNetwork{
		Location: to.Ptr(cfg.Location),
		Tags:     Tags(cfg),
		Properties: &armnetwork.VirtualNetworkPropertiesFormat{
			AddressSpace: &armnetwork.AddressSpace{
				AddressPrefixes: []*string{to.Ptr(cfg.Network.VnetPrefix)},
			},
			Subnets: []*armnetwork.Subnet{
				{
					Name: to.Ptr(cfg.Network.SubnetName),
					Properties: &armnetwork.SubnetPropertiesFormat{
						AddressPrefix:        to.Ptr(cfg.Network.SubnetPrefix),
						NetworkSecurityGroup: &armnetwork.SecurityGroup{ID: to.Ptr(nsgID)},
					},
				},
			},
		},
	}
}

// PublicIPParameters returns the request body of the Standard, statically allocated public IP address.
func PublicIPParameters(cfg *config.Config) armnetwork.PublicIPAddress {
	return armnetwork.PublicIPAddress{
		Location: to.Ptr(cfg.Location),
		Tags:     Tags(cfg),
		SKU: &armnetwork.PublicIPAddressSKU{
			Name: to.Ptr(armnetwork.PublicIPAddressSKUNameStandard),
		},
		Properties: &armnetwork.PublicIPAddressPropertiesFormat{
			PublicIPAllocationMethod: to.Ptr(armnetwork.IPAllocationMethodStatic),
		},
	}
}

// InterfaceParameters returns the network interface request body, attached to subnetID and publicIPID.
func InterfaceParameters(cfg *config.Config, subnetID, publicIPID string) armnetwork.Interface {
	return armnetwork.Interface{
		Location: to.Ptr(cfg.Location),
		Tags:     Tags(cfg),
		Properties: &armnetwork.InterfacePropertiesFormat{
			IPConfigurations: []*armnetwork.InterfaceIPConfiguration{
				{
					Name: to.Ptr(IPConfigName),
					Properties: &armnetwork.InterfaceIPConfigurationPropertiesFormat{
						Subnet:          &armnetwork.Subnet{ID: to.Ptr(subnetID)},
						PublicIPAddress: &armnetwork.PublicIPAddress{ID: to.Ptr(publicIPID)},
					},
				},
			},
		},
	}
}

// VirtualMachineParameters returns the virtual machine request body with nicID as its primary interface.
func VirtualMachineParameters(cfg *config.Config, nicID string) armcompute.VirtualMachine {
	return armcompute.VirtualMachine{
		Location: to.Ptr(cfg.Location),
		Tags:     Tags(cfg),
		Properties: &armcompute.VirtualMachineProperties{
			HardwareProfile: &armcompute.HardwareProfile{
				VMSize: to.Ptr(armcompute.VirtualMachineSizeTypes(cfg.VM.Size)),
			},
			StorageProfile: &armcompute.StorageProfile{
				ImageReference: &armcompute.ImageReference{
					Publisher: to.Ptr(cfg.VM.Image.Publisher),
					Offer:     to.Ptr(cfg.VM.Image.Offer),
					SKU:       to.Ptr(cfg.VM.Image.Sku),
					Version:   to.Ptr(cfg.VM.Image.Version),
				},
				OSDisk: &armcompute.OSDisk{
					Name:         to.Ptr(cfg.OsDiskName()),
					OSType:       to.Ptr(armcompute.OperatingSystemTypesWindows),
					Caching:      to.Ptr(armcompute.CachingTypesReadWrite),
					CreateOption: to.Ptr(armcompute.DiskCreateOptionTypesFromImage),
					ManagedDisk: &armcompute.ManagedDiskParameters{
						StorageAccountType: to.Ptr(armcompute.StorageAccountTypes(cfg.VM.OsDiskType)),
					},
				},
			},
			OSProfile: &armcompute.OSProfile{
				ComputerName:  to.Ptr(cfg.VM.Name),
				AdminUsername: to.Ptr(cfg.Secrets.AdminUsername),
				AdminPassword: to.Ptr(cfg.Secrets.AdminPassword),
				WindowsConfiguration: &armcompute.WindowsConfiguration{
					ProvisionVMAgent:       to.Ptr(true),
					EnableAutomaticUpdates: to.Ptr(true),
				},
			},
			NetworkProfile: &armcompute.NetworkProfile{
				NetworkInterfaces: []*armcompute.NetworkInterfaceReference{
					{
						ID: to.Ptr(nicID),
						Properties: &armcompute.NetworkInterfaceReferenceProperties{
							Primary: to.Ptr(true),
						},
					},
				},
			},
		},
	}
}
