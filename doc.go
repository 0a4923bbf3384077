// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package securevm provisions a single Windows virtual machine on Azure behind
// a restrictive network security group.
//
// A deployment is a fixed chain of create-or-update calls against Azure
// Resource Manager: resource group, network security group, virtual network
// and subnet, public IP address, network interface and virtual machine. Each
// call uses the resource ID returned by the one before it. Convergence,
// locking and validation of the resources are left to Azure; the chain
// stops at the first failure and does not roll anything back.
//
// The same request bodies can be rendered without touching Azure with NewPlan,
// and an existing deployment can be inspected with Provisioner.Status or
// removed with Provisioner.Destroy.
package securevm
