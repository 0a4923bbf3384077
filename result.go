// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package securevm

// Result is the outcome of a successful deployment.
type Result struct {
	VMName          string `json:"vm_name"`
	PublicIPAddress string `json:"public_ip_address"`
	AdminUsername   string `json:"admin_username"`
	Location        string `json:"location"`

	ResourceGroupID    string `json:"resource_group_id"`
	SecurityGroupID    string `json:"network_security_group_id"`
	VirtualNetworkID   string `json:"virtual_network_id"`
	SubnetID           string `json:"subnet_id"`
	PublicIPID         string `json:"public_ip_id"`
	NetworkInterfaceID string `json:"network_interface_id"`
	VirtualMachineID   string `json:"virtual_machine_id"`
}

// RDPCommand returns the command that opens a remote desktop session to the virtual machine.
// It is empty until a public IP address has been allocated.
func (r *Result) RDPCommand() string {
	if r.PublicIPAddress == "" {
		return ""
	}

	return "mstsc /v:" + r.PublicIPAddress
}

// Summary returns the label/value pairs printed after a deployment, in display order.
func (r *Result) Summary() [][2]string {
	ip := r.PublicIPAddress
	if ip == "" {
		ip = "(not allocated yet)"
	}

	return [][2]string{
		{"VM name", r.VMName},
		{"Public IP", ip},
		{"User", r.AdminUsername},
		{"Location", r.Location},
		{"Connect", r.RDPCommand()},
	}
}
