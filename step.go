// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package securevm

import "fmt"

// Step is one stage of a deployment, numbered from 1.
type Step int

// The steps of a deployment, in the order they run.
const (
	StepLoadConfig Step = iota + 1
	StepConnect
	StepResourceGroup
	StepSecurityGroup
	StepVirtualNetwork
	StepPublicIP
	StepNetworkInterface
	StepVirtualMachine
)

// StepCount is the number of steps in a deployment.
const StepCount = int(StepVirtualMachine)

var stepNames = map[Step]string{
	StepLoadConfig:       "load configuration",
	StepConnect:          "connect to Azure",
	StepResourceGroup:    "resource group",
	StepSecurityGroup:    "network security group",
	StepVirtualNetwork:   "virtual network",
	StepPublicIP:         "public IP address",
	StepNetworkInterface: "network interface",
	StepVirtualMachine:   "virtual machine",
}

// String returns a short description of the step.
func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}

	return fmt.Sprintf("step(%d)", int(s))
}

// Progress returns the step position such as "3/8".
func (s Step) Progress() string {
	return fmt.Sprintf("%d/%d", int(s), StepCount)
}
