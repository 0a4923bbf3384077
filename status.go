// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package securevm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v2"
	"github.com/Azure/securevm/config"
	"github.com/Azure/securevm/to"
	"golang.org/x/sync/errgroup"
)

// Status code prefixes of a virtual machine instance view.
const (
	provisioningStatePrefix = "ProvisioningState/"
	powerStatePrefix        = "PowerState/"
)

// Status is the observed state of a deployed virtual machine.
type Status struct {
	VMName            string `json:"vm_name"`
	ProvisioningState string `json:"provisioning_state"`
	PowerState        string `json:"power_state"`
	PublicIPAddress   string `json:"public_ip_address"`
}

// Running reports whether the virtual machine is powered on.
func (s *Status) Running() bool {
	return s.PowerState == "running"
}

// Status reads the instance view of the virtual machine and its public IP address.
// ErrNotDeployed is returned if either does not exist.
func (p *Provisioner) Status(ctx context.Context, cfg *config.Config) (*Status, error) {
	if p.clients == nil {
		return nil, errors.New("securevm.Status: no Azure clients configured")
	}

	st := &Status{VMName: cfg.VM.Name}
	rg := cfg.ResourceGroup.Name

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		resp, err := p.clients.VirtualMachines.InstanceView(gctx, rg, cfg.VM.Name, nil)
		if err != nil {
			return notDeployed(err, "virtual machine "+cfg.VM.Name)
		}

		st.ProvisioningState, st.PowerState = instanceStates(resp.VirtualMachineInstanceView)

		return nil
	})

	g.Go(func() error {
		resp, err := p.clients.PublicIPAddresses.Get(gctx, rg, cfg.PublicIPName(), nil)
		if err != nil {
			return notDeployed(err, "public IP address "+cfg.PublicIPName())
		}

		if resp.Properties != nil {
			st.PublicIPAddress = to.ValOrZero(resp.Properties.IPAddress)
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("securevm.Status: %w", err)
	}

	return st, nil
}

func notDeployed(err error, what string) error {
	if isNotFoundError(err) {
		return fmt.Errorf("%s: %w", what, ErrNotDeployed)
	}

	return fmt.Errorf("reading %s: %w", what, err)
}

// instanceStates extracts the provisioning and power states from the instance view status codes.
func instanceStates(iv armcompute.VirtualMachineInstanceView) (provisioning, power string) {
	for _, s := range iv.Statuses {
		if s == nil {
			continue
		}

		code := to.ValOrZero(s.Code)

		switch {
		case strings.HasPrefix(code, provisioningStatePrefix):
			provisioning = strings.TrimPrefix(code, provisioningStatePrefix)
		case strings.HasPrefix(code, powerStatePrefix):
			power = strings.TrimPrefix(code, powerStatePrefix)
		}
	}

	return provisioning, power
}
