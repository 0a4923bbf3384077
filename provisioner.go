// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package securevm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork/v7"
	"github.com/Azure/securevm/config"
	"github.com/Azure/securevm/to"
	"github.com/rs/zerolog"
)

// Provisioner runs deployments against Azure Resource Manager.
// Do not create this directly, use NewProvisioner instead.
type Provisioner struct {
	Options *ProvisionerOptions

	clients *Clients
	logger  zerolog.Logger
}

// ProvisionerOptions are options for the Provisioner.
type ProvisionerOptions struct {
	// Logger receives one event per step. Nil discards them.
	Logger *zerolog.Logger
	// PollFrequency is how often long running operations are polled. Zero uses the SDK default;
	// outside tests the SDK rejects anything below one second.
	PollFrequency time.Duration
}

// NewProvisioner returns a Provisioner using the supplied clients. opts may be nil.
func NewProvisioner(clients *Clients, opts *ProvisionerOptions) *Provisioner {
	if opts == nil {
		opts = new(ProvisionerOptions)
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Provisioner{
		Options: opts,
		clients: clients,
		logger:  logger,
	}
}

func (p *Provisioner) pollOptions() *runtime.PollUntilDoneOptions {
	if p.Options.PollFrequency == 0 {
		return nil
	}

	return &runtime.PollUntilDoneOptions{Frequency: p.Options.PollFrequency}
}

func (p *Provisioner) step(s Step) *zerolog.Event {
	return p.logger.Info().Str("step", s.Progress())
}

// Deploy creates or updates every resource of the deployment, in order, and returns what was built.
// It stops at the first failing step and returns a *StepError; earlier resources stay in place.
func (p *Provisioner) Deploy(ctx context.Context, cfg *config.Config) (*Result, error) {
	if err := cfg.CheckSecrets(); err != nil {
		return nil, NewStepError(StepLoadConfig, "", err)
	}

	if err := cfg.CheckAllowedSources(); err != nil {
		return nil, NewStepError(StepLoadConfig, "", err)
	}

	p.step(StepLoadConfig).
		Str("subscription", cfg.Secrets.MaskedSubscriptionID()).
		Str("location", cfg.Location).
		Strs("allowed_sources", cfg.AllowedSources()).
		Msg("configuration loaded")

	if p.clients == nil {
		return nil, NewStepError(StepConnect, "", errors.New("no Azure clients configured"))
	}

	p.step(StepConnect).Msg("connected to Azure")

	res := &Result{
		VMName:        cfg.VM.Name,
		AdminUsername: cfg.Secrets.AdminUsername,
		Location:      cfg.Location,
	}

	rg, err := p.createResourceGroup(ctx, cfg)
	if err != nil {
		return nil, NewStepError(StepResourceGroup, cfg.ResourceGroup.Name, err)
	}

	res.ResourceGroupID = rg

	nsg, err := p.createSecurityGroup(ctx, cfg)
	if err != nil {
		return nil, NewStepError(StepSecurityGroup, cfg.Network.NsgName, err)
	}

	res.SecurityGroupID = nsg

	vnet, subnet, err := p.createVirtualNetwork(ctx, cfg, nsg)
	if err != nil {
		return nil, NewStepError(StepVirtualNetwork, cfg.Network.VnetName, err)
	}

	res.VirtualNetworkID, res.SubnetID = vnet, subnet

	pip, err := p.createPublicIP(ctx, cfg)
	if err != nil {
		return nil, NewStepError(StepPublicIP, cfg.PublicIPName(), err)
	}

	res.PublicIPID = pip

	nic, err := p.createInterface(ctx, cfg, subnet, pip)
	if err != nil {
		return nil, NewStepError(StepNetworkInterface, cfg.NicName(), err)
	}

	res.NetworkInterfaceID = nic

	vm, err := p.createVirtualMachine(ctx, cfg, nic)
	if err != nil {
		return nil, NewStepError(StepVirtualMachine, cfg.VM.Name, err)
	}

	res.VirtualMachineID = vm

	addr, err := p.publicIPAddress(ctx, cfg)
	if err != nil {
		return nil, NewStepError(StepVirtualMachine, cfg.PublicIPName(), err)
	}

	res.PublicIPAddress = addr

	p.logger.Info().
		Str("vm", res.VMName).
		Str("public_ip", res.PublicIPAddress).
		Msg("deployment complete")

	return res, nil
}

func (p *Provisioner) createResourceGroup(ctx context.Context, cfg *config.Config) (string, error) {
	name := cfg.ResourceGroup.Name
	p.step(StepResourceGroup).Str("name", name).Msg("creating resource group")

	resp, err := p.clients.ResourceGroups.CreateOrUpdate(ctx, name, ResourceGroupParameters(cfg), nil)
	if err != nil {
		return "", fmt.Errorf("creating resource group: %w", err)
	}

	return idOf(StepResourceGroup, resp.ID)
}

func (p *Provisioner) createSecurityGroup(ctx context.Context, cfg *config.Config) (string, error) {
	name := cfg.Network.NsgName
	p.step(StepSecurityGroup).Str("name", name).Msg("creating network security group")

	poller, err := p.clients.SecurityGroups.BeginCreateOrUpdate(ctx, cfg.ResourceGroup.Name, name,
		SecurityGroupParameters(cfg), nil)
	if err != nil {
		return "", fmt.Errorf("creating network security group: %w", err)
	}

	resp, err := poller.PollUntilDone(ctx, p.pollOptions())
	if err != nil {
		return "", fmt.Errorf("waiting for network security group: %w", err)
	}

	p.step(StepSecurityGroup).
		Strs("rdp_allowed_from", cfg.AllowedSources()).
		Msg("RDP restricted to allowed sources, all other inbound traffic denied")

	return idOf(StepSecurityGroup, resp.ID)
}

// createVirtualNetwork returns the IDs of the virtual network and of its subnet.
func (p *Provisioner) createVirtualNetwork(ctx context.Context, cfg *config.Config, nsgID string) (string, string, error) {
	name := cfg.Network.VnetName
	p.step(StepVirtualNetwork).Str("name", name).Str("subnet", cfg.Network.SubnetName).Msg("creating virtual network")

	poller, err := p.clients.VirtualNetworks.BeginCreateOrUpdate(ctx, cfg.ResourceGroup.Name, name,
		VirtualNetworkParameters(cfg, nsgID), nil)
	if err != nil {
		return "", "", fmt.Errorf("creating virtual network: %w", err)
	}

	resp, err := poller.PollUntilDone(ctx, p.pollOptions())
	if err != nil {
		return "", "", fmt.Errorf("waiting for virtual network: %w", err)
	}

	vnetID, err := idOf(StepVirtualNetwork, resp.ID)
	if err != nil {
		return "", "", err
	}

	subnetID, err := subnetIDOf(resp.VirtualNetwork, cfg.Network.SubnetName)
	if err != nil {
		return "", "", err
	}

	return vnetID, subnetID, nil
}

// subnetIDOf finds the configured subnet in the returned network, falling back to the first subnet.
func subnetIDOf(vnet armnetwork.VirtualNetwork, name string) (string, error) {
	if vnet.Properties == nil || len(vnet.Properties.Subnets) == 0 {
		return "", errors.New("virtual network response has no subnets")
	}

	subnet := vnet.Properties.Subnets[0]

	for _, s := range vnet.Properties.Subnets {
		if s != nil && strings.EqualFold(to.ValOrZero(s.Name), name) {
			subnet = s
			break
		}
	}

	if subnet == nil || to.ValOrZero(subnet.ID) == "" {
		return "", errors.New("virtual network response has a subnet without an ID")
	}

	return *subnet.ID, nil
}

func (p *Provisioner) createPublicIP(ctx context.Context, cfg *config.Config) (string, error) {
	name := cfg.PublicIPName()
	p.step(StepPublicIP).Str("name", name).Msg("creating public IP address")

	poller, err := p.clients.PublicIPAddresses.BeginCreateOrUpdate(ctx, cfg.ResourceGroup.Name, name,
		PublicIPParameters(cfg), nil)
	if err != nil {
		return "", fmt.Errorf("creating public IP address: %w", err)
	}

	resp, err := poller.PollUntilDone(ctx, p.pollOptions())
	if err != nil {
		return "", fmt.Errorf("waiting for public IP address: %w", err)
	}

	return idOf(StepPublicIP, resp.ID)
}

func (p *Provisioner) createInterface(ctx context.Context, cfg *config.Config, subnetID, publicIPID string) (string, error) {
	name := cfg.NicName()
	p.step(StepNetworkInterface).Str("name", name).Msg("creating network interface")

	poller, err := p.clients.Interfaces.BeginCreateOrUpdate(ctx, cfg.ResourceGroup.Name, name,
		InterfaceParameters(cfg, subnetID, publicIPID), nil)
	if err != nil {
		return "", fmt.Errorf("creating network interface: %w", err)
	}

	resp, err := poller.PollUntilDone(ctx, p.pollOptions())
	if err != nil {
		return "", fmt.Errorf("waiting for network interface: %w", err)
	}

	return idOf(StepNetworkInterface, resp.ID)
}

func (p *Provisioner) createVirtualMachine(ctx context.Context, cfg *config.Config, nicID string) (string, error) {
	name := cfg.VM.Name
	p.step(StepVirtualMachine).
		Str("name", name).
		Str("size", cfg.VM.Size).
		Msg("creating virtual machine, this usually takes a few minutes")

	poller, err := p.clients.VirtualMachines.BeginCreateOrUpdate(ctx, cfg.ResourceGroup.Name, name,
		VirtualMachineParameters(cfg, nicID), nil)
	if err != nil {
		return "", fmt.Errorf("creating virtual machine: %w", err)
	}

	resp, err := poller.PollUntilDone(ctx, p.pollOptions())
	if err != nil {
		return "", fmt.Errorf("waiting for virtual machine: %w", err)
	}

	return idOf(StepVirtualMachine, resp.ID)
}

// publicIPAddress reads back the allocated address. It is empty if Azure has not assigned one yet.
func (p *Provisioner) publicIPAddress(ctx context.Context, cfg *config.Config) (string, error) {
	resp, err := p.clients.PublicIPAddresses.Get(ctx, cfg.ResourceGroup.Name, cfg.PublicIPName(), nil)
	if err != nil {
		return "", fmt.Errorf("reading public IP address: %w", err)
	}

	if resp.Properties == nil {
		return "", nil
	}

	return to.ValOrZero(resp.Properties.IPAddress), nil
}

func idOf(s Step, id *string) (string, error) {
	if to.ValOrZero(id) == "" {
		return "", fmt.Errorf("%s response has no ID", s)
	}

	return *id, nil
}
