// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package securevm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/securevm/config"
	"github.com/Azure/securevm/internal/assets"
)

// redactedPassword replaces the admin password in planned request bodies.
const redactedPassword = "********"

// Plan is every request body a deployment would send, in order.
type Plan struct {
	DeploymentID string             `json:"deployment_id"`
	Resources    []*PlannedResource `json:"resources"`
}

// PlannedResource is one create-or-update request of a Plan.
type PlannedResource struct {
	Step Step   `json:"step"`
	Type string `json:"type"`
	Name string `json:"name"`
	ID   string `json:"id"`
	Body any    `json:"body"`
}

// Plan assembles the deployment without calling Azure.
// IDs of referenced resources are computed rather than returned by Azure,
// and the admin password is redacted.
func (p *Provisioner) Plan(cfg *config.Config) (*Plan, error) {
	return NewPlan(cfg)
}

// NewPlan assembles the request bodies of a deployment of cfg.
func NewPlan(cfg *config.Config) (*Plan, error) {
	sub := cfg.Secrets.SubscriptionID
	if sub == "" {
		return nil, errors.New("securevm.NewPlan: subscription ID is required to compute resource IDs")
	}

	rg := cfg.ResourceGroup.Name
	id := func(resourceType, name string) string {
		return assets.ResourceID(sub, rg, resourceType, name)
	}

	nsgID := id(assets.ResourceTypeSecurityGroup, cfg.Network.NsgName)
	subnetID := assets.SubnetID(sub, rg, cfg.Network.VnetName, cfg.Network.SubnetName)
	pipID := id(assets.ResourceTypePublicIPAddress, cfg.PublicIPName())
	nicID := id(assets.ResourceTypeNetworkInterface, cfg.NicName())

	vm := VirtualMachineParameters(cfg, nicID)
	if vm.Properties.OSProfile.AdminPassword != nil {
		vm.Properties.OSProfile.AdminPassword = to.Ptr(redactedPassword)
	}

	return &Plan{
		DeploymentID: cfg.DeploymentID(),
		Resources: []*PlannedResource{
			{
				Step: StepResourceGroup,
				Type: assets.ResourceTypeResourceGroup,
				Name: rg,
				ID:   assets.ResourceGroupID(sub, rg),
				Body: ResourceGroupParameters(cfg),
			},
			{
				Step: StepSecurityGroup,
				Type: assets.ResourceTypeSecurityGroup,
				Name: cfg.Network.NsgName,
				ID:   nsgID,
				Body: SecurityGroupParameters(cfg),
			},
			{
				Step: StepVirtualNetwork,
				Type: assets.ResourceTypeVirtualNetwork,
				Name: cfg.Network.VnetName,
				ID:   id(assets.ResourceTypeVirtualNetwork, cfg.Network.VnetName),
				Body: VirtualNetworkParameters(cfg, nsgID),
			},
			{
				Step: StepPublicIP,
				Type: assets.ResourceTypePublicIPAddress,
				Name: cfg.PublicIPName(),
				ID:   pipID,
				Body: PublicIPParameters(cfg),
			},
			{
				Step: StepNetworkInterface,
				Type: assets.ResourceTypeNetworkInterface,
				Name: cfg.NicName(),
				ID:   nicID,
				Body: InterfaceParameters(cfg, subnetID, pipID),
			},
			{
				Step: StepVirtualMachine,
				Type: assets.ResourceTypeVirtualMachine,
				Name: cfg.VM.Name,
				ID:   id(assets.ResourceTypeVirtualMachine, cfg.VM.Name),
				Body: vm,
			},
		},
	}, nil
}

// Resource returns the planned resource of a step, or nil.
func (p *Plan) Resource(s Step) *PlannedResource {
	for _, r := range p.Resources {
		if r.Step == s {
			return r
		}
	}

	return nil
}

// Document returns the body as plain JSON values. ARM models escape <, > and & in their
// own MarshalJSON, so encoders only control HTML escaping when they encode the document.
func (r *PlannedResource) Document() (any, error) {
	raw, err := json.Marshal(r.Body)
	if err != nil {
		return nil, fmt.Errorf("securevm.PlannedResource.Document: encoding %s %q: %w", r.Type, r.Name, err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("securevm.PlannedResource.Document: decoding %s %q: %w", r.Type, r.Name, err)
	}

	return doc, nil
}

// WriteJSON writes the plan to w as indented JSON without HTML escaping.
func (p *Plan) WriteJSON(w io.Writer) error {
	out := Plan{DeploymentID: p.DeploymentID, Resources: make([]*PlannedResource, 0, len(p.Resources))}

	for _, r := range p.Resources {
		doc, err := r.Document()
		if err != nil {
			return fmt.Errorf("securevm.Plan.WriteJSON: %w", err)
		}

		plain := *r
		plain.Body = doc
		out.Resources = append(out.Resources, &plain)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("securevm.Plan.WriteJSON: %w", err)
	}

	return nil
}
