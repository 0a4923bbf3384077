// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package securevm

import (
	"context"
	"errors"
	"fmt"

	"github.com/Azure/securevm/config"
)

// Destroy deletes the resource group of the deployment and with it every resource inside.
// A resource group that does not exist is not an error.
func (p *Provisioner) Destroy(ctx context.Context, cfg *config.Config) error {
	if p.clients == nil {
		return errors.New("securevm.Destroy: no Azure clients configured")
	}

	name := cfg.ResourceGroup.Name
	if name == "" {
		return errors.New("securevm.Destroy: resource group name is empty")
	}

	exists, err := p.clients.ResourceGroups.CheckExistence(ctx, name, nil)
	if err != nil {
		return fmt.Errorf("securevm.Destroy: checking resource group %s: %w", name, err)
	}

	if !exists.Success {
		p.logger.Info().Str("resource_group", name).Msg("resource group does not exist, nothing to delete")
		return nil
	}

	p.logger.Info().Str("resource_group", name).Msg("deleting resource group")

	poller, err := p.clients.ResourceGroups.BeginDelete(ctx, name, nil)
	if err != nil {
		if isNotFoundError(err) {
			return nil
		}

		return fmt.Errorf("securevm.Destroy: deleting resource group %s: %w", name, err)
	}

	if _, err := poller.PollUntilDone(ctx, p.pollOptions()); err != nil {
		return fmt.Errorf("securevm.Destroy: waiting for resource group %s deletion: %w", name, err)
	}

	p.logger.Info().Str("resource_group", name).Msg("resource group deleted")

	return nil
}
