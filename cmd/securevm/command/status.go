// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package command

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newStatusCommand(settings *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the provisioning state, power state and public IP of the virtual machine.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd, settings)
			if err != nil {
				return err
			}

			cfg, err := loadConfig(cmd, settings)
			if err != nil {
				return err
			}

			if err := requireSubscription(cfg); err != nil {
				return explainMissingSecrets(err)
			}

			p, err := newProvisioner(cfg, logger)
			if err != nil {
				return err
			}

			st, err := p.Status(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			if isJSON(settings) {
				return writeJSON(cmd.OutOrStdout(), st)
			}

			writeTable(cmd.OutOrStdout(),
				[]string{"VM", "Provisioning", "Power", "Public IP"},
				[][]string{{st.VMName, st.ProvisioningState, st.PowerState, st.PublicIPAddress}})

			return nil
		},
	}
}
