// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package command

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newCheckCommand(settings *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and secrets, then print the configuration with secrets redacted.",
		Long: `Validate the configuration and secrets, then print the configuration with secrets redacted.

Every failed check is reported, not only the first. Nothing is sent to Azure.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd, settings)
			if err != nil {
				return err
			}

			cfg, err := loadConfig(cmd, settings)
			if err != nil {
				return err
			}

			if err := cfg.ValidateWithLogger(logger); err != nil {
				return explainMissingSecrets(err)
			}

			redacted, err := cfg.Redacted()
			if err != nil {
				return err
			}

			return writeJSON(cmd.OutOrStdout(), redacted)
		},
	}
}
