// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package command

import (
	"github.com/Azure/securevm"
	"github.com/Azure/securevm/deployment"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newPlanCommand(settings *viper.Viper) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "plan [flags]",
		Short: "Show the request bodies a deployment would send, without calling Azure.",
		Long: `Show the request bodies a deployment would send, without calling Azure.

With --out, each body is written to its own JSON file, prefixed with the step number,
together with a plan.json index. The administrator password is always redacted.`,
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

			plan, err := securevm.NewPlan(cfg)
			if err != nil {
				return err
			}

			if outDir == "" {
				return plan.WriteJSON(cmd.OutOrStdout())
			}

			if err := deployment.NewFSWriter().Write(cmd.Context(), plan, outDir); err != nil {
				return err
			}

			logger.Info().Str("dir", outDir).Int("resources", len(plan.Resources)).Msg("plan written")

			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "", "Directory to write one JSON file per resource to, instead of stdout.")

	return cmd
}
