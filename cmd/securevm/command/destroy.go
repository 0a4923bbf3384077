// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package command

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// errNotConfirmed is returned when the user declines a destroy.
var errNotConfirmed = errors.New("destroy cancelled")

func newDestroyCommand(settings *viper.Viper) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Delete the resource group of the deployment and everything in it.",
		Long: `Delete the resource group of the deployment and everything in it.

This also deletes resources in the group that securevm did not create.
A resource group that does not exist is not an error.`,
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

			if err := requireSubscription(cfg); err != nil {
				return explainMissingSecrets(err)
			}

			if !yes {
				if err := confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), cfg.ResourceGroup.Name); err != nil {
					return err
				}
			}

			p, err := newProvisioner(cfg, logger)
			if err != nil {
				return err
			}

			return p.Destroy(cmd.Context(), cfg)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation.")

	return cmd
}

func confirm(in io.Reader, out io.Writer, resourceGroup string) error {
	fmt.Fprintf(out, "Delete resource group %q and every resource in it? [y/N]: ", resourceGroup) //nolint:errcheck

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("reading confirmation: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return nil
	default:
		return errNotConfirmed
	}
}
