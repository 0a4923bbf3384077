// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package command

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Azure/securevm"
	"github.com/Azure/securevm/internal/environment"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// readPassword reads a password from the terminal without echo.
var readPassword = func() ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, errors.New("standard input is not a terminal")
	}

	return term.ReadPassword(fd)
}

func newDeployCommand(settings *viper.Viper) *cobra.Command {
	var promptPassword bool

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Create or update every resource of the deployment.",
		Long: `Create or update the resource group, network security group, virtual network, public IP,
network interface and virtual machine, in that order. A failing step stops the deployment;
resources created by earlier steps are left in place and a new run converges them.`,
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

			if promptPassword && cfg.Secrets.AdminPassword == "" {
				pw, err := promptForPassword(cmd.ErrOrStderr(), cfg.Secrets.AdminUsername)
				if err != nil {
					return err
				}

				cfg.Secrets.AdminPassword = pw
			}

			if err := cfg.ValidateWithLogger(logger); err != nil {
				return explainMissingSecrets(err)
			}

			p, err := newProvisioner(cfg, logger)
			if err != nil {
				return err
			}

			res, err := p.Deploy(cmd.Context(), cfg)
			if err != nil {
				if step, ok := securevm.FailedStep(err); ok && step > securevm.StepResourceGroup {
					logger.Warn().Str("step", step.Progress()).
						Msg("deployment stopped, resources created by earlier steps were kept")
				}

				return err
			}

			if isJSON(settings) {
				return writeJSON(cmd.OutOrStdout(), res)
			}

			rows := make([][]string, 0, len(res.Summary()))
			for _, kv := range res.Summary() {
				rows = append(rows, []string{kv[0], kv[1]})
			}

			writeTable(cmd.OutOrStdout(), []string{"Deployment", "Value"}, rows)

			return nil
		},
	}

	cmd.Flags().BoolVar(&promptPassword, "prompt-password", false,
		fmt.Sprintf("Read the administrator password from the terminal when %s is empty.", environment.AdminPasswordEnv))

	return cmd
}

func promptForPassword(w io.Writer, user string) (string, error) {
	if user == "" {
		user = "the administrator"
	}

	fmt.Fprintf(w, "Password for %s: ", user) //nolint:errcheck

	b, err := readPassword()
	fmt.Fprintln(w) //nolint:errcheck

	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}

	return string(b), nil
}
