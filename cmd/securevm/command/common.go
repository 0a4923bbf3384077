// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/securevm"
	"github.com/Azure/securevm/config"
	"github.com/Azure/securevm/internal/auth"
	"github.com/Azure/securevm/internal/environment"
	"github.com/Azure/securevm/internal/logging"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// emulatorToken is sent to an ARM endpoint set with SECUREVM_ARM_ENDPOINT.
const emulatorToken = "securevm-emulator"

func newLogger(cmd *cobra.Command, settings *viper.Viper) (zerolog.Logger, error) {
	lvl, err := logging.ParseLevel(settings.GetString(keyLogLevel))
	if err != nil {
		return zerolog.Nop(), err
	}

	if isJSON(settings) {
		return logging.NewJSON(cmd.ErrOrStderr(), lvl), nil
	}

	return logging.New(cmd.ErrOrStderr(), lvl), nil
}

func isJSON(settings *viper.Viper) bool {
	return strings.EqualFold(settings.GetString(keyOutput), outputJSON)
}

func loadConfig(cmd *cobra.Command, settings *viper.Viper) (*config.Config, error) {
	return config.Load(cmd.Context(), config.LoadOptions{
		Source:  settings.GetString(keyConfig),
		EnvFile: settings.GetString(keyEnvFile),
	})
}

// requireSubscription is the check of commands that read or delete, which need no VM secrets.
func requireSubscription(cfg *config.Config) error {
	if cfg.Secrets.SubscriptionID == "" {
		return fmt.Errorf("%w: %s", config.ErrMissingSecrets, environment.SubscriptionIDEnv)
	}

	return nil
}

func newProvisioner(cfg *config.Config, logger zerolog.Logger) (*securevm.Provisioner, error) {
	var (
		cred azcore.TokenCredential
		err  error
	)

	endpoint := environment.ArmEndpoint()
	if endpoint != "" {
		logger.Warn().Str("endpoint", endpoint).Msg("using a custom Resource Manager endpoint")
		cred = auth.StaticToken(emulatorToken)
	} else if cred, err = auth.NewToken(); err != nil {
		return nil, fmt.Errorf("could not get Azure credential: %w", err)
	}

	clients, err := securevm.NewClients(cfg.Secrets.SubscriptionID, cred, securevm.ClientOptions(auth.Cloud(), endpoint))
	if err != nil {
		return nil, err
	}

	return securevm.NewProvisioner(clients, &securevm.ProvisionerOptions{Logger: &logger}), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

func writeTable(w io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
}

// explainMissingSecrets adds a hint to errors about required variables.
func explainMissingSecrets(err error) error {
	if errors.Is(err, config.ErrMissingSecrets) {
		return fmt.Errorf("%w\nset them in the environment or in a .env file", err)
	}

	return err
}
