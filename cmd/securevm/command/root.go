// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package command holds the cobra commands of the securevm tool.
package command

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

// Keys of the persistent settings, shared by the flags and the SECUREVM_* environment variables.
const (
	keyConfig   = "config"
	keyEnvFile  = "env-file"
	keyLogLevel = "log-level"
	keyOutput   = "output"
)

// Output formats.
const (
	outputText = "text"
	outputJSON = "json"
)

// NewRootCommand returns the securevm command tree.
// Every tree has its own settings, so trees built in tests do not share flag values.
func NewRootCommand() *cobra.Command {
	settings := viper.New()

	rootCmd := &cobra.Command{
		Use:     "securevm",
		Version: version,
		Short:   "Deploy a locked down Windows virtual machine to Azure",
		Long: `Deploy a locked down Windows virtual machine to Azure.

The deployment creates, in order, a resource group, a network security group that only
allows RDP from the addresses in ALLOWED_SOURCE_IP, a virtual network and subnet, a static
public IP address, a network interface and the virtual machine.

Every call is create-or-update, so running deploy again converges the same resources.
Secrets are read from the environment (AZURE_SUBSCRIPTION_ID, AZURE_VM_ADMIN_USERNAME,
AZURE_VM_ADMIN_PASSWORD, ALLOWED_SOURCE_IP), after loading a .env file if one exists.
`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			out := strings.ToLower(settings.GetString(keyOutput))
			if out != outputText && out != outputJSON {
				return fmt.Errorf("invalid --output %q, must be %s or %s", out, outputText, outputJSON)
			}

			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP(keyConfig, "c", "", "configuration file, local path or go-getter source (default $SECUREVM_CONFIG or config.yaml)")
	flags.String(keyEnvFile, "", "dotenv file loaded before reading secrets (default $SECUREVM_ENV_FILE or .env)")
	flags.String(keyLogLevel, "info", "log level: trace, debug, info, warn or error")
	flags.StringP(keyOutput, "o", outputText, "output format: text or json")

	settings.SetEnvPrefix("SECUREVM")
	settings.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	settings.AutomaticEnv()
	_ = settings.BindPFlags(flags)

	rootCmd.AddCommand(
		newDeployCommand(settings),
		newPlanCommand(settings),
		newStatusCommand(settings),
		newDestroyCommand(settings),
		newCheckCommand(settings),
	)

	return rootCmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		rootCmd.PrintErrf("%s %v\n", rootCmd.ErrPrefix(), err)
		cancel()
		os.Exit(1) //nolint:gocritic
	}
}
