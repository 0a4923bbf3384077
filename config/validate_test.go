// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package config

import (
	"strings"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Location:      "westeurope",
		ResourceGroup: ResourceGroup{Name: "rg-secure-vm"},
		Network: Network{
			NsgName:      "nsg-secure-vm",
			VnetName:     "vnet-secure-vm",
			SubnetName:   "snet-secure-vm",
			VnetPrefix:   "10.0.0.0/16",
			SubnetPrefix: "10.0.1.0/24",
		},
		VM: VM{
			Name: "vm-secure-01",
			Size: DefaultVMSize,
			Image: Image{
				Publisher: DefaultImagePublisher,
				Offer:     DefaultImageOffer,
				Sku:       DefaultImageSku,
				Version:   DefaultImageVersion,
			},
			OsDiskType: DefaultOsDiskType,
		},
		Secrets: Secrets{
			SubscriptionID:  "11111111-2222-3333-4444-555555555555",
			AdminUsername:   "azureops",
			AdminPassword:   "Correct-Horse-42",
			AllowedSourceIP: "198.51.100.7",
		},
	}
}

func TestValidateValid(t *testing.T) {
	t.Parallel()

	assert.NoError(t, validConfig().Validate())
}

func TestValidateMissingSecrets(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Secrets.AdminPassword = ""
	cfg.Secrets.AllowedSourceIP = ""

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrMissingSecrets)
	assert.Contains(t, err.Error(), "AZURE_VM_ADMIN_PASSWORD, ALLOWED_SOURCE_IP")
}

func TestValidateReportsEveryFailure(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Location = ""
	cfg.VM.Name = "this-name-is-far-too-long"
	cfg.Network.SubnetPrefix = "192.168.0.0/24"

	err := cfg.Validate()
	require.Error(t, err)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 3)
}

func TestValidateField(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "resource group name too long",
			mutate:  func(c *Config) { c.ResourceGroup.Name = strings.Repeat("r", 81) },
			wantErr: "longer than 80 characters",
		},
		{
			name:    "empty nsg name",
			mutate:  func(c *Config) { c.Network.NsgName = " " },
			wantErr: "network.nsg_name: must not be empty",
		},
		{
			name:    "computer name with underscore",
			mutate:  func(c *Config) { c.VM.Name = "vm_secure" },
			wantErr: "letters, digits and hyphens",
		},
		{
			name:    "numeric computer name",
			mutate:  func(c *Config) { c.VM.Name = "12345" },
			wantErr: "entirely numeric",
		},
		{
			name:    "bad vnet prefix",
			mutate:  func(c *Config) { c.Network.VnetPrefix = "10.0.0.0" },
			wantErr: "network.vnet_prefix",
		},
		{
			name:    "subnet wider than vnet",
			mutate:  func(c *Config) { c.Network.SubnetPrefix = "10.0.0.0/8" },
			wantErr: "is not inside the virtual network prefix",
		},
		{
			name:    "allowed source wildcard",
			mutate:  func(c *Config) { c.Secrets.AllowedSourceIP = "*" },
			wantErr: "would allow RDP from anywhere",
		},
		{
			name:    "allowed source zero prefix",
			mutate:  func(c *Config) { c.Secrets.AllowedSourceIP = "0.0.0.0/0" },
			wantErr: "would allow RDP from anywhere",
		},
		{
			name:    "allowed source garbage",
			mutate:  func(c *Config) { c.Secrets.AllowedSourceIP = "198.51.100.7, my-laptop" },
			wantErr: `"my-laptop" is not an IP address or CIDR prefix`,
		},
		{
			name:    "allowed source only commas",
			mutate:  func(c *Config) { c.Secrets.AllowedSourceIP = " , ," },
			wantErr: "contains no address",
		},
		{
			name:    "reserved admin",
			mutate:  func(c *Config) { c.Secrets.AdminUsername = "Administrator" },
			wantErr: "is reserved by Azure",
		},
		{
			name:    "admin ending with period",
			mutate:  func(c *Config) { c.Secrets.AdminUsername = "ops." },
			wantErr: "must not end with a period",
		},
		{
			name:    "short password",
			mutate:  func(c *Config) { c.Secrets.AdminPassword = "Sh0rt!" },
			wantErr: "between 12 and 123 characters",
		},
		{
			name:    "weak password",
			mutate:  func(c *Config) { c.Secrets.AdminPassword = "alllowercaseletters" },
			wantErr: "must contain 3 of",
		},
		{
			name:    "unknown disk type",
			mutate:  func(c *Config) { c.VM.OsDiskType = "Gold_LRS" },
			wantErr: "vm.os_disk_type",
		},
		{
			name:    "empty image sku",
			mutate:  func(c *Config) { c.VM.Image.Sku = "" },
			wantErr: "vm.image.sku: must not be empty",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tc.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidatePasswordNeverInError(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Secrets.AdminPassword = "onlylowercasepassword"

	err := cfg.Validate()
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "onlylowercasepassword")
}

func TestValidateIPv6Sources(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Secrets.AllowedSourceIP = "2001:db8::1,2001:db8:1::/48"
	assert.NoError(t, cfg.Validate())
}
