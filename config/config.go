// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/Azure/securevm/internal/environment"
	"github.com/brunoga/deep"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
)

const (
	redactedValue        = "********"
	subscriptionIDPrefix = 8 // number of subscription ID characters left visible when redacted
)

// Config is the full description of one deployment.
type Config struct {
	Location      string            `mapstructure:"location" json:"location"`
	ResourceGroup ResourceGroup     `mapstructure:"resource_group" json:"resource_group"`
	Network       Network           `mapstructure:"network" json:"network"`
	VM            VM                `mapstructure:"vm" json:"vm"`
	Tags          map[string]string `mapstructure:"tags" json:"tags,omitempty"`
	Secrets       Secrets           `mapstructure:"-" json:"secrets"`
}

// ResourceGroup holds the settings of the resource group that contains the deployment.
type ResourceGroup struct {
	Name string `mapstructure:"name" json:"name"`
}

// Network holds the names and address spaces of the network resources.
type Network struct {
	NsgName      string `mapstructure:"nsg_name" json:"nsg_name"`
	VnetName     string `mapstructure:"vnet_name" json:"vnet_name"`
	SubnetName   string `mapstructure:"subnet_name" json:"subnet_name"`
	VnetPrefix   string `mapstructure:"vnet_prefix" json:"vnet_prefix"`
	SubnetPrefix string `mapstructure:"subnet_prefix" json:"subnet_prefix"`
}

// VM holds the virtual machine settings.
type VM struct {
	Name       string `mapstructure:"name" json:"name"`
	Size       string `mapstructure:"size" json:"size"`
	Image      Image  `mapstructure:"image" json:"image"`
	OsDiskType string `mapstructure:"os_disk_type" json:"os_disk_type"`
}

// Image is a marketplace image reference.
type Image struct {
	Publisher string `mapstructure:"publisher" json:"publisher"`
	Offer     string `mapstructure:"offer" json:"offer"`
	Sku       string `mapstructure:"sku" json:"sku"`
	Version   string `mapstructure:"version" json:"version"`
}

// Secrets are read from the environment, never from the configuration file.
type Secrets struct {
	SubscriptionID  string `json:"subscription_id"`
	AdminUsername   string `json:"admin_username"`
	AdminPassword   string `json:"admin_password"`
	AllowedSourceIP string `json:"allowed_source_ip"`
}

// SecretsFromEnv reads the deployment secrets from the process environment.
func SecretsFromEnv() Secrets {
	return Secrets{
		SubscriptionID:  strings.TrimSpace(os.Getenv(environment.SubscriptionIDEnv)),
		AdminUsername:   strings.TrimSpace(os.Getenv(environment.AdminUsernameEnv)),
		AdminPassword:   os.Getenv(environment.AdminPasswordEnv),
		AllowedSourceIP: strings.TrimSpace(os.Getenv(environment.AllowedSourceEnv)),
	}
}

// Missing returns the names of the required environment variables that are empty.
func (s Secrets) Missing() []string {
	values := map[string]string{
		environment.SubscriptionIDEnv: s.SubscriptionID,
		environment.AdminUsernameEnv:  s.AdminUsername,
		environment.AdminPasswordEnv:  s.AdminPassword,
		environment.AllowedSourceEnv:  s.AllowedSourceIP,
	}

	var missing []string

	for _, name := range environment.RequiredSecrets() {
		if values[name] == "" {
			missing = append(missing, name)
		}
	}

	return missing
}

// MaskedSubscriptionID returns the first characters of the subscription ID followed by an ellipsis.
func (s Secrets) MaskedSubscriptionID() string {
	if len(s.SubscriptionID) <= subscriptionIDPrefix {
		return s.SubscriptionID
	}

	return s.SubscriptionID[:subscriptionIDPrefix] + "..."
}

// AllowedSources returns the addresses or prefixes in ALLOWED_SOURCE_IP.
// The value is a comma separated list; duplicates and blanks are dropped and order is kept.
func (c *Config) AllowedSources() []string {
	seen := mapset.NewThreadUnsafeSet[string]()
	result := make([]string, 0, 1)

	for _, src := range strings.Split(c.Secrets.AllowedSourceIP, ",") {
		src = strings.TrimSpace(src)
		if src == "" || !seen.Add(src) {
			continue
		}

		result = append(result, src)
	}

	return result
}

// PublicIPName is the name of the public IP address of the VM.
func (c *Config) PublicIPName() string {
	return "pip-" + c.VM.Name
}

// NicName is the name of the network interface of the VM.
func (c *Config) NicName() string {
	return "nic-" + c.VM.Name
}

// OsDiskName is the name of the managed OS disk of the VM.
func (c *Config) OsDiskName() string {
	return "osdisk-" + c.VM.Name
}

// DeploymentID returns a stable identifier for this deployment.
// It is the same for every run against the same subscription, resource group and VM.
func (c *Config) DeploymentID() string {
	return uuidV5(c.Secrets.SubscriptionID, "/", c.ResourceGroup.Name, "/", c.VM.Name).String()
}

// Redacted returns a deep copy of the configuration that is safe to print.
func (c *Config) Redacted() (*Config, error) {
	cpy, err := deep.Copy(c)
	if err != nil {
		return nil, fmt.Errorf("config.Redacted: copying configuration: %w", err)
	}

	if cpy.Secrets.AdminPassword != "" {
		cpy.Secrets.AdminPassword = redactedValue
	}

	cpy.Secrets.SubscriptionID = c.Secrets.MaskedSubscriptionID()

	return cpy, nil
}

func uuidV5(s ...string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(strings.Join(s, "")))
}
