// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package config

import (
	"errors"
	"fmt"
	"net/netip"
	"slices"
	"strings"
	"unicode"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v2"
	"github.com/Azure/securevm/internal/tools/checker"
	"github.com/rs/zerolog"
)

const (
	// resourceNameLengthMax is the maximum length of resource names in Azure.
	resourceNameLengthMax = 80
	// computerNameLengthMax is the maximum length of a Windows computer name.
	computerNameLengthMax = 15
	// adminUsernameLengthMax is the maximum length of a Windows administrator name.
	adminUsernameLengthMax = 20
	passwordLengthMin      = 12
	passwordLengthMax      = 123
	// passwordClassesMin is how many of lower, upper, digit and special a password needs.
	passwordClassesMin = 3
)

// reservedAdminUsernames are rejected by Azure for Windows VMs.
var reservedAdminUsernames = []string{
	"1", "123", "a", "actuser", "adm", "admin", "admin1", "admin2", "administrator", "aspnet",
	"backup", "console", "david", "guest", "john", "owner", "root", "server", "sql", "support",
	"support_388945a0", "sys", "test", "test1", "test2", "test3", "user", "user1", "user2",
	"user3", "user4", "user5",
}

// openSources are address prefixes that would expose RDP to everyone.
var openSources = []string{"*", "any", "internet"}

// ErrMissingSecrets is returned when required environment variables are empty.
var ErrMissingSecrets = errors.New("missing required environment variables")

// ErrInvalidValue is an error type that indicates a configuration value is not acceptable.
type ErrInvalidValue struct {
	Key    string
	Value  string
	Reason string
}

// Error implements the error interface for type ErrInvalidValue.
func (e *ErrInvalidValue) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Key, e.Reason)
	}

	return fmt.Sprintf("%s: %q %s", e.Key, e.Value, e.Reason)
}

// NewErrInvalidValue creates a new ErrInvalidValue error.
func NewErrInvalidValue(key, value, reason string) error {
	return &ErrInvalidValue{Key: key, Value: value, Reason: reason}
}

// CheckSecrets returns an error wrapping ErrMissingSecrets that names every empty required variable.
func (c *Config) CheckSecrets() error {
	if missing := c.Secrets.Missing(); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingSecrets, strings.Join(missing, ", "))
	}

	return nil
}

// Validate runs every configuration check and returns all failures together.
func (c *Config) Validate() error {
	return c.ValidateWithLogger(zerolog.Nop())
}

// ValidateWithLogger is Validate, logging each check to l.
func (c *Config) ValidateWithLogger(l zerolog.Logger) error {
	v := checker.NewValidator(
		checker.NewValidatorCheck("secrets", c.CheckSecrets),
		checker.NewValidatorCheck("location", func() error { return checkNotEmpty("location", c.Location) }),
		checker.NewValidatorCheck("resource names", c.checkResourceNames),
		checker.NewValidatorCheck("computer name", func() error { return checkComputerName(c.VM.Name) }),
		checker.NewValidatorCheck("address prefixes", c.checkPrefixes),
		checker.NewValidatorCheck("allowed sources", c.CheckAllowedSources),
		checker.NewValidatorCheck("admin username", func() error { return checkAdminUsername(c.Secrets.AdminUsername) }),
		checker.NewValidatorCheck("admin password", func() error { return checkAdminPassword(c.Secrets.AdminPassword) }),
		checker.NewValidatorCheck("vm settings", c.checkVMSettings),
	).WithLogger(l)

	if err := v.Validate(); err != nil {
		return fmt.Errorf("config.Validate: %w", err)
	}

	return nil
}

func checkNotEmpty(key, value string) error {
	if strings.TrimSpace(value) == "" {
		return NewErrInvalidValue(key, "", "must not be empty")
	}

	return nil
}

func (c *Config) checkResourceNames() error {
	names := []struct{ key, value string }{
		{"resource_group.name", c.ResourceGroup.Name},
		{"network.nsg_name", c.Network.NsgName},
		{"network.vnet_name", c.Network.VnetName},
		{"network.subnet_name", c.Network.SubnetName},
		{"vm.name", c.VM.Name},
		{"public ip name", c.PublicIPName()},
		{"network interface name", c.NicName()},
		{"os disk name", c.OsDiskName()},
	}

	var errs []error

	for _, n := range names {
		if err := checkNotEmpty(n.key, n.value); err != nil {
			errs = append(errs, err)
			continue
		}

		if len(n.value) > resourceNameLengthMax {
			errs = append(errs, NewErrInvalidValue(n.key, n.value,
				fmt.Sprintf("is longer than %d characters", resourceNameLengthMax)))
		}
	}

	return errors.Join(errs...)
}

// checkComputerName enforces the Windows computer name rules, as the VM name doubles as the computer name.
func checkComputerName(name string) error {
	if name == "" {
		return NewErrInvalidValue("vm.name", "", "must not be empty")
	}

	if len(name) > computerNameLengthMax {
		return NewErrInvalidValue("vm.name", name,
			fmt.Sprintf("is longer than %d characters, the Windows computer name limit", computerNameLengthMax))
	}

	allDigits := true

	for _, r := range name {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-') {
			return NewErrInvalidValue("vm.name", name, "may only contain letters, digits and hyphens")
		}

		if !unicode.IsDigit(r) {
			allDigits = false
		}
	}

	if allDigits {
		return NewErrInvalidValue("vm.name", name, "must not be entirely numeric")
	}

	return nil
}

func (c *Config) checkPrefixes() error {
	vnet, err := netip.ParsePrefix(c.Network.VnetPrefix)
	if err != nil {
		return NewErrInvalidValue("network.vnet_prefix", c.Network.VnetPrefix, "is not a valid CIDR prefix")
	}

	subnet, err := netip.ParsePrefix(c.Network.SubnetPrefix)
	if err != nil {
		return NewErrInvalidValue("network.subnet_prefix", c.Network.SubnetPrefix, "is not a valid CIDR prefix")
	}

	vnet = vnet.Masked()
	subnet = subnet.Masked()

	if subnet.Bits() < vnet.Bits() || !vnet.Contains(subnet.Addr()) {
		return NewErrInvalidValue("network.subnet_prefix", c.Network.SubnetPrefix,
			fmt.Sprintf("is not inside the virtual network prefix %s", c.Network.VnetPrefix))
	}

	return nil
}

// CheckAllowedSources makes sure RDP stays restricted: every source must be a concrete address or prefix.
func (c *Config) CheckAllowedSources() error {
	if c.Secrets.AllowedSourceIP == "" {
		// reported by the secrets check
		return nil
	}

	sources := c.AllowedSources()
	if len(sources) == 0 {
		return NewErrInvalidValue("ALLOWED_SOURCE_IP", c.Secrets.AllowedSourceIP, "contains no address")
	}

	var errs []error

	for _, src := range sources {
		if slices.Contains(openSources, strings.ToLower(src)) {
			errs = append(errs, NewErrInvalidValue("ALLOWED_SOURCE_IP", src, "would allow RDP from anywhere"))
			continue
		}

		if _, err := netip.ParseAddr(src); err == nil {
			continue
		}

		pfx, err := netip.ParsePrefix(src)
		if err != nil {
			errs = append(errs, NewErrInvalidValue("ALLOWED_SOURCE_IP", src, "is not an IP address or CIDR prefix"))
			continue
		}

		if pfx.Bits() == 0 {
			errs = append(errs, NewErrInvalidValue("ALLOWED_SOURCE_IP", src, "would allow RDP from anywhere"))
		}
	}

	return errors.Join(errs...)
}

func checkAdminUsername(name string) error {
	if name == "" {
		// reported by the secrets check
		return nil
	}

	if len(name) > adminUsernameLengthMax {
		return NewErrInvalidValue("AZURE_VM_ADMIN_USERNAME", name,
			fmt.Sprintf("is longer than %d characters", adminUsernameLengthMax))
	}

	if strings.HasSuffix(name, ".") {
		return NewErrInvalidValue("AZURE_VM_ADMIN_USERNAME", name, "must not end with a period")
	}

	if slices.Contains(reservedAdminUsernames, strings.ToLower(name)) {
		return NewErrInvalidValue("AZURE_VM_ADMIN_USERNAME", name, "is reserved by Azure")
	}

	return nil
}

// checkAdminPassword never puts the password itself into the error.
func checkAdminPassword(pw string) error {
	if pw == "" {
		// reported by the secrets check
		return nil
	}

	if n := len(pw); n < passwordLengthMin || n > passwordLengthMax {
		return NewErrInvalidValue("AZURE_VM_ADMIN_PASSWORD", "",
			fmt.Sprintf("must be between %d and %d characters", passwordLengthMin, passwordLengthMax))
	}

	var lower, upper, digit, special bool

	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}

	classes := 0

	for _, ok := range []bool{lower, upper, digit, special} {
		if ok {
			classes++
		}
	}

	if classes < passwordClassesMin {
		return NewErrInvalidValue("AZURE_VM_ADMIN_PASSWORD", "",
			fmt.Sprintf("must contain %d of: lowercase, uppercase, digit, special character", passwordClassesMin))
	}

	return nil
}

func (c *Config) checkVMSettings() error {
	var errs []error

	for _, kv := range []struct{ key, value string }{
		{"vm.size", c.VM.Size},
		{"vm.image.publisher", c.VM.Image.Publisher},
		{"vm.image.offer", c.VM.Image.Offer},
		{"vm.image.sku", c.VM.Image.Sku},
		{"vm.image.version", c.VM.Image.Version},
	} {
		if err := checkNotEmpty(kv.key, kv.value); err != nil {
			errs = append(errs, err)
		}
	}

	if !isKnownOsDiskType(c.VM.OsDiskType) {
		errs = append(errs, NewErrInvalidValue("vm.os_disk_type", c.VM.OsDiskType,
			fmt.Sprintf("is not one of %q", knownOsDiskTypes())))
	}

	return errors.Join(errs...)
}

// knownOsDiskTypes returns the managed disk SKUs known to the compute SDK.
func knownOsDiskTypes() (types []string) {
	for _, t := range armcompute.PossibleStorageAccountTypesValues() {
		types = append(types, string(t))
	}

	return types
}

func isKnownOsDiskType(t string) bool {
	return slices.Contains(knownOsDiskTypes(), t)
}
