// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Azure/securevm/internal/environment"
	"github.com/hashicorp/go-getter"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"gopkg.in/yaml.v3"
)

// Defaults applied to keys missing from the configuration file.
const (
	DefaultVnetPrefix     = "10.0.0.0/16"
	DefaultSubnetPrefix   = "10.0.1.0/24"
	DefaultVMSize         = "Standard_B2s"
	DefaultImagePublisher = "MicrosoftWindowsServer"
	DefaultImageOffer     = "WindowsServer"
	DefaultImageSku       = "2022-datacenter-azure-edition"
	DefaultImageVersion   = "latest"
	DefaultOsDiskType     = "Premium_LRS"
)

// LoadOptions controls where Load reads from.
type LoadOptions struct {
	// Source is a local path or a go-getter source for the YAML file.
	// Empty means environment.ConfigFile().
	Source string
	// EnvFile is a dotenv file loaded before the secrets are read.
	// Empty means environment.EnvFile(), which may be absent.
	EnvFile string
	// WorkDir is used to resolve relative go-getter sources. Empty means the process working directory.
	WorkDir string
}

// Load reads the environment file and the configuration file, applies defaults and
// reads the secrets from the environment. It does not validate the result.
func Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}

	src := opts.Source
	if src == "" {
		src = environment.ConfigFile()
	}

	path, cleanup, err := fetch(ctx, src, opts.WorkDir)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)

	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext != "yaml" && ext != "yml" {
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config.Load: reading %s: %w", src, err)
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config.Load: decoding %s: %w", src, err)
	}

	tags, err := readTags(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: decoding tags in %s: %w", src, err)
	}

	cfg.Tags = tags
	cfg.Location = canonicalLocation(cfg.Location)
	cfg.Secrets = SecretsFromEnv()

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("network.vnet_prefix", DefaultVnetPrefix)
	v.SetDefault("network.subnet_prefix", DefaultSubnetPrefix)
	v.SetDefault("vm.size", DefaultVMSize)
	v.SetDefault("vm.image.publisher", DefaultImagePublisher)
	v.SetDefault("vm.image.offer", DefaultImageOffer)
	v.SetDefault("vm.image.sku", DefaultImageSku)
	v.SetDefault("vm.image.version", DefaultImageVersion)
	v.SetDefault("vm.os_disk_type", DefaultOsDiskType)
}

// readTags decodes the tags node directly, as viper folds map keys to lower case
// and Azure keeps tag names exactly as written.
func readTags(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc struct {
		Tags map[string]string `yaml:"tags"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	return doc.Tags, nil
}

// loadEnvFile loads a dotenv file without overriding variables that are already set.
// The default file is optional, an explicitly named one is not.
func loadEnvFile(name string) error {
	explicit := name != ""
	if !explicit {
		name = environment.EnvFile()
	}

	if _, err := os.Stat(name); err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}

		return fmt.Errorf("config.loadEnvFile: %w", err)
	}

	if err := gotenv.Load(name); err != nil {
		return fmt.Errorf("config.loadEnvFile: parsing %s: %w", name, err)
	}

	return nil
}

// fetch returns a local path for src. Local files are used in place; anything else is
// downloaded with go-getter into a temporary directory removed by the returned cleanup func.
func fetch(ctx context.Context, src, pwd string) (string, func(), error) {
	noop := func() {}

	if _, err := os.Stat(src); err == nil {
		return src, noop, nil
	}

	if pwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", noop, fmt.Errorf("config.fetch: getting working directory: %w", err)
		}

		pwd = wd
	}

	tmp, err := os.MkdirTemp("", "securevm-config-")
	if err != nil {
		return "", noop, fmt.Errorf("config.fetch: creating temporary directory: %w", err)
	}

	cleanup := func() { _ = os.RemoveAll(tmp) }
	dst := filepath.Join(tmp, "config.yaml")

	client := &getter.Client{
		Ctx:  ctx,
		Src:  src,
		Dst:  dst,
		Pwd:  pwd,
		Mode: getter.ClientModeFile,
	}
	if err := client.Get(); err != nil {
		cleanup()
		return "", noop, fmt.Errorf("config.fetch: getting %s: %w", src, err)
	}

	return dst, cleanup, nil
}

// canonicalLocation strips whitespace and lowercases, so "West Europe" becomes "westeurope".
func canonicalLocation(s string) string {
	s = strings.ReplaceAll(s, " ", "")
	return strings.ToLower(s)
}
