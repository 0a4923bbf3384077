// Package environment contains the names and defaults of the environment variables read by securevm.
package environment

import "os"

const (
	SubscriptionIDEnv = "AZURE_SUBSCRIPTION_ID"   // SubscriptionIDEnv holds the target subscription.
	AdminUsernameEnv  = "AZURE_VM_ADMIN_USERNAME" // AdminUsernameEnv holds the local administrator of the VM.
	AdminPasswordEnv  = "AZURE_VM_ADMIN_PASSWORD" // AdminPasswordEnv holds the local administrator password.
	AllowedSourceEnv  = "ALLOWED_SOURCE_IP"       // AllowedSourceEnv holds the addresses allowed to reach RDP.

	configFileDefault = "config.yaml"           // configFileDefault is the default deployment description.
	configFileEnv     = "SECUREVM_CONFIG"       // configFileEnv overrides the default configuration source.
	envFileDefault    = ".env"                  // envFileDefault is the dotenv file loaded before reading secrets.
	envFileEnv        = "SECUREVM_ENV_FILE"     // envFileEnv overrides the default dotenv file.
	armEndpointEnv    = "SECUREVM_ARM_ENDPOINT" // armEndpointEnv points the ARM clients at an emulator.
)

// RequiredSecrets lists the variables that must be non-empty before anything is deployed.
func RequiredSecrets() []string {
	return []string{SubscriptionIDEnv, AdminUsernameEnv, AdminPasswordEnv, AllowedSourceEnv}
}

// ConfigFile contents of the `SECUREVM_CONFIG` environment variable, or the default which is `config.yaml`.
func ConfigFile() string {
	return envOrDefault(configFileEnv, configFileDefault)
}

// EnvFile contents of the `SECUREVM_ENV_FILE` environment variable, or the default which is `.env`.
func EnvFile() string {
	return envOrDefault(envFileEnv, envFileDefault)
}

// ArmEndpoint contents of the `SECUREVM_ARM_ENDPOINT` environment variable.
// Empty means the public cloud endpoint of the selected Azure environment.
func ArmEndpoint() string {
	return os.Getenv(armEndpointEnv)
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
