// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/cloud"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

// environmentToCloud maps environment names to their corresponding cloud configurations.
var environmentToCloud = map[string]cloud.Configuration{
	"public":       cloud.AzurePublic,
	"usgovernment": cloud.AzureGovernment,
	"china":        cloud.AzureChina,
}

// Cloud returns the cloud selected by ARM_ENVIRONMENT or AZURE_ENVIRONMENT, defaulting to the public cloud.
func Cloud() cloud.Configuration {
	if env := getFirstSetEnvVar("ARM_ENVIRONMENT", "AZURE_ENVIRONMENT"); env != "" {
		if cfg, ok := environmentToCloud[env]; ok {
			return cfg
		}
	}

	return cloud.AzurePublic
}

// NewToken creates a new Entra token credential.
// Explicit service principal, managed identity or Azure CLI settings win;
// otherwise the default Azure credential chain is used.
func NewToken() (azcore.TokenCredential, error) {
	clientOpts := azcore.ClientOptions{Cloud: Cloud()}
	clientID := getFirstSetEnvVar("ARM_CLIENT_ID", "AZURE_CLIENT_ID")
	tenantID := getFirstSetEnvVar("ARM_TENANT_ID", "AZURE_TENANT_ID")
	clientSecret := getFirstSetEnvVar("ARM_CLIENT_SECRET", "AZURE_CLIENT_SECRET")

	if updateBoolValueAnyTrue(false, "ARM_USE_MSI", "AZURE_USE_MSI") {
		opts := &azidentity.ManagedIdentityCredentialOptions{ClientOptions: clientOpts}
		if clientID != "" {
			opts.ID = azidentity.ClientID(clientID)
		}

		cred, err := azidentity.NewManagedIdentityCredential(opts)
		if err != nil {
			return nil, fmt.Errorf("auth.NewToken: managed identity: %w", err)
		}

		return cred, nil
	}

	if clientSecret != "" {
		if clientID == "" || tenantID == "" {
			return nil, errors.New("auth.NewToken: client secret set but client id or tenant id is empty")
		}

		cred, err := azidentity.NewClientSecretCredential(tenantID, clientID, clientSecret,
			&azidentity.ClientSecretCredentialOptions{ClientOptions: clientOpts})
		if err != nil {
			return nil, fmt.Errorf("auth.NewToken: client secret: %w", err)
		}

		return cred, nil
	}

	if cli := getFirstSetEnvVar("ARM_USE_CLI"); cli != "" {
		// only force the CLI when the variable is definitively true
		if b, err := strconv.ParseBool(cli); err == nil && b {
			cred, err := azidentity.NewAzureCLICredential(&azidentity.AzureCLICredentialOptions{TenantID: tenantID})
			if err != nil {
				return nil, fmt.Errorf("auth.NewToken: azure cli: %w", err)
			}

			return cred, nil
		}
	}

	cred, err := azidentity.NewDefaultAzureCredential(&azidentity.DefaultAzureCredentialOptions{
		ClientOptions: clientOpts,
		TenantID:      tenantID,
	})
	if err != nil {
		return nil, fmt.Errorf("auth.NewToken: default credential: %w", err)
	}

	return cred, nil
}

var _ azcore.TokenCredential = StaticToken("")

// StaticToken is a credential that always returns the same bearer token.
// It is used against ARM emulators, which accept any token.
type StaticToken string

// GetToken implements azcore.TokenCredential.
func (s StaticToken) GetToken(_ context.Context, _ policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return azcore.AccessToken{Token: string(s), ExpiresOn: time.Now().Add(time.Hour)}, nil
}

func getFirstSetEnvVar(vars ...string) string {
	for _, v := range vars {
		if val := os.Getenv(v); val != "" {
			return val
		}
	}

	return ""
}

func updateBoolValueAnyTrue(current bool, vars ...string) bool {
	if current {
		return true
	}

	for _, v := range vars {
		if val := os.Getenv(v); val != "" {
			b, _ := strconv.ParseBool(val)
			if b {
				return true
			}
		}
	}

	return false
}
