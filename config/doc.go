// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package config loads the description of a secure Windows VM deployment.
//
// The non-secret part comes from a YAML file (local, or any go-getter
// source). Secrets come from the environment, optionally seeded from a
// dotenv file:
//
//	AZURE_SUBSCRIPTION_ID
//	AZURE_VM_ADMIN_USERNAME
//	AZURE_VM_ADMIN_PASSWORD
//	ALLOWED_SOURCE_IP
package config
