// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

/*
Package auth creates the azcore.TokenCredential used by the ARM clients.

The credential flow is chosen from well-known environment variables:

  - ARM_USE_MSI / AZURE_USE_MSI selects a managed identity, optionally user
    assigned through ARM_CLIENT_ID / AZURE_CLIENT_ID.
  - ARM_CLIENT_SECRET / AZURE_CLIENT_SECRET selects a service principal and
    requires the client and tenant IDs.
  - ARM_USE_CLI=true forces the Azure CLI credential.
  - Otherwise the default Azure credential chain is used.

ARM_ENVIRONMENT / AZURE_ENVIRONMENT ("public", "usgovernment", "china")
selects the cloud.
*/
package auth
