// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package integrationtest runs whole deployments: against the in-memory emulator by default,
// and against a real subscription when SECUREVM_LIVE_TEST is set.
package integrationtest
