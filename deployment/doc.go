// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package deployment exports a planned deployment, one JSON request body per resource,
// so it can be reviewed or checked into source control before it is applied.
package deployment
