// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package securevm

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/stretchr/testify/assert"
)

func TestStepProgress(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 8, StepCount)
	assert.Equal(t, "1/8", StepLoadConfig.Progress())
	assert.Equal(t, "8/8", StepVirtualMachine.Progress())
	assert.Equal(t, "network security group", StepSecurityGroup.String())
	assert.Equal(t, "step(9)", Step(9).String())
}

func TestStepError(t *testing.T) {
	t.Parallel()

	inner := errors.New("boom")
	err := NewStepError(StepPublicIP, "pip-vm", inner)

	assert.Equal(t, `step 6/8 (public IP address "pip-vm"): boom`, err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "step 2/8 (connect to Azure): boom", NewStepError(StepConnect, "", inner).Error())

	step, ok := FailedStep(fmt.Errorf("wrapped: %w", err))
	assert.True(t, ok)
	assert.Equal(t, StepPublicIP, step)

	_, ok = FailedStep(inner)
	assert.False(t, ok)
}

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	assert.True(t, isNotFoundError(fmt.Errorf("x: %w", &azcore.ResponseError{StatusCode: http.StatusNotFound})))
	assert.False(t, isNotFoundError(&azcore.ResponseError{StatusCode: http.StatusConflict}))
	assert.False(t, isNotFoundError(errors.New("x")))
}

func TestResultSummary(t *testing.T) {
	t.Parallel()

	r := &Result{VMName: "vm", PublicIPAddress: "203.0.113.10", AdminUsername: "u", Location: "westeurope"}
	assert.Equal(t, "mstsc /v:203.0.113.10", r.RDPCommand())

	rows := r.Summary()
	assert.Equal(t, [2]string{"Public IP", "203.0.113.10"}, rows[1])
	assert.Equal(t, [2]string{"Connect", "mstsc /v:203.0.113.10"}, rows[4])

	r.PublicIPAddress = ""
	assert.Equal(t, "(not allocated yet)", r.Summary()[1][1])
}
