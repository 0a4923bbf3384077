// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package securevm

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
)

var _ error = (*StepError)(nil)

// ErrNotDeployed is returned by Status when the virtual machine or its public IP does not exist.
var ErrNotDeployed = errors.New("deployment not found")

// StepError is returned when a deployment stops. Resources created by earlier steps are left in place.
type StepError struct {
	Step     Step
	Resource string
	Err      error
}

// Error implements the error interface for type StepError.
func (e *StepError) Error() string {
	if e.Resource == "" {
		return fmt.Sprintf("step %s (%s): %v", e.Step.Progress(), e.Step, e.Err)
	}

	return fmt.Sprintf("step %s (%s %q): %v", e.Step.Progress(), e.Step, e.Resource, e.Err)
}

// Unwrap returns the underlying error.
func (e *StepError) Unwrap() error {
	return e.Err
}

// NewStepError creates a new StepError error.
func NewStepError(step Step, resource string, err error) error {
	return &StepError{Step: step, Resource: resource, Err: err}
}

// FailedStep returns the step a deployment error stopped at, if err came from Deploy.
func FailedStep(err error) (Step, bool) {
	var se *StepError
	if errors.As(err, &se) {
		return se.Step, true
	}

	return 0, false
}

// isNotFoundError reports whether err is an ARM 404.
func isNotFoundError(err error) bool {
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		return respErr.StatusCode == http.StatusNotFound
	}

	return false
}
