// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package checker runs a list of named checks and aggregates every failure.
package checker

import (
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
)

// Validator is a struct that holds a list of checks to be performed.
type Validator struct {
	checks []ValidatorCheck
	logger zerolog.Logger
}

// ValidatorCheck is a struct that holds the name and function of a check to be performed.
// The function should return an error if the check fails.
// Use closures to capture the value being checked.
type ValidatorCheck struct {
	name string
	f    ValidateFunc
}

// NewValidatorCheck creates a new ValidatorCheck with the given name and function.
func NewValidatorCheck(name string, f ValidateFunc) ValidatorCheck {
	return ValidatorCheck{
		name: name,
		f:    f,
	}
}

// ValidateFunc is a function type that returns an error if the validation fails.
type ValidateFunc func() error

// NewValidator creates a new quiet Validator with the given checks.
func NewValidator(c ...ValidatorCheck) Validator {
	return Validator{
		checks: c,
		logger: zerolog.Nop(),
	}
}

// WithLogger returns a copy of the Validator that logs each check at debug level.
func (v Validator) WithLogger(l zerolog.Logger) Validator {
	v.logger = l
	return v
}

// Validate runs all the checks and returns a *multierror.Error holding every failure, or nil.
func (v Validator) Validate() error {
	var errs *multierror.Error

	for _, c := range v.checks {
		v.logger.Debug().Str("check", c.name).Msg("starting check")

		if err := c.f(); err != nil {
			v.logger.Debug().Str("check", c.name).Err(err).Msg("check failed")
			errs = multierror.Append(errs, err)

			continue
		}

		v.logger.Debug().Str("check", c.name).Msg("check passed")
	}

	return errs.ErrorOrNil()
}
