// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package to holds helpers for the pointer-heavy ARM models.
package to

// ValOrZero returns the value of the pointer or the zero value of the type if the pointer is nil.
func ValOrZero[T any](v *T) T {
	if v == nil {
		var zero T
		return zero
	}

	return *v
}

// PtrSlice converts a slice of values into the slice of pointers that ARM request bodies expect.
// A nil or empty input yields nil, so the property is omitted from the JSON body.
func PtrSlice[T any](in []T) []*T {
	if len(in) == 0 {
		return nil
	}

	out := make([]*T, len(in))
	for i := range in {
		v := in[i]
		out[i] = &v
	}

	return out
}

// PtrMap converts a map of values into the map of pointers used for ARM resource tags.
func PtrMap[K comparable, V any](in map[K]V) map[K]*V {
	if len(in) == 0 {
		return nil
	}

	out := make(map[K]*V, len(in))
	for k, v := range in {
		out[k] = &v
	}

	return out
}
