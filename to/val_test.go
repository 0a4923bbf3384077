// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package to

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValOrZero(t *testing.T) {
	t.Parallel()

	t.Run("nil pointer returns zero value", func(t *testing.T) {
		t.Parallel()

		var ptr *string
		assert.Equal(t, "", ValOrZero(ptr))
	})

	t.Run("non-nil pointer returns pointed value", func(t *testing.T) {
		t.Parallel()

		value := int32(1000)
		assert.Equal(t, int32(1000), ValOrZero(&value))
	})
}

func TestPtrSlice(t *testing.T) {
	t.Parallel()

	t.Run("empty input is omitted", func(t *testing.T) {
		t.Parallel()

		assert.Nil(t, PtrSlice([]string{}))
		assert.Nil(t, PtrSlice[string](nil))
	})

	t.Run("each element gets its own pointer", func(t *testing.T) {
		t.Parallel()

		out := PtrSlice([]string{"10.0.0.0/16", "10.1.0.0/16"})
		require.Len(t, out, 2)
		assert.Equal(t, "10.0.0.0/16", *out[0])
		assert.Equal(t, "10.1.0.0/16", *out[1])
		assert.NotSame(t, out[0], out[1])
	})
}

func TestPtrMap(t *testing.T) {
	t.Parallel()

	assert.Nil(t, PtrMap(map[string]string{}))

	out := PtrMap(map[string]string{"env": "dev", "owner": "ops"})
	require.Len(t, out, 2)
	assert.Equal(t, "dev", *out["env"])
	assert.Equal(t, "ops", *out["owner"])
}
