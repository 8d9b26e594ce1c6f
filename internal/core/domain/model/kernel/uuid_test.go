package kernel_test

import (
	"testing"

	"kapgel/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUUID(t *testing.T) {
	id := kernel.NewUUID()

	require.NoError(t, id.Validate())
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", id.String())
}

func TestUUIDFromString(t *testing.T) {
	id, err := kernel.UUIDFromString("550e8400-e29b-41d4-a716-446655440000")
	require.NoError(t, err)
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", id.String())

	_, err = kernel.UUIDFromString("not-a-uuid")
	require.Error(t, err)
}

func TestUUID_Validate_ZeroValue(t *testing.T) {
	var id kernel.UUID
	require.Error(t, id.Validate())
}

func TestUUID_IsEqual(t *testing.T) {
	a := kernel.NewUUID()
	b := a
	c := kernel.NewUUID()

	assert.True(t, a.IsEqual(b))
	assert.False(t, a.IsEqual(c))
}
