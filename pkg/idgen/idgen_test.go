package idgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicIDRoundTrip(t *testing.T) {
	require.NoError(t, InitSqidsEncoderWithSeed("seed-a"))

	id, err := GeneratePublicID(42, EntityTypeUser)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(id), 4)

	dbID, typ, err := DecodePublicID(id)
	require.NoError(t, err)
	assert.Equal(t, uint(42), dbID)
	assert.Equal(t, EntityTypeUser, typ)

	// 不同种子产生不同的字母表
	require.NoError(t, InitSqidsEncoderWithSeed("seed-b"))
	other, err := GeneratePublicID(42, EntityTypeUser)
	require.NoError(t, err)
	assert.NotEqual(t, id, other)
}

func TestGenerateRandomSeed(t *testing.T) {
	a, err := GenerateRandomSeed()
	require.NoError(t, err)
	b, err := GenerateRandomSeed()
	require.NoError(t, err)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}
