package keygen

import (
	"encoding/base64"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateEncryptionKey(t *testing.T) {
	a, err := GenerateEncryptionKey()
	require.NoError(t, err)
	b, err := GenerateEncryptionKey()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	raw, err := base64.StdEncoding.DecodeString(a)
	require.NoError(t, err)
	assert.Len(t, raw, 32)
}

func TestGenerateRandomPassword(t *testing.T) {
	pw, err := GenerateRandomPassword(24)
	require.NoError(t, err)
	assert.Len(t, pw, 24)
	assert.Regexp(t, `^[A-Za-z0-9]+$`, pw)
}

func TestGenerateUUID(t *testing.T) {
	_, err := uuid.Parse(GenerateUUID())
	assert.NoError(t, err)
}
