package sshkeygen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

func TestGenerateEd25519KeyPair(t *testing.T) {
	dir := t.TempDir()
	priv := filepath.Join(dir, "keys", "report_ed25519")
	pub := priv + ".pub"

	created, err := GenerateEd25519KeyPair(priv, pub)
	require.NoError(t, err)
	assert.True(t, created)

	privBytes, err := os.ReadFile(priv)
	require.NoError(t, err)
	signer, err := ssh.ParsePrivateKey(privBytes)
	require.NoError(t, err)
	assert.Equal(t, ssh.KeyAlgoED25519, signer.PublicKey().Type())

	pubBytes, err := os.ReadFile(pub)
	require.NoError(t, err)
	parsed, _, _, _, err := ssh.ParseAuthorizedKey(pubBytes)
	require.NoError(t, err)
	assert.Equal(t, signer.PublicKey().Marshal(), parsed.Marshal())

	info, err := os.Stat(priv)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	created, err = GenerateEd25519KeyPair(priv, pub)
	require.NoError(t, err)
	assert.False(t, created, "existing keys are kept")
}
