package config

import (
	"testing"

	"github.com/AlexZinkM/wallet-backup/internal/backup"
	"github.com/AlexZinkM/wallet-backup/internal/crypto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDefaults(t *testing.T) {
	require.NoError(t, Init())
	c := Get()

	assert.Equal(t, crypto.DefaultN, c.KdfN)
	assert.Equal(t, crypto.DefaultR, c.KdfR)
	assert.Equal(t, crypto.DefaultP, c.KdfP)
	assert.Equal(t, crypto.DefaultDkLen, c.KdfDkLen)
	assert.Equal(t, 16, c.ContainerSpreadFactor)
	assert.Equal(t, "v3", c.DefaultFormat)

	_, err := backup.NewService(c.ServiceConfig())
	assert.NoError(t, err)
}

func TestInitFromEnvironment(t *testing.T) {
	t.Setenv("WALLETBACKUP_KDF_N", "1024")
	t.Setenv("WALLETBACKUP_ALIGN_PAYLOAD", "512")
	t.Setenv("WALLETBACKUP_CONTAINER_MAX_ATTEMPTS", "4")

	require.NoError(t, Init())
	c := Get()

	assert.Equal(t, 1024, c.KdfParams().N)
	assert.Equal(t, 512, c.ServiceConfig().Align)
	assert.Equal(t, 4, c.ContainerOptions().MaxAttempts)
	assert.Equal(t, 1024, c.ContainerOptions().Kdf.N)
}

func TestInitRejectsInvalidValue(t *testing.T) {
	t.Setenv("WALLETBACKUP_KDF_N", "lots")
	assert.Error(t, Init())
}
