package crypto

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/AlexZinkM/wallet-backup/internal/common"
	"github.com/AlexZinkM/wallet-backup/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lightParams() model.KdfParams {
	return model.KdfParams{DkLen: 32, N: 16, P: 1, R: 8}
}

func TestDeriveKeyDeterministic(t *testing.T) {
	params := lightParams()
	params.Salt = "pcash"

	k1, err := DeriveKey([]byte("1"), params)
	require.NoError(t, err)
	k2, err := DeriveKey([]byte("1"), params)
	require.NoError(t, err)
	k3, err := DeriveKey([]byte("2"), params)
	require.NoError(t, err)

	assert.Len(t, k1, 32)
	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
}

func TestValidateKdfParams(t *testing.T) {
	tests := []struct {
		name    string
		params  model.KdfParams
		wantErr bool
	}{
		{"default", DefaultKdfParams("s"), false},
		{"light", lightParams(), false},
		{"short key", model.KdfParams{DkLen: 16, N: 16, P: 1, R: 8}, true},
		{"n not power of two", model.KdfParams{DkLen: 32, N: 1000, P: 1, R: 8}, true},
		{"n one", model.KdfParams{DkLen: 32, N: 1, P: 1, R: 8}, true},
		{"zero r", model.KdfParams{DkLen: 32, N: 16, P: 1, R: 0}, true},
		{"largest n", model.KdfParams{DkLen: 32, N: MaxN, P: 1, R: 8}, false},
		{"n above limit", model.KdfParams{DkLen: 32, N: MaxN << 1, P: 1, R: 8}, true},
		{"n huge", model.KdfParams{DkLen: 32, N: 1 << 40, P: 1, R: 8}, true},
		{"r above limit", model.KdfParams{DkLen: 32, N: 16, P: 1, R: MaxR + 1}, true},
		{"p above limit", model.KdfParams{DkLen: 32, N: 16, P: MaxP + 1, R: 8}, true},
		{"dklen above limit", model.KdfParams{DkLen: MaxDkLen + 1, N: 16, P: 1, R: 8}, true},
		{"memory above limit", model.KdfParams{DkLen: 32, N: MaxN, P: 1, R: 16}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKdfParams(tt.params)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateKdfParams() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEncryptDecrypt(t *testing.T) {
	key := bytes.Repeat([]byte{7}, 32)
	iv := bytes.Repeat([]byte{1}, IVLen)
	plaintext := []byte("truth jaguar roof task")

	ciphertext, mac, err := Encrypt(plaintext, key, iv, []byte("aad"))
	require.NoError(t, err)
	assert.Len(t, mac, MacLen)
	assert.NotEqual(t, plaintext, ciphertext)

	got, err := Decrypt(ciphertext, key, iv, []byte("aad"), mac)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)

	_, err = Decrypt(ciphertext, key, iv, []byte("other"), mac)
	assert.ErrorIs(t, err, model.ErrAuthentication)

	tampered := append([]byte(nil), ciphertext...)
	tampered[0] ^= 0xff
	_, err = Decrypt(tampered, key, iv, []byte("aad"), mac)
	assert.ErrorIs(t, err, model.ErrAuthentication)

	otherKey := bytes.Repeat([]byte{8}, 32)
	_, err = Decrypt(ciphertext, otherKey, iv, []byte("aad"), mac)
	assert.ErrorIs(t, err, model.ErrAuthentication)
}

func TestEncryptRejectsBadInput(t *testing.T) {
	_, _, err := Encrypt([]byte("x"), make([]byte, 16), make([]byte, IVLen), nil)
	assert.Error(t, err)

	_, _, err = Encrypt([]byte("x"), make([]byte, 32), make([]byte, 8), nil)
	assert.Error(t, err)
}

func TestEnvelopeSealOpen(t *testing.T) {
	env := NewEnvelope(lightParams(), nil, nil)

	c, err := env.Seal([]byte("secret words"), []byte("pass"))
	require.NoError(t, err)
	assert.Equal(t, CipherAES128CTR, c.Cipher)
	assert.Equal(t, KdfScrypt, c.Kdf)
	assert.Len(t, c.KdfParams.Salt, 2*saltLen)
	assert.Len(t, c.CipherParams.IV, 2*IVLen)

	got, err := env.Open(c, []byte("pass"))
	require.NoError(t, err)
	assert.Equal(t, []byte("secret words"), got)

	_, err = env.Open(c, []byte("wrong"))
	assert.True(t, errors.Is(err, model.ErrAuthentication))
}

func TestEnvelopeFreshSaltAndIV(t *testing.T) {
	env := NewEnvelope(lightParams(), common.Base64, nil)

	a, err := env.Seal([]byte("same"), []byte("pass"))
	require.NoError(t, err)
	b, err := env.Seal([]byte("same"), []byte("pass"))
	require.NoError(t, err)

	assert.NotEqual(t, a.KdfParams.Salt, b.KdfParams.Salt)
	assert.NotEqual(t, a.CipherParams.IV, b.CipherParams.IV)
	assert.NotEqual(t, a.CipherText, b.CipherText)
}

func TestEnvelopeOpenErrors(t *testing.T) {
	env := NewEnvelope(lightParams(), nil, nil)
	good, err := env.Seal([]byte("data"), []byte("pass"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		mutate  func(c *model.BackupCrypto)
		wantErr error
	}{
		{"unknown cipher", func(c *model.BackupCrypto) { c.Cipher = "aes-256-gcm" }, model.ErrUnsupportedCipher},
		{"unknown kdf", func(c *model.BackupCrypto) { c.Kdf = "pbkdf2" }, model.ErrUnsupportedKdf},
		{"bad iv", func(c *model.BackupCrypto) { c.CipherParams.IV = "zz" }, model.ErrAuthentication},
		{"bad mac", func(c *model.BackupCrypto) { c.Mac = "00" }, model.ErrAuthentication},
		{"bad ciphertext", func(c *model.BackupCrypto) { c.CipherText = "!!!!" }, model.ErrAuthentication},
		{"n huge", func(c *model.BackupCrypto) { c.KdfParams.N = 1 << 40 }, model.ErrUnsupportedKdf},
		{"r huge", func(c *model.BackupCrypto) { c.KdfParams.R = 1 << 20 }, model.ErrUnsupportedKdf},
		{"dklen huge", func(c *model.BackupCrypto) { c.KdfParams.DkLen = 1 << 30 }, model.ErrUnsupportedKdf},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := *good
			tt.mutate(&c)
			_, err := env.Open(&c, []byte("pass"))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// Cipher half of the Web3 Secret Storage scrypt test vector, which uses the
// same layout: AES-128-CTR under dk[0:16], MAC = Keccak-256(dk[16:32] || ciphertext).
const (
	vectorDerivedKey = "fac192ceb5fd772906bea3e118a69e8bbb5cc24229e20d8766fd298291bba6bd"
	vectorIV         = "83dbcc02d8ccb40e466191a123791e0e"
	vectorCiphertext = "d172bf743a674da9cdad04534d56926ef8358534d458fffccd4e6ad2fbde479c"
	vectorMac        = "2103ac29920d71da29f15d75b4a16dbe95cfd7ff8faea1056c33131d846e3097"
	vectorPlaintext  = "7a28b5ba57c53603b0b07b56bba752f7784bf506fa95edc395f5cf6c7514fe9d"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestEncryptMatchesReferenceVector(t *testing.T) {
	key := mustHex(t, vectorDerivedKey)
	iv := mustHex(t, vectorIV)

	ciphertext, mac, err := Encrypt(mustHex(t, vectorPlaintext), key, iv, nil)
	require.NoError(t, err)
	assert.Equal(t, vectorCiphertext, hex.EncodeToString(ciphertext))
	assert.Equal(t, vectorMac, hex.EncodeToString(mac))

	plaintext, err := Decrypt(mustHex(t, vectorCiphertext), key, iv, nil, mustHex(t, vectorMac))
	require.NoError(t, err)
	assert.Equal(t, vectorPlaintext, hex.EncodeToString(plaintext))
}

// A record produced by an independent implementation: scrypt n=16384 p=4
// r=8, salt "pcash", password "1".
func TestEnvelopeOpenPinnedRecord(t *testing.T) {
	c := &model.BackupCrypto{
		Cipher:       CipherAES128CTR,
		CipherParams: model.CipherParams{IV: "0a0a0a0a0a0a0a0a0a0a0a0a0a0a0a0a"},
		CipherText:   "9Ges0x0gMfaQHHnw4ncS6NCi0pv0r9VERQi62iJbo5lWtToHIZgX+oVU91MWCwkrCuW0b+WaRmraDMzjZFrwbGFbvS7RXg==",
		Kdf:          KdfScrypt,
		KdfParams:    DefaultKdfParams("pcash"),
		Mac:          "5a149c9d761d531f52b636a0f88463749dc8bd6e6120bd4cf4e3e098cd9564a2",
	}
	env := NewEnvelope(lightParams(), nil, nil)

	plaintext, err := env.Open(c, []byte("1"))
	require.NoError(t, err)
	assert.Equal(t, "truth jaguar roof task always top hybrid rookie across bid punch ranch", string(plaintext))

	_, err = env.Open(c, []byte("2"))
	assert.ErrorIs(t, err, model.ErrAuthentication)
}

func TestValidateKdfParamsWrapsSentinel(t *testing.T) {
	err := ValidateKdfParams(model.KdfParams{DkLen: 32, N: 1 << 40, P: 1, R: 8})
	assert.ErrorIs(t, err, model.ErrUnsupportedKdf)
}
