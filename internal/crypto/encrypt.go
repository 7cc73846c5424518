package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/AlexZinkM/wallet-backup/internal/common"
	"github.com/AlexZinkM/wallet-backup/internal/model"

	"golang.org/x/crypto/sha3"
)

const saltLen = 16

// XORKeyStream applies AES-128-CTR keyed by key[:16] to data. It does not
// authenticate anything; use Encrypt and Decrypt for that.
func XORKeyStream(key, iv, data []byte) ([]byte, error) {
	if len(key) < KeyLen {
		return nil, fmt.Errorf("key too short: expected at least %d bytes, got %d", KeyLen, len(key))
	}
	if len(iv) != IVLen {
		return nil, fmt.Errorf("invalid iv size: expected %d bytes, got %d", IVLen, len(iv))
	}
	// Create AES cipher
	block, err := aes.NewCipher(key[:16])
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	out := make([]byte, len(data))
	cipher.NewCTR(block, iv).XORKeyStream(out, data)
	return out, nil
}

// Mac computes Keccak-256(key[16:32] || aad || ciphertext).
func Mac(key, aad, ciphertext []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(key[16:32])
	h.Write(aad)
	h.Write(ciphertext)
	return h.Sum(nil)
}

// Encrypt encrypts plaintext with AES-128-CTR and returns the ciphertext
// and its MAC. aad is authenticated but not encrypted.
func Encrypt(plaintext, key, iv, aad []byte) (ciphertext, mac []byte, err error) {
	ciphertext, err = XORKeyStream(key, iv, plaintext)
	if err != nil {
		return nil, nil, err
	}
	return ciphertext, Mac(key, aad, ciphertext), nil
}

// Envelope seals and opens BackupCrypto blobs under a password.
// It holds no per-call state and is safe for concurrent use.
type Envelope struct {
	params model.KdfParams
	codec  common.BinaryCodec
	random io.Reader
}

// NewEnvelope creates an Envelope. params.Salt is ignored: every Seal draws a
// fresh salt. A nil codec means Base64, a nil random means crypto/rand.
func NewEnvelope(params model.KdfParams, codec common.BinaryCodec, random io.Reader) *Envelope {
	if codec == nil {
		codec = common.Base64
	}
	return &Envelope{params: params, codec: codec, random: random}
}

// Codec returns the binary codec used for ciphertext fields.
func (e *Envelope) Codec() common.BinaryCodec {
	return e.codec
}

// Seal encrypts plaintext under password with a fresh salt and IV.
func (e *Envelope) Seal(plaintext, password []byte) (*model.BackupCrypto, error) {
	// Generate salt and IV
	salt, err := common.RandomHex(e.random, saltLen)
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	iv, err := common.RandomBytes(e.random, IVLen)
	if err != nil {
		return nil, fmt.Errorf("failed to generate iv: %w", err)
	}

	// Derive key from password
	params := e.params
	params.Salt = salt
	key, err := DeriveKey(password, params)
	if err != nil {
		return nil, err
	}
	defer clear(key)

	// Encrypt and authenticate
	ciphertext, mac, err := Encrypt(plaintext, key, iv, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt: %w", err)
	}

	return &model.BackupCrypto{
		Cipher:       CipherAES128CTR,
		CipherParams: model.CipherParams{IV: hex.EncodeToString(iv)},
		CipherText:   e.codec.Encode(ciphertext),
		Kdf:          KdfScrypt,
		KdfParams:    params,
		Mac:          hex.EncodeToString(mac),
	}, nil
}
