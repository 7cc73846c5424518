package crypto

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/AlexZinkM/wallet-backup/internal/model"
)

// Decrypt checks mac over aad and ciphertext, then decrypts. A mismatch is
// model.ErrAuthentication and nothing is decrypted.
func Decrypt(ciphertext, key, iv, aad, mac []byte) ([]byte, error) {
	if len(key) < KeyLen {
		return nil, fmt.Errorf("key too short: expected at least %d bytes, got %d", KeyLen, len(key))
	}
	if subtle.ConstantTimeCompare(Mac(key, aad, ciphertext), mac) != 1 {
		return nil, model.ErrAuthentication
	}
	return XORKeyStream(key, iv, ciphertext)
}

// Open decrypts a BackupCrypto blob. Every failure after the structural
// checks, including a malformed ciphertext field, is reported as
// model.ErrAuthentication so callers cannot tell the stages apart.
func (e *Envelope) Open(c *model.BackupCrypto, password []byte) ([]byte, error) {
	if c.Cipher != CipherAES128CTR {
		return nil, fmt.Errorf("%w: %q", model.ErrUnsupportedCipher, c.Cipher)
	}
	if c.Kdf != KdfScrypt {
		return nil, fmt.Errorf("%w: %q", model.ErrUnsupportedKdf, c.Kdf)
	}

	// Decode envelope fields
	iv, err := hex.DecodeString(c.CipherParams.IV)
	if err != nil || len(iv) != IVLen {
		return nil, model.ErrAuthentication
	}
	mac, err := hex.DecodeString(c.Mac)
	if err != nil {
		return nil, model.ErrAuthentication
	}
	ciphertext, err := e.codec.Decode(c.CipherText)
	if err != nil {
		return nil, model.ErrAuthentication
	}

	// Derive key from password; stored params are bounds checked first
	key, err := DeriveKey(password, c.KdfParams)
	if err != nil {
		return nil, err
	}
	defer clear(key)

	// Verify MAC, then decrypt
	return Decrypt(ciphertext, key, iv, nil, mac)
}
