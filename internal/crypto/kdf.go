package crypto

import (
	"fmt"

	"github.com/AlexZinkM/wallet-backup/internal/model"

	"golang.org/x/crypto/scrypt"
)

const (
	CipherAES128CTR = "aes-128-ctr"
	KdfScrypt       = "scrypt"

	// scrypt parameters of new backups. Readers take them from each blob.
	DefaultDkLen = 32
	DefaultN     = 16384
	DefaultP     = 4
	DefaultR     = 8

	// Upper bounds for parameters read from backups. scrypt needs
	// 128*N*r bytes of memory.
	MaxN      = 1 << 20
	MaxR      = 32
	MaxP      = 16
	MaxDkLen  = 64
	MaxMemory = 1 << 30

	// KeyLen is the minimum derived key length: 16 bytes AES key + 16 bytes MAC key.
	KeyLen = 32
	IVLen  = 16
	MacLen = 32
)

// DefaultKdfParams returns the default scrypt parameters with the given salt.
func DefaultKdfParams(salt string) model.KdfParams {
	return model.KdfParams{
		DkLen: DefaultDkLen,
		N:     DefaultN,
		P:     DefaultP,
		R:     DefaultR,
		Salt:  salt,
	}
}

// ValidateKdfParams checks that params can drive scrypt, produce a usable key
// and stay within the resource bounds. Failures wrap model.ErrUnsupportedKdf.
func ValidateKdfParams(p model.KdfParams) error {
	if p.DkLen < KeyLen || p.DkLen > MaxDkLen {
		return fmt.Errorf("%w: dklen must be between %d and %d, got %d", model.ErrUnsupportedKdf, KeyLen, MaxDkLen, p.DkLen)
	}
	if p.N <= 1 || p.N > MaxN || p.N&(p.N-1) != 0 {
		return fmt.Errorf("%w: n must be a power of two between 2 and %d, got %d", model.ErrUnsupportedKdf, MaxN, p.N)
	}
	if p.R < 1 || p.R > MaxR || p.P < 1 || p.P > MaxP {
		return fmt.Errorf("%w: r must be between 1 and %d and p between 1 and %d, got r=%d p=%d", model.ErrUnsupportedKdf, MaxR, MaxP, p.R, p.P)
	}
	// Both factors are bounded above, so the product cannot overflow
	if 128*int64(p.N)*int64(p.R) > MaxMemory {
		return fmt.Errorf("%w: n=%d r=%d needs more than %d bytes", model.ErrUnsupportedKdf, p.N, p.R, MaxMemory)
	}
	return nil
}

// DeriveKey derives a key from password using params.Salt as salt.
func DeriveKey(password []byte, params model.KdfParams) ([]byte, error) {
	return DeriveKeyWithSalt(password, []byte(params.Salt), params)
}

// DeriveKeyWithSalt derives a key from password and a raw salt. The salt
// field of params is ignored.
func DeriveKeyWithSalt(password, salt []byte, params model.KdfParams) ([]byte, error) {
	if err := ValidateKdfParams(params); err != nil {
		return nil, err
	}
	key, err := scrypt.Key(password, salt, params.N, params.R, params.P, params.DkLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return key, nil
}
