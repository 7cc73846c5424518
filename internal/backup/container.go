package backup

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/AlexZinkM/wallet-backup/internal/common"
	"github.com/AlexZinkM/wallet-backup/internal/crypto"
	"github.com/AlexZinkM/wallet-backup/internal/deniable"
	"github.com/AlexZinkM/wallet-backup/internal/model"
)

// Format is a detected backup container format.
type Format string

const (
	FormatUnknown  Format = ""
	FormatLegacy   Format = "v1"
	FormatWalletV2 Format = "v2-wallet"
	FormatFullV2   Format = "v2-full"
	FormatV3       Format = "v3"
	FormatV4       Format = "v4"
)

// len(`,"align_payload":""`)
const alignFieldOverhead = 19

type formatHeader struct {
	Version   int             `json:"version"`
	Encrypted string          `json:"encrypted"`
	Wallets   json.RawMessage `json:"wallets"`
	Crypto    json.RawMessage `json:"crypto"`
}

// Detect classifies data. JSON is v3 only when version is 3 and encrypted is
// non-empty; otherwise the v2 shapes are tried.
func Detect(data []byte) Format {
	if deniable.IsBinaryFormat(data) {
		return FormatV4
	}

	var p formatHeader
	if err := json.Unmarshal(data, &p); err != nil {
		return FormatUnknown
	}
	switch {
	case p.Version == model.VersionV3 && p.Encrypted != "":
		return FormatV3
	case p.Wallets != nil:
		return FormatFullV2
	case p.Crypto != nil && p.Version == model.VersionLegacy:
		return FormatLegacy
	case p.Crypto != nil:
		return FormatWalletV2
	}
	return FormatUnknown
}

// Codec wraps and unwraps the JSON container versions.
type Codec struct {
	envelope *crypto.Envelope
	align    int
	random   io.Reader
}

// NewCodec creates a Codec. When align is positive, v2 output is padded with
// an align_payload field to a multiple of align bytes.
func NewCodec(envelope *crypto.Envelope, align int, random io.Reader) *Codec {
	return &Codec{envelope: envelope, align: align, random: random}
}

// EncodeFullV2 serializes doc as plain v2 JSON.
func (c *Codec) EncodeFullV2(doc *model.FullBackup) ([]byte, error) {
	cp := *doc
	return c.marshalAligned(func(pad string) ([]byte, error) {
		cp.AlignPayload = pad
		return json.Marshal(cp)
	})
}

// EncodeWalletV2 serializes a single-wallet record as plain v2 JSON.
func (c *Codec) EncodeWalletV2(wb *model.WalletBackup) ([]byte, error) {
	cp := *wb
	return c.marshalAligned(func(pad string) ([]byte, error) {
		cp.AlignPayload = pad
		return json.Marshal(cp)
	})
}

func (c *Codec) marshalAligned(marshal func(pad string) ([]byte, error)) ([]byte, error) {
	data, err := marshal("")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal backup: %w", err)
	}
	if c.align <= 0 || len(data)%c.align == 0 {
		return data, nil
	}

	n := (c.align - (len(data)+alignFieldOverhead)%c.align) % c.align
	if n == 0 {
		n = c.align
	}
	pad, err := common.RandomHex(c.random, (n+1)/2)
	if err != nil {
		return nil, err
	}
	data, err = marshal(pad[:n])
	if err != nil {
		return nil, fmt.Errorf("failed to marshal backup: %w", err)
	}
	return data, nil
}

// DecodeFullV2 parses a v2 full backup. Unknown fields are ignored.
func (c *Codec) DecodeFullV2(data []byte) (*model.FullBackup, error) {
	var doc model.FullBackup
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal full backup: %w", err)
	}
	return &doc, nil
}

// DecodeWalletV2 parses a v1 or v2 single-wallet backup.
func (c *Codec) DecodeWalletV2(data []byte) (*model.WalletBackup, error) {
	var wb model.WalletBackup
	if err := json.Unmarshal(data, &wb); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wallet backup: %w", err)
	}
	return &wb, nil
}

// WrapV3 encrypts the whole document once under password.
func (c *Codec) WrapV3(doc *model.FullBackup, password []byte) ([]byte, error) {
	plaintext, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal full backup: %w", err)
	}
	defer clear(plaintext)

	sealed, err := c.envelope.Seal(plaintext, password)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt full backup: %w", err)
	}
	envelope, err := json.Marshal(sealed)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal crypto: %w", err)
	}

	return json.Marshal(model.BackupV3{
		Version:   model.VersionV3,
		Encrypted: c.envelope.Codec().Encode(envelope),
	})
}

// UnwrapV3 decrypts a v3 container. A wrong password is model.ErrAuthentication.
func (c *Codec) UnwrapV3(data, password []byte) (*model.FullBackup, error) {
	var v3 model.BackupV3
	if err := json.Unmarshal(data, &v3); err != nil {
		return nil, fmt.Errorf("failed to unmarshal v3 backup: %w", err)
	}
	if v3.Version != model.VersionV3 || v3.Encrypted == "" {
		return nil, fmt.Errorf("%w: not a v3 backup", model.ErrUnsupportedFormat)
	}

	raw, err := c.envelope.Codec().Decode(v3.Encrypted)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid encrypted field", model.ErrUnsupportedFormat)
	}
	var sealed model.BackupCrypto
	if err := json.Unmarshal(raw, &sealed); err != nil {
		return nil, fmt.Errorf("%w: invalid encrypted field", model.ErrUnsupportedFormat)
	}

	plaintext, err := c.envelope.Open(&sealed, password)
	if err != nil {
		return nil, err
	}
	defer clear(plaintext)

	var doc model.FullBackup
	if err := json.Unmarshal(plaintext, &doc); err != nil {
		return nil, model.ErrAuthentication
	}
	return &doc, nil
}
