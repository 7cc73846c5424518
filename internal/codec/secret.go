// Package codec converts account secrets to their persisted (type tag, bytes)
// form and back. The byte layouts are shared by every backup version.
package codec

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/AlexZinkM/wallet-backup/internal/model"
)

const separator = "@"

type moneroPayload struct {
	Words     []string `json:"words"`
	Password  string   `json:"password"`
	Height    int64    `json:"height"`
	InnerName string   `json:"inner_name"`
}

// Encode returns the type tag and canonical bytes of secret.
func Encode(secret model.AccountSecret) (model.SecretType, []byte, error) {
	if secret == nil {
		return "", nil, fmt.Errorf("secret is nil")
	}
	t := secret.Type()
	if err := validate(secret); err != nil {
		return "", nil, err
	}

	switch s := secret.(type) {
	case model.Mnemonic:
		data := strings.Join(s.Words, " ")
		if s.Passphrase != "" {
			data += separator + s.Passphrase
		}
		return t, []byte(data), nil

	case model.EvmPrivateKey:
		return t, bigIntToBytes(s.Key), nil

	case model.HardwareCardRef:
		data := strings.Join([]string{
			s.CardID,
			s.WalletPublicKey,
			strconv.Itoa(s.BackupCardsCount),
			strconv.Itoa(s.SignedHashes),
		}, separator)
		return t, []byte(data), nil

	case model.ChainAddress:
		return t, []byte(s.Address), nil

	case model.MoneroMnemonic:
		data, err := json.Marshal(moneroPayload{
			Words:     s.Words,
			Password:  s.Password,
			Height:    s.BirthdayHeight,
			InnerName: s.WalletInnerName,
		})
		if err != nil {
			return "", nil, fmt.Errorf("failed to marshal monero mnemonic: %w", err)
		}
		return t, data, nil

	case model.StellarSecretKey:
		return t, []byte(s.Key), nil

	case model.ExtendedKey:
		return t, []byte(s.Serialized), nil

	case model.ZcashViewingKey:
		return t, []byte(s.Key), nil
	}

	return "", nil, fmt.Errorf("unsupported secret type %T", secret)
}

// Decode parses data stored under the type tag t. Bytes that do not fit
// the tag's shape are reported as *model.FormatError.
func Decode(t model.SecretType, data []byte) (model.AccountSecret, error) {
	s := string(data)

	var secret model.AccountSecret
	switch t {
	case model.TypeMnemonic:
		words, passphrase, _ := strings.Cut(s, separator)
		secret = model.Mnemonic{Words: strings.Fields(words), Passphrase: passphrase}

	case model.TypePrivateKey:
		if len(data) == 0 {
			return nil, formatError(t, "empty key")
		}
		secret = model.EvmPrivateKey{Key: bytesToBigInt(data)}

	case model.TypeHardwareCard:
		card, err := decodeHardwareCard(s)
		if err != nil {
			return nil, err
		}
		secret = card

	case model.TypeEvmAddress, model.TypeSolanaAddress, model.TypeTronAddress,
		model.TypeTonAddress, model.TypeStellarAddress:
		chain, _ := model.ChainForType(t)
		secret = model.ChainAddress{Address: s, Chain: chain}

	case model.TypeMoneroMnemonic:
		var p moneroPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, formatError(t, "not a monero payload")
		}
		secret = model.MoneroMnemonic{
			Words:           p.Words,
			Password:        p.Password,
			BirthdayHeight:  p.Height,
			WalletInnerName: p.InnerName,
		}

	case model.TypeStellarSecretKey:
		secret = model.StellarSecretKey{Key: s}

	case model.TypeExtendedKey:
		secret = model.ExtendedKey{Serialized: s}

	case model.TypeZcashViewingKey:
		secret = model.ZcashViewingKey{Key: s}

	default:
		return nil, formatError(t, "unknown type")
	}

	if err := validate(secret); err != nil {
		return nil, err
	}
	return secret, nil
}

// decodeHardwareCard accepts the current 4-part form and the legacy
// "cardId@walletPublicKey" form.
func decodeHardwareCard(s string) (model.HardwareCardRef, error) {
	parts := strings.Split(s, separator)
	switch {
	case len(parts) >= 4:
		backupCards, err := strconv.Atoi(parts[2])
		if err != nil {
			return model.HardwareCardRef{}, formatError(model.TypeHardwareCard, "backup cards count is not a number")
		}
		signedHashes, err := strconv.Atoi(parts[3])
		if err != nil {
			return model.HardwareCardRef{}, formatError(model.TypeHardwareCard, "signed hashes is not a number")
		}
		return model.HardwareCardRef{
			CardID:           parts[0],
			WalletPublicKey:  parts[1],
			BackupCardsCount: backupCards,
			SignedHashes:     signedHashes,
		}, nil
	case len(parts) == 2:
		return model.HardwareCardRef{CardID: parts[0], WalletPublicKey: parts[1]}, nil
	}
	return model.HardwareCardRef{}, formatError(model.TypeHardwareCard,
		fmt.Sprintf("expected 2 or 4 parts, got %d", len(parts)))
}

// bigIntToBytes returns the minimal big-endian two's complement form of x.
func bigIntToBytes(x *big.Int) []byte {
	if x.Sign() >= 0 {
		b := x.Bytes()
		if len(b) == 0 || b[0]&0x80 != 0 {
			b = append([]byte{0}, b...)
		}
		return b
	}
	// -x-1 is non-negative; its bitwise complement is x in two's complement.
	m := new(big.Int).Not(x)
	b := m.Bytes()
	if len(b) == 0 || b[0]&0x80 != 0 {
		b = append([]byte{0}, b...)
	}
	for i := range b {
		b[i] = ^b[i]
	}
	return b
}

func bytesToBigInt(b []byte) *big.Int {
	if b[0]&0x80 == 0 {
		return new(big.Int).SetBytes(b)
	}
	inv := make([]byte, len(b))
	for i := range b {
		inv[i] = ^b[i]
	}
	return new(big.Int).Not(new(big.Int).SetBytes(inv))
}

func formatError(t model.SecretType, reason string) *model.FormatError {
	return &model.FormatError{Type: t, Reason: reason}
}
