package codec

import (
	"encoding/base32"
	"strings"

	"github.com/AlexZinkM/wallet-backup/internal/model"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
)

const (
	tronAddressPrefix = 0x41
	stellarSeedLen    = 56
)

var stellarEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// validate checks the shape each variant needs to survive an encode/decode
// round trip.
func validate(secret model.AccountSecret) error {
	t := secret.Type()

	switch s := secret.(type) {
	case model.Mnemonic:
		if len(s.Words) == 0 {
			return formatError(t, "no words")
		}
		for _, w := range s.Words {
			if w == "" || strings.ContainsAny(w, " \t\n"+separator) {
				return formatError(t, "invalid word")
			}
		}

	case model.EvmPrivateKey:
		if s.Key == nil {
			return formatError(t, "missing key")
		}

	case model.HardwareCardRef:
		if s.CardID == "" || s.WalletPublicKey == "" {
			return formatError(t, "missing card id or public key")
		}
		if strings.Contains(s.CardID, separator) || strings.Contains(s.WalletPublicKey, separator) {
			return formatError(t, "card id or public key contains "+separator)
		}

	case model.ChainAddress:
		if t == "" {
			return formatError(t, "unknown chain "+string(s.Chain))
		}
		return validateAddress(t, s.Address)

	case model.MoneroMnemonic:
		if len(s.Words) == 0 {
			return formatError(t, "no words")
		}
		if s.BirthdayHeight < 0 {
			return formatError(t, "negative birthday height")
		}

	case model.StellarSecretKey:
		if len(s.Key) != stellarSeedLen || s.Key[0] != 'S' {
			return formatError(t, "not a stellar seed")
		}
		if _, err := stellarEncoding.DecodeString(s.Key); err != nil {
			return formatError(t, "not base32")
		}

	case model.ExtendedKey:
		if _, err := hdkeychain.NewKeyFromString(s.Serialized); err != nil {
			return formatError(t, "not a serialized extended key")
		}

	case model.ZcashViewingKey:
		if strings.TrimSpace(s.Key) == "" {
			return formatError(t, "empty key")
		}
	}
	return nil
}

func validateAddress(t model.SecretType, address string) error {
	if address == "" || strings.TrimSpace(address) != address {
		return formatError(t, "empty or padded address")
	}

	switch t {
	case model.TypeEvmAddress:
		// IsHexAddress also accepts a bare 40 character form
		if !strings.HasPrefix(address, "0x") || !common.IsHexAddress(address) {
			return formatError(t, "expected 0x followed by 40 hex characters")
		}
	case model.TypeSolanaAddress:
		if _, err := solana.PublicKeyFromBase58(address); err != nil {
			return formatError(t, "not a solana public key")
		}
	case model.TypeTronAddress:
		payload, version, err := base58.CheckDecode(address)
		if err != nil || len(payload) != common.AddressLength {
			return formatError(t, "not a base58check address")
		}
		if version != tronAddressPrefix {
			return formatError(t, "wrong address prefix")
		}
	}
	return nil
}
