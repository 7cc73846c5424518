package model

import "math/big"

// SecretType is the stable tag stored next to every encoded account secret.
// A tag never changes meaning once it has been written to a backup.
type SecretType string

const (
	TypeMnemonic         SecretType = "mnemonic"
	TypePrivateKey       SecretType = "private_key"
	TypeHardwareCard     SecretType = "hardware_card"
	TypeEvmAddress       SecretType = "evm_address"
	TypeSolanaAddress    SecretType = "solana_address"
	TypeTronAddress      SecretType = "tron_address"
	TypeTonAddress       SecretType = "ton_address"
	TypeStellarAddress   SecretType = "stellar_address"
	TypeMoneroMnemonic   SecretType = "monero_mnemonic"
	TypeStellarSecretKey SecretType = "stellar_secret_key"
	TypeExtendedKey      SecretType = "hd_extended_key"
	TypeZcashViewingKey  SecretType = "zcash_ufvk"
)

// AccountSecret is a closed set of secret kinds. Only types in this package
// implement it.
type AccountSecret interface {
	Type() SecretType
	isAccountSecret()
}

// Mnemonic is a BIP39 word list with an optional passphrase.
type Mnemonic struct {
	Words      []string
	Passphrase string
}

// EvmPrivateKey holds a raw EVM private key.
type EvmPrivateKey struct {
	Key *big.Int
}

// HardwareCardRef references a key living on a hardware card. It never
// carries private key material.
type HardwareCardRef struct {
	CardID           string
	WalletPublicKey  string
	BackupCardsCount int
	SignedHashes     int
}

// Chain identifies the network of a watch-only address.
type Chain string

const (
	ChainEvm     Chain = "evm"
	ChainSolana  Chain = "solana"
	ChainTron    Chain = "tron"
	ChainTon     Chain = "ton"
	ChainStellar Chain = "stellar"
)

// ChainAddress is a watch-only address.
type ChainAddress struct {
	Address string
	Chain   Chain
}

// MoneroMnemonic is a Monero seed with its restore height.
type MoneroMnemonic struct {
	Words           []string
	Password        string
	BirthdayHeight  int64
	WalletInnerName string
}

// StellarSecretKey is an "S..." encoded Stellar seed.
type StellarSecretKey struct {
	Key string
}

// ExtendedKey is a base58 serialized BIP32 extended key.
type ExtendedKey struct {
	Serialized string
}

// ZcashViewingKey is a unified full viewing key.
type ZcashViewingKey struct {
	Key string
}

func (Mnemonic) Type() SecretType         { return TypeMnemonic }
func (EvmPrivateKey) Type() SecretType    { return TypePrivateKey }
func (HardwareCardRef) Type() SecretType  { return TypeHardwareCard }
func (MoneroMnemonic) Type() SecretType   { return TypeMoneroMnemonic }
func (StellarSecretKey) Type() SecretType { return TypeStellarSecretKey }
func (ExtendedKey) Type() SecretType      { return TypeExtendedKey }
func (ZcashViewingKey) Type() SecretType  { return TypeZcashViewingKey }

// Type returns the address tag for the chain, or "" for an unknown chain.
func (a ChainAddress) Type() SecretType {
	switch a.Chain {
	case ChainEvm:
		return TypeEvmAddress
	case ChainSolana:
		return TypeSolanaAddress
	case ChainTron:
		return TypeTronAddress
	case ChainTon:
		return TypeTonAddress
	case ChainStellar:
		return TypeStellarAddress
	}
	return ""
}

// ChainForType maps an address tag back to its chain.
func ChainForType(t SecretType) (Chain, bool) {
	switch t {
	case TypeEvmAddress:
		return ChainEvm, true
	case TypeSolanaAddress:
		return ChainSolana, true
	case TypeTronAddress:
		return ChainTron, true
	case TypeTonAddress:
		return ChainTon, true
	case TypeStellarAddress:
		return ChainStellar, true
	}
	return "", false
}

func (Mnemonic) isAccountSecret()         {}
func (EvmPrivateKey) isAccountSecret()    {}
func (HardwareCardRef) isAccountSecret()  {}
func (ChainAddress) isAccountSecret()     {}
func (MoneroMnemonic) isAccountSecret()   {}
func (StellarSecretKey) isAccountSecret() {}
func (ExtendedKey) isAccountSecret()      {}
func (ZcashViewingKey) isAccountSecret()  {}
