package domain

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
	bip39 "github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/blake2b"
)

// DefaultSS58Prefix is the generic substrate network prefix.
const DefaultSS58Prefix uint8 = 42

// ss58Preimage prefixes the checksum input per the SS58 address format.
const ss58Preimage = "SS58PRE"

// Keypair is the material generated for a new bridge user: a fresh mnemonic
// and the keypair deterministically derived from it.
type Keypair struct {
	Mnemonic    string
	PublicKey   string // 0x-prefixed hex, 32 bytes
	SS58Address string
}

// GenerateKeypair creates a new 12-word mnemonic and derives a keypair from it.
func GenerateKeypair(networkPrefix uint8) (*Keypair, error) {
	entropy, err := bip39.NewEntropy(128)
	if err != nil {
		return nil, fmt.Errorf("failed to generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, fmt.Errorf("failed to generate mnemonic: %w", err)
	}
	return KeypairFromMnemonic(mnemonic, networkPrefix)
}

// KeypairFromMnemonic derives the ed25519 keypair and SS58 address for a
// mnemonic. Derivation is deterministic: the same mnemonic always yields the
// same address.
func KeypairFromMnemonic(mnemonic string, networkPrefix uint8) (*Keypair, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, errors.New("invalid mnemonic")
	}
	seed := bip39.NewSeed(mnemonic, "")
	priv := ed25519.NewKeyFromSeed(seed[:ed25519.SeedSize])
	pub := priv.Public().(ed25519.PublicKey)

	addr, err := EncodeSS58(pub, networkPrefix)
	if err != nil {
		return nil, err
	}
	return &Keypair{
		Mnemonic:    mnemonic,
		PublicKey:   "0x" + hex.EncodeToString(pub),
		SS58Address: addr,
	}, nil
}

// EncodeSS58 encodes a 32-byte public key as an SS58 address:
// base58(prefix ‖ pubkey ‖ blake2b-512("SS58PRE" ‖ prefix ‖ pubkey)[:2]).
func EncodeSS58(pub []byte, networkPrefix uint8) (string, error) {
	if len(pub) != 32 {
		return "", fmt.Errorf("public key must be 32 bytes, got %d", len(pub))
	}
	payload := make([]byte, 0, 1+32+2)
	payload = append(payload, networkPrefix)
	payload = append(payload, pub...)

	h, err := blake2b.New512(nil)
	if err != nil {
		return "", err
	}
	h.Write([]byte(ss58Preimage))
	h.Write(payload)
	sum := h.Sum(nil)

	payload = append(payload, sum[:2]...)
	return base58.Encode(payload), nil
}
