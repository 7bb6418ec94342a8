package entity

import (
	"time"
)

// User is one bridge participant: the connected EVM account plus the
// keypair material generated for it on first contact.
type User struct {
	ID             string    `bson:"_id,omitempty" json:"id,omitempty"`
	EVMAddress     string    `bson:"evm_address" json:"evmAddress"`
	BitcoinAddress string    `bson:"bitcoin_address,omitempty" json:"bitcoinAddress,omitempty"`
	PublicKey      string    `bson:"public_key" json:"publicKey"`
	Mnemonic       string    `bson:"mnemonic" json:"mnemonic"`         // generated once, never regenerated
	SS58Address    string    `bson:"ss58_address" json:"ss58Address"` // derived from the mnemonic
	CreatedAt      time.Time `bson:"created_at" json:"createdAt"`
}
