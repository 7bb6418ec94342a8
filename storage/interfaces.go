package storage

import (
	"context"

	"github.com/clarusnet/bridge_service/entity"
)

// UserUpdate describes a partial update to a user record. A nil pointer
// means "leave unchanged"; a pointer to the empty string unsets the field
// (only BitcoinAddress may be unset).
type UserUpdate struct {
	BitcoinAddress *string
	EVMAddress     *string
}

// IsEmpty reports whether no field would change.
func (u UserUpdate) IsEmpty() bool {
	return u.BitcoinAddress == nil && (u.EVMAddress == nil || *u.EVMAddress == "")
}

// UserStore provides access to user records.
type UserStore interface {
	// Insert adds a new user. Returns ConflictError if any unique field
	// (evm_address, bitcoin_address, mnemonic, ss58_address) already exists.
	Insert(ctx context.Context, u *entity.User) error

	// FindByEVM retrieves a user by EVM address. Returns ErrNotFound if none.
	FindByEVM(ctx context.Context, evmAddress string) (*entity.User, error)

	// FindByBitcoin retrieves a user by Bitcoin address. Returns ErrNotFound if none.
	FindByBitcoin(ctx context.Context, bitcoinAddress string) (*entity.User, error)

	// FindByAddress retrieves a user matching a logical OR across the
	// supplied non-empty addresses. Returns ErrNotFound if none match.
	FindByAddress(ctx context.Context, evmAddress, bitcoinAddress string) (*entity.User, error)

	// UpdateByEVM applies a partial update to the record identified by
	// evmAddress and returns the updated record. Returns ErrNotFound if no
	// record matches and ConflictError on a uniqueness violation.
	UpdateByEVM(ctx context.Context, evmAddress string, upd UserUpdate) (*entity.User, error)
}

// TokenStore provides access to the allow-listed token registry. The
// registry is append-only: no update or delete.
type TokenStore interface {
	// Insert adds a new token. Returns ConflictError if token_address or
	// asset_id is already registered.
	Insert(ctx context.Context, t *entity.Token) error

	// FindByAddress retrieves a token by contract address. Returns
	// ErrNotFound if none.
	FindByAddress(ctx context.Context, tokenAddress string) (*entity.Token, error)
}
