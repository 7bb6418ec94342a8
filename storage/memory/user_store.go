package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/clarusnet/bridge_service/entity"
	"github.com/clarusnet/bridge_service/storage"
)

// UserStore is an in-memory implementation of storage.UserStore. It enforces
// the same uniqueness constraints the Mongo indexes do, which makes it usable
// both for tests and for running the registry without a database.
type UserStore struct {
	mu        sync.RWMutex
	seq       atomic.Int64
	byEVM     map[string]*entity.User
	byBitcoin map[string]*entity.User
	byMnem    map[string]*entity.User
	bySS58    map[string]*entity.User
}

// NewUserStore creates a new in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{
		byEVM:     make(map[string]*entity.User),
		byBitcoin: make(map[string]*entity.User),
		byMnem:    make(map[string]*entity.User),
		bySS58:    make(map[string]*entity.User),
	}
}

func (s *UserStore) Insert(_ context.Context, u *entity.User) error {
	if u == nil || u.EVMAddress == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEVM[u.EVMAddress]; exists {
		return &storage.ConflictError{Field: "evmAddress"}
	}
	if u.BitcoinAddress != "" {
		if _, exists := s.byBitcoin[u.BitcoinAddress]; exists {
			return &storage.ConflictError{Field: "bitcoinAddress"}
		}
	}
	if _, exists := s.byMnem[u.Mnemonic]; exists {
		return &storage.ConflictError{Field: "mnemonic"}
	}
	if _, exists := s.bySS58[u.SS58Address]; exists {
		return &storage.ConflictError{Field: "ss58Address"}
	}

	cp := *u
	if cp.ID == "" {
		cp.ID = fmt.Sprintf("mem-%d", s.seq.Add(1))
	}
	s.index(&cp)
	u.ID = cp.ID
	return nil
}

func (s *UserStore) FindByEVM(_ context.Context, evmAddress string) (*entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byEVM[evmAddress]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *UserStore) FindByBitcoin(_ context.Context, bitcoinAddress string) (*entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byBitcoin[bitcoinAddress]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *UserStore) FindByAddress(_ context.Context, evmAddress, bitcoinAddress string) (*entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if evmAddress != "" {
		if u, ok := s.byEVM[evmAddress]; ok {
			cp := *u
			return &cp, nil
		}
	}
	if bitcoinAddress != "" {
		if u, ok := s.byBitcoin[bitcoinAddress]; ok {
			cp := *u
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *UserStore) UpdateByEVM(_ context.Context, evmAddress string, upd storage.UserUpdate) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byEVM[evmAddress]
	if !ok {
		return nil, storage.ErrNotFound
	}

	if upd.BitcoinAddress != nil && *upd.BitcoinAddress != "" {
		if other, exists := s.byBitcoin[*upd.BitcoinAddress]; exists && other != u {
			return nil, &storage.ConflictError{Field: "bitcoinAddress"}
		}
	}
	if upd.EVMAddress != nil && *upd.EVMAddress != "" && *upd.EVMAddress != evmAddress {
		if _, exists := s.byEVM[*upd.EVMAddress]; exists {
			return nil, &storage.ConflictError{Field: "evmAddress"}
		}
	}

	s.unindex(u)
	if upd.BitcoinAddress != nil {
		u.BitcoinAddress = *upd.BitcoinAddress
	}
	if upd.EVMAddress != nil && *upd.EVMAddress != "" {
		u.EVMAddress = *upd.EVMAddress
	}
	s.index(u)

	cp := *u
	return &cp, nil
}

func (s *UserStore) index(u *entity.User) {
	s.byEVM[u.EVMAddress] = u
	if u.BitcoinAddress != "" {
		s.byBitcoin[u.BitcoinAddress] = u
	}
	s.byMnem[u.Mnemonic] = u
	s.bySS58[u.SS58Address] = u
}

func (s *UserStore) unindex(u *entity.User) {
	delete(s.byEVM, u.EVMAddress)
	if u.BitcoinAddress != "" {
		delete(s.byBitcoin, u.BitcoinAddress)
	}
	delete(s.byMnem, u.Mnemonic)
	delete(s.bySS58, u.SS58Address)
}

var _ storage.UserStore = (*UserStore)(nil)
