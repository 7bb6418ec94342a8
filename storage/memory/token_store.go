package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/clarusnet/bridge_service/entity"
	"github.com/clarusnet/bridge_service/storage"
)

// TokenStore is an in-memory implementation of storage.TokenStore.
type TokenStore struct {
	mu        sync.RWMutex
	seq       atomic.Int64
	byAddress map[string]*entity.Token
	byAssetID map[int64]*entity.Token
}

// NewTokenStore creates a new in-memory token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		byAddress: make(map[string]*entity.Token),
		byAssetID: make(map[int64]*entity.Token),
	}
}

func (s *TokenStore) Insert(_ context.Context, t *entity.Token) error {
	if t == nil || t.TokenAddress == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byAddress[t.TokenAddress]; exists {
		return &storage.ConflictError{Field: "tokenAddress"}
	}
	if _, exists := s.byAssetID[t.AssetID]; exists {
		return &storage.ConflictError{Field: "assetId"}
	}

	cp := *t
	if cp.ID == "" {
		cp.ID = fmt.Sprintf("mem-%d", s.seq.Add(1))
	}
	s.byAddress[cp.TokenAddress] = &cp
	s.byAssetID[cp.AssetID] = &cp
	t.ID = cp.ID
	return nil
}

func (s *TokenStore) FindByAddress(_ context.Context, tokenAddress string) (*entity.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.byAddress[tokenAddress]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

var _ storage.TokenStore = (*TokenStore)(nil)
