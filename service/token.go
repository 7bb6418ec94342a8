package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/clarusnet/bridge_service/entity"
	"github.com/clarusnet/bridge_service/storage"
)

// ErrTokenFieldsRequired is returned when tokenAddress or assetId is missing.
var ErrTokenFieldsRequired = errors.New("tokenAddress and assetId are required")

// TokenService maintains the allow-listed token registry. Append-only:
// entries are never updated or deleted.
type TokenService struct {
	Tokens storage.TokenStore
}

func NewTokenService(tokens storage.TokenStore) *TokenService {
	return &TokenService{Tokens: tokens}
}

// Register inserts a new allow-listed token. assetID is a pointer so a
// missing field is distinguishable from a zero id.
func (s *TokenService) Register(ctx context.Context, tokenAddress, tokenSymbol string, assetID *int64) (*entity.Token, error) {
	if tokenAddress == "" || assetID == nil {
		return nil, ErrTokenFieldsRequired
	}

	token := &entity.Token{
		TokenAddress: tokenAddress,
		TokenSymbol:  tokenSymbol,
		AssetID:      *assetID,
	}
	if err := s.Tokens.Insert(ctx, token); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"token_address": token.TokenAddress,
		"asset_id":      token.AssetID,
	}).Info("registered token")
	return token, nil
}
