package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/sirupsen/logrus"

	"github.com/clarusnet/bridge_service/domain"
	"github.com/clarusnet/bridge_service/entity"
	"github.com/clarusnet/bridge_service/storage"
)

// Validation errors surfaced to the caller before any store access.
var (
	ErrEVMAddressRequired    = errors.New("evmAddress is required")
	ErrAddressRequired       = errors.New("provide either evmAddress or bitcoinAddress")
	ErrEmptyUpdate           = errors.New("no update data provided")
	ErrInvalidBitcoinAddress = errors.New("bitcoinAddress is not a valid Bitcoin address")
)

// IsValidation reports whether err is a request validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEVMAddressRequired) ||
		errors.Is(err, ErrAddressRequired) ||
		errors.Is(err, ErrEmptyUpdate) ||
		errors.Is(err, ErrInvalidBitcoinAddress) ||
		errors.Is(err, ErrTokenFieldsRequired)
}

// UserService provisions and maintains bridge user records.
type UserService struct {
	Users      storage.UserStore
	SS58Prefix uint8
	BTCParams  *chaincfg.Params
}

func NewUserService(users storage.UserStore, ss58Prefix uint8, btcParams *chaincfg.Params) *UserService {
	if btcParams == nil {
		btcParams = &chaincfg.MainNetParams
	}
	return &UserService{Users: users, SS58Prefix: ss58Prefix, BTCParams: btcParams}
}

// Provision is the idempotent fetch-or-create used during client bootstrap.
// If a record for evmAddress already exists it is returned unchanged and
// created is false. Otherwise a mnemonic is generated, the keypair derived,
// and the new record persisted.
func (s *UserService) Provision(ctx context.Context, evmAddress, bitcoinAddress string) (*entity.User, bool, error) {
	if evmAddress == "" {
		return nil, false, ErrEVMAddressRequired
	}

	existing, err := s.Users.FindByEVM(ctx, evmAddress)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, false, err
	}

	if bitcoinAddress != "" {
		if err := s.validateBitcoinAddress(bitcoinAddress); err != nil {
			return nil, false, err
		}
		if _, err := s.Users.FindByBitcoin(ctx, bitcoinAddress); err == nil {
			return nil, false, &storage.ConflictError{Field: "bitcoinAddress"}
		} else if !errors.Is(err, storage.ErrNotFound) {
			return nil, false, err
		}
	}

	kp, err := domain.GenerateKeypair(s.SS58Prefix)
	if err != nil {
		return nil, false, fmt.Errorf("failed to generate keypair: %w", err)
	}

	user := &entity.User{
		EVMAddress:     evmAddress,
		BitcoinAddress: bitcoinAddress,
		PublicKey:      kp.PublicKey,
		Mnemonic:       kp.Mnemonic,
		SS58Address:    kp.SS58Address,
	}
	// A concurrent insert for the same address surfaces here as a conflict
	// from the store's unique index, not as a generic failure.
	if err := s.Users.Insert(ctx, user); err != nil {
		return nil, false, err
	}

	logrus.WithFields(logrus.Fields{
		"evm_address":  user.EVMAddress,
		"ss58_address": user.SS58Address,
	}).Info("provisioned new user")
	return user, true, nil
}

// Lookup finds a user by a logical OR across the supplied addresses. At
// least one address must be given.
func (s *UserService) Lookup(ctx context.Context, evmAddress, bitcoinAddress string) (*entity.User, error) {
	if evmAddress == "" && bitcoinAddress == "" {
		return nil, ErrAddressRequired
	}
	return s.Users.FindByAddress(ctx, evmAddress, bitcoinAddress)
}

// Update applies a partial update to the record identified by evmAddress.
// Each supplied field is checked against other records before the write so
// a uniqueness clash reports the offending field rather than a bare store
// error; the store's own indexes still back the check under concurrency.
func (s *UserService) Update(ctx context.Context, evmAddress string, upd storage.UserUpdate) (*entity.User, error) {
	if evmAddress == "" {
		return nil, ErrEVMAddressRequired
	}
	if upd.IsEmpty() {
		return nil, ErrEmptyUpdate
	}

	if upd.BitcoinAddress != nil && *upd.BitcoinAddress != "" {
		if err := s.validateBitcoinAddress(*upd.BitcoinAddress); err != nil {
			return nil, err
		}
		other, err := s.Users.FindByBitcoin(ctx, *upd.BitcoinAddress)
		if err == nil && other.EVMAddress != evmAddress {
			return nil, &storage.ConflictError{Field: "bitcoinAddress"}
		}
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
	}

	if upd.EVMAddress != nil && *upd.EVMAddress != "" && *upd.EVMAddress != evmAddress {
		if _, err := s.Users.FindByEVM(ctx, *upd.EVMAddress); err == nil {
			return nil, &storage.ConflictError{Field: "evmAddress"}
		} else if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
	}

	return s.Users.UpdateByEVM(ctx, evmAddress, upd)
}

func (s *UserService) validateBitcoinAddress(addr string) error {
	if _, err := btcutil.DecodeAddress(addr, s.BTCParams); err != nil {
		return ErrInvalidBitcoinAddress
	}
	return nil
}
