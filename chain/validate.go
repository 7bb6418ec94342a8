package chain

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
)

// DepositKind selects which pipeline a deposit runs.
type DepositKind string

const (
	KindNative DepositKind = "native"
	KindToken  DepositKind = "token"
)

// ValidateDeposit checks the form inputs before any network call is made
// and returns the parsed gas limit.
func ValidateDeposit(kind DepositKind, amount, gasLimit, tokenAddress string) (uint64, error) {
	if kind != KindNative && kind != KindToken {
		return 0, fmt.Errorf("unknown deposit kind %q", kind)
	}

	a, ok := new(big.Rat).SetString(amount)
	if !ok || a.Sign() <= 0 {
		return 0, errors.New("amount must be a number greater than 0")
	}

	gas, err := strconv.ParseUint(gasLimit, 10, 64)
	if err != nil || gas == 0 {
		return 0, errors.New("gas limit must be a positive integer")
	}

	if kind == KindToken && !common.IsHexAddress(tokenAddress) {
		return 0, errors.New("token contract address is not a valid address")
	}
	return gas, nil
}
