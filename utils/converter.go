package utils

import (
	"errors"
	"math/big"
)

func WeiToETH(wei *big.Int) string {
	f := new(big.Float).SetInt(wei)
	f.Quo(f, big.NewFloat(1e18))
	return f.Text('f', 18) // 18 位小数
}

func ETHToWei(eth string) (*big.Int, error) {
	return ToBaseUnits(eth, 18)
}

// ToBaseUnits converts a human decimal amount to the chain's smallest unit
// for a token with the given decimal precision. "10" at 6 decimals is
// 10000000.
func ToBaseUnits(amount string, decimals uint8) (*big.Int, error) {
	r, ok := new(big.Rat).SetString(amount)
	if !ok {
		return nil, errors.New("invalid decimal amount")
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	r.Mul(r, new(big.Rat).SetInt(scale))
	if !r.IsInt() {
		return nil, errors.New("amount has more decimal places than the token supports")
	}
	return new(big.Int).Set(r.Num()), nil
}
