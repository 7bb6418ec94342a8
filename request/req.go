package request

// --- 请求结构 ---

type CreateUserReq struct {
	EVMAddress     string `json:"evmAddress"`
	BitcoinAddress string `json:"bitcoinAddress"`
}

// UpdateUserReq carries a partial update. Pointers distinguish "absent"
// from "set to empty" (empty bitcoinAddress unsets the field).
type UpdateUserReq struct {
	BitcoinAddress *string `json:"bitcoinAddress"`
	EVMAddress     *string `json:"evmAddress"`
}

// CreateTokenReq uses a pointer for AssetID so a missing field fails
// validation instead of defaulting to zero. A non-integer assetId fails
// JSON binding outright.
type CreateTokenReq struct {
	TokenAddress string `json:"tokenAddress"`
	TokenSymbol  string `json:"tokenSymbol"`
	AssetID      *int64 `json:"assetId"`
}
