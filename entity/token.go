package entity

import "time"

// Token is one allow-listed ERC20 entry. AssetID correlates to the
// bridge-side asset identifier.
type Token struct {
	ID           string    `bson:"_id,omitempty" json:"id,omitempty"`
	TokenAddress string    `bson:"token_address" json:"tokenAddress"`
	TokenSymbol  string    `bson:"token_symbol,omitempty" json:"tokenSymbol,omitempty"`
	AssetID      int64     `bson:"asset_id" json:"assetId"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
}
