package model

import "encoding/json"

// PumpTradeData is the normalized summary of one pump.fun trade, built from
// the decoded on-chain event plus the webhook transaction metadata.
type PumpTradeData struct {
	IsBuy        bool    `json:"is_buy"`
	UserAddress  string  `json:"user_address"`
	SolAmount    float64 `json:"sol_amount"`
	TokenAddress string  `json:"token_address"`
	TokenSymbol  string  `json:"token_symbol"`
	TokenAmount  float64 `json:"token_amount"`
	Signature    string  `json:"signature"`
}

func (t *PumpTradeData) String() string {
	bytes, _ := json.Marshal(t)
	return string(bytes)
}
